package alert

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sisu-network/lib/log"
)

// Sentry captures error alerts as sentry messages. Resolution notices are not sent.
type Sentry struct {
	hub *sentry.Hub
}

func NewSentry(dsn, environment string) (*Sentry, error) {
	return newSentry(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
}

func newSentry(opts sentry.ClientOptions) (*Sentry, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, err
	}

	return &Sentry{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

func (s *Sentry) Notify(ctx context.Context, alert *Alert) {
	if alert.Status != StatusError {
		return
	}

	s.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(map[string]string{
			"asset":      alert.Asset,
			"from_chain": alert.FromChain,
			"to_chain":   alert.ToChain,
		})
		scope.SetExtra("from_tx_hash", alert.FromTxHash)
		scope.SetExtra("signing_hash", alert.SigningHash)
		scope.SetExtra("amount", alert.Amount)

		if id := s.hub.CaptureMessage(alert.Message); id == nil {
			log.Warnf("Sentry dropped alert for %s", alert.FromTxHash)
		}
	})
}

// Flush waits for buffered events to be sent.
func (s *Sentry) Flush(timeout time.Duration) bool {
	return s.hub.Flush(timeout)
}

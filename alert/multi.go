package alert

import (
	"context"

	"github.com/sisu-network/lib/log"
)

// Multi logs every alert and forwards it to each notifier.
type Multi struct {
	notifiers []Notifier
}

func NewMulti(notifiers ...Notifier) *Multi {
	return &Multi{notifiers: notifiers}
}

func (m *Multi) Notify(ctx context.Context, alert *Alert) {
	if alert.Status == StatusError {
		log.Error(alert.Message)
	} else {
		log.Info(alert.Message)
	}

	for _, n := range m.notifiers {
		n.Notify(ctx, alert)
	}
}

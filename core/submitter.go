package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sisu-network/lib/log"
	"github.com/sisu-network/sentinel/alert"
	"github.com/sisu-network/sentinel/bridge"
	"github.com/sisu-network/sentinel/chains"
	"github.com/sisu-network/sentinel/client"
	"github.com/sisu-network/sentinel/config"
	"github.com/sisu-network/sentinel/database"
	"github.com/sisu-network/sentinel/metrics"
	"github.com/sisu-network/sentinel/types"
	"github.com/sisu-network/sentinel/utils"
)

// Submitter drives transfers through the signing network: it derives the transaction of a
// transfer, submits it when the network does not know it yet and records the final status.
type Submitter struct {
	registry *chains.Registry
	db       database.Database
	signer   client.SigningClient
	notifier alert.Notifier

	escalationDelay time.Duration
	rateLimitPause  time.Duration
	signingLink     string

	// Signing hashes submitted during the current tick.
	submitting map[string]struct{}
	lock       *sync.Mutex

	now func() time.Time
}

func NewSubmitter(cfg *config.Sentinel, registry *chains.Registry, db database.Database,
	signer client.SigningClient, notifier alert.Notifier) *Submitter {
	return &Submitter{
		registry:        registry,
		db:              db,
		signer:          signer,
		notifier:        notifier,
		escalationDelay: cfg.EscalationDelay.Duration,
		rateLimitPause:  cfg.RateLimitPause.Duration,
		signingLink:     cfg.SigningExplorerLink,
		submitting:      make(map[string]struct{}),
		lock:            &sync.Mutex{},
		now:             time.Now,
	}
}

// BeginTick forgets the transactions submitted during the previous tick.
func (s *Submitter) BeginTick() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.submitting = make(map[string]struct{})
}

// claim returns false when hash was already submitted during this tick.
func (s *Submitter) claim(hash string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.submitting[hash]; ok {
		return false
	}
	s.submitting[hash] = struct{}{}

	return true
}

// Handle processes one transfer, stores the result and pauses after a rate limit.
func (s *Submitter) Handle(ctx context.Context, transfer *types.Transfer) {
	updated, err := s.Process(ctx, transfer)
	if err != nil {
		if types.IsTransient(err) {
			log.Warnf("Cannot process %s, retrying later: %v", transfer, err)
		} else {
			log.Errorf("Error processing %s: %v", transfer, err)
		}
	}

	if updated != nil {
		if err := s.db.UpdateTransfer(updated); err != nil {
			log.Errorf("Cannot save %s: %v", updated, err)
		}
	}

	if types.IsRateLimit(err) {
		s.pause(ctx)
	}
}

func (s *Submitter) pause(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(s.rateLimitPause):
	}
}

// Process returns the updated copy of transfer. It returns an error when the transfer must be
// retried on a later pass; the copy is still returned with the error when it was escalated and has
// to be saved.
func (s *Submitter) Process(ctx context.Context, transfer *types.Transfer) (*types.Transfer, error) {
	t := transfer.Clone()

	from, err := s.registry.Get(t.FromChain)
	if err != nil {
		return nil, err
	}
	origin, err := s.registry.Origin(t.Asset)
	if err != nil {
		return s.escalateOnError(ctx, t, from, nil, err)
	}
	to := origin
	if t.ToChain != "" {
		if to, err = s.registry.Get(t.ToChain); err != nil {
			return s.escalateOnError(ctx, t, from, nil, err)
		}
	}

	recipient, err := bridge.DecodeRecipient(to.Client, t.ToRecipient)
	if err != nil {
		if !types.IsMalformed(err) {
			return s.escalateOnError(ctx, t, from, to, err)
		}

		if !t.Sentried {
			msg := fmt.Sprintf("[sentinel][%s] %s - Unable to decode %s recipient: %v", t.FromChain, t.FromTxHash,
				to.Name(), err)
			s.notifier.Notify(ctx, newAlert(alert.StatusError, msg, t, from, to, s.signingLink))
			metrics.Escalations.WithLabelValues("malformed").Inc()
		}
		t.Sentried = true
		t.Ignored = true
		return t, nil
	}
	if recipient.Format == bridge.FormatBase58 {
		t.ToRecipient = []byte(recipient.Address)
	}

	txid, err := from.Client.TxHashToBytes(t.FromTxHash)
	if err != nil {
		return s.escalateOnError(ctx, t, from, to, fmt.Errorf("invalid source tx hash %s: %w", t.FromTxHash, err))
	}
	txindex, err := bridge.ParseTxIndex(t.FromTxIndex)
	if err != nil {
		return s.escalateOnError(ctx, t, from, to, err)
	}

	ids := bridge.Derive(t.Asset, to.Name(), t.Nonce, txid, txindex, t.ToPayload, recipient.Bytes)
	selector := bridge.Selector(t.Asset, origin.Name(), from.Name(), to.Name())
	tx := client.NewCrossChainTx(selector, ids, &client.CrossChainInput{
		Txid:    txid,
		Txindex: txindex,
		Amount:  t.Amount,
		Payload: t.ToPayload,
		To:      recipient.Address,
		Nonce:   t.Nonce,
	})
	t.SigningHash = tx.Hash

	result, err := s.queryOrSubmit(ctx, tx)
	if err != nil {
		return s.escalateOnError(ctx, t, from, to, err)
	}

	wasDone := t.Done
	if result != nil {
		metrics.Submissions.WithLabelValues(string(result.Status)).Inc()
		log.Infof("[%s] %s %s -> %s %s: %s", selector, t.Asset, t.FromChain, to.Name(), utils.ShortHash(tx.Hash),
			result.Status)

		if result.Status.Final() {
			t.Done = true
			if len(result.OutTxid) > 0 {
				if toTxHash, err := to.Client.TxHashFromBytes(result.OutTxid); err == nil {
					t.ToTxHash = toTxHash
				} else {
					log.Warnf("Cannot decode %s out txid of %s: %v", to.Name(), tx.Hash, err)
				}
			}
		}
	}

	if t.Done && !wasDone && t.Sentried {
		msg := fmt.Sprintf("[sentinel][%s] %s resolved", t.FromChain, t.FromTxHash)
		s.notifier.Notify(ctx, newAlert(alert.StatusResolved, msg, t, from, to, s.signingLink))
		metrics.Escalations.WithLabelValues("resolved").Inc()
	}

	s.escalate(ctx, t, from, to)

	return t, nil
}

// escalate alerts once about a transfer that is still not done after the escalation delay. It
// returns true when t was marked sentried.
func (s *Submitter) escalate(ctx context.Context, t *types.Transfer, from, to *chains.Chain) bool {
	if t.Done || t.Sentried || t.Ignored || s.now().Sub(t.CreatedAt) <= s.escalationDelay {
		return false
	}

	s.notifier.Notify(ctx, newAlert(alert.StatusError, escalationMessage(t, from), t, from, to, s.signingLink))
	metrics.Escalations.WithLabelValues("submission").Inc()
	t.Sentried = true

	return true
}

// escalateOnError escalates t when it is due and returns it along with err when it changed.
func (s *Submitter) escalateOnError(ctx context.Context, t *types.Transfer, from, to *chains.Chain,
	err error) (*types.Transfer, error) {
	if s.escalate(ctx, t, from, to) {
		return t, err
	}

	return nil, err
}

// queryOrSubmit queries tx and submits it when the network has never seen it. A failed submission
// is logged and retried on the next pass.
func (s *Submitter) queryOrSubmit(ctx context.Context, tx *client.Tx) (*client.TxResult, error) {
	result, err := s.signer.QueryTx(ctx, tx.Hash)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, types.ErrTxNotFound) {
		return nil, err
	}

	if !s.claim(tx.Hash) {
		log.Verbosef("%s was already submitted in this tick", tx.Hash)
		return nil, nil
	}

	if err := s.signer.SubmitTx(ctx, tx); err != nil {
		log.Errorf("Unable to submit %s: %v", tx.Hash, err)
		if types.IsRateLimit(err) {
			return nil, err
		}
		return nil, nil
	}
	log.Infof("Submitted %s", tx.Hash)

	result, err = s.signer.QueryTx(ctx, tx.Hash)
	if err != nil {
		log.Errorf("Unable to query %s after submitting: %v", tx.Hash, err)
		return nil, nil
	}

	return result, nil
}

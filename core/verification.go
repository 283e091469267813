package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/sisu-network/lib/log"
	"github.com/sisu-network/sentinel/alert"
	"github.com/sisu-network/sentinel/chains"
	"github.com/sisu-network/sentinel/database"
	"github.com/sisu-network/sentinel/metrics"
	"github.com/sisu-network/sentinel/types"
	"github.com/sisu-network/sentinel/verifier"
)

// Burner verifies a single transfer.
type Burner interface {
	Verify(ctx context.Context, transfer *types.Transfer) (*verifier.Result, error)
}

// Verification applies the burn verifier to pending transfers released on utxo chains, stores the
// outcome and raises the alerts the outcome asks for.
type Verification struct {
	registry    *chains.Registry
	db          database.Database
	engine      Burner
	notifier    alert.Notifier
	signingLink string

	// Release hash -> key of the transfer it was matched to during the current sweep.
	reserved map[string]string
	lock     *sync.Mutex
}

func NewVerification(registry *chains.Registry, db database.Database, engine Burner, notifier alert.Notifier,
	signingLink string) *Verification {
	return &Verification{
		registry:    registry,
		db:          db,
		engine:      engine,
		notifier:    notifier,
		signingLink: signingLink,
		reserved:    make(map[string]string),
		lock:        &sync.Mutex{},
	}
}

// BeginSweep forgets the releases matched during the previous sweep. Matches of earlier sweeps are
// already persisted and guarded by the store.
func (v *Verification) BeginSweep() {
	v.lock.Lock()
	defer v.lock.Unlock()

	v.reserved = make(map[string]string)
}

// reserve returns false when hash was matched to another transfer during this sweep.
func (v *Verification) reserve(hash, key string) bool {
	v.lock.Lock()
	defer v.lock.Unlock()

	if owner, ok := v.reserved[hash]; ok && owner != key {
		return false
	}
	v.reserved[hash] = key

	return true
}

func (v *Verification) unreserve(hash, key string) {
	v.lock.Lock()
	defer v.lock.Unlock()

	if v.reserved[hash] == key {
		delete(v.reserved, hash)
	}
}

// Pending returns the pending transfers whose destination has no proof linking payments to burns.
func (v *Verification) Pending() ([]*types.Transfer, error) {
	transfers, err := v.db.LoadPendingTransfers(true)
	if err != nil {
		return nil, err
	}

	ret := make([]*types.Transfer, 0)
	for _, transfer := range transfers {
		to, err := verifier.Destination(v.registry, transfer)
		if err != nil || to.Explorer == nil || !to.Client.Family().UtxoModel() {
			continue
		}
		ret = append(ret, transfer)
	}

	return ret, nil
}

// Verify runs the verifier on one transfer and stores the result. It is safe to call concurrently:
// a release is matched to at most one transfer.
func (v *Verification) Verify(ctx context.Context, transfer *types.Transfer) {
	result, err := v.engine.Verify(ctx, transfer)
	if err != nil {
		log.Errorf("Cannot verify %s: %v", transfer, err)
		return
	}
	metrics.VerificationOutcomes.WithLabelValues(string(result.Outcome)).Inc()

	t := transfer.Clone()
	from, _ := v.registry.Get(t.FromChain)
	to, _ := verifier.Destination(v.registry, t)

	switch result.Outcome {
	case verifier.Confirmed:
		if result.ToTxHash != "" && !v.reserve(result.ToTxHash, t.Key()) {
			log.Warnf("%s was already matched in this sweep, %s stays pending", result.ToTxHash, t)
			return
		}
		t.Done = true
		t.ToTxHash = result.ToTxHash
	case verifier.Ignored:
		t.Ignored = true
		log.Warnf("Ignoring %s: %s", t, result.Reason)
	default:
		log.Verbosef("Release of %s not found yet: %s", t, result.Reason)
	}

	if t.Done {
		v.confirm(ctx, transfer, t, from, to, result)
		return
	}

	if result.Escalate && !t.Sentried {
		v.notifier.Notify(ctx, newAlert(alert.StatusError, "[sentinel] "+result.Reason, t, from, to, v.signingLink))
		metrics.Escalations.WithLabelValues("verification").Inc()
		t.Sentried = true
	}

	if t.Ignored == transfer.Ignored && t.Sentried == transfer.Sentried {
		return
	}

	if err := v.db.UpdateTransfer(t); err != nil {
		log.Errorf("Cannot save %s: %v", t, err)
	}
}

// confirm persists a matched release. The store refuses a release already owned by another
// transfer, which then stays pending.
func (v *Verification) confirm(ctx context.Context, transfer, t *types.Transfer, from, to *chains.Chain,
	result *verifier.Result) {
	ok, err := v.db.ClaimTransfer(t)
	if err != nil || !ok {
		v.unreserve(t.ToTxHash, t.Key())
		if err != nil {
			log.Errorf("Cannot save %s: %v", t, err)
		} else {
			log.Warnf("%s is already claimed by another transfer, %s stays pending", t.ToTxHash, t)
		}
		return
	}

	log.Infof("Found release of %s: %s", t, result.Reason)
	if transfer.Sentried {
		msg := fmt.Sprintf("[sentinel][%s] %s resolved", t.FromChain, t.FromTxHash)
		v.notifier.Notify(ctx, newAlert(alert.StatusResolved, msg, t, from, to, v.signingLink))
		metrics.Escalations.WithLabelValues("resolved").Inc()
	}
}

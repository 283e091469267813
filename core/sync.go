package core

import (
	"context"
	"fmt"
	"time"

	"github.com/sisu-network/lib/log"
	"github.com/sisu-network/sentinel/alert"
	"github.com/sisu-network/sentinel/chains"
	"github.com/sisu-network/sentinel/database"
	"github.com/sisu-network/sentinel/metrics"
	"github.com/sisu-network/sentinel/types"
)

// SyncDriver runs one sync pass of a chain and stores its result.
type SyncDriver struct {
	db       database.Database
	notifier alert.Notifier
	timeout  time.Duration
}

func NewSyncDriver(db database.Database, notifier alert.Notifier, timeout time.Duration) *SyncDriver {
	return &SyncDriver{db: db, notifier: notifier, timeout: timeout}
}

// SyncChain pulls new events of chain since its checkpoint and commits the checkpoint with the
// transfers. It returns the transfers that were not known before.
func (d *SyncDriver) SyncChain(ctx context.Context, chain *chains.Chain) ([]*types.Transfer, error) {
	if chain.Syncer == nil {
		return nil, nil
	}

	state, err := d.db.LoadChainState(chain.Name())
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("no checkpoint for chain %s", chain.Name())
	}

	syncCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	result, err := chain.Syncer.Sync(syncCtx, state.SyncedState)
	if err != nil {
		metrics.SyncErrors.WithLabelValues(chain.Name()).Inc()
		return nil, err
	}

	if result.NewState == state.SyncedState && len(result.Transfers) == 0 {
		return nil, nil
	}

	inserted, err := d.db.CommitSync(chain.Name(), result.NewState, result.Transfers)
	if err != nil {
		metrics.SyncErrors.WithLabelValues(chain.Name()).Inc()
		return nil, err
	}

	// The checkpoint is past the failed events now, this is the only report they get.
	for _, failure := range result.Failures {
		d.notifier.Notify(ctx, &alert.Alert{
			Status:    alert.StatusError,
			Message:   fmt.Sprintf("[sentinel][%s] Unable to decode event: %v", chain.Name(), failure),
			FromChain: chain.Name(),
		})
		metrics.Escalations.WithLabelValues("decode").Inc()
	}

	metrics.TransfersSynced.WithLabelValues(chain.Name()).Add(float64(len(inserted)))
	if len(inserted) > 0 {
		log.Infof("[%s] Synced %d new transfers, state %s", chain.Name(), len(inserted), result.NewState)
	} else {
		log.Verbosef("[%s] Synced up to %s", chain.Name(), result.NewState)
	}

	return inserted, nil
}

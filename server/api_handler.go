package server

import (
	"fmt"
	"time"

	"github.com/sisu-network/sentinel/database"
	"github.com/sisu-network/sentinel/types"
)

// Scheduler exposes the progress of the relayer loop.
type Scheduler interface {
	Iteration() int64
	LastTick() time.Time
}

type Health struct {
	Iteration int64     `json:"iteration"`
	LastTick  time.Time `json:"lastTick"`
	Pending   int64     `json:"pending"`
}

type ApiHandler struct {
	db         database.Database
	scheduler  Scheduler
	maxTickAge time.Duration
}

// NewApi returns the handler of the sentinel namespace. The relayer is reported unhealthy when no
// tick completed within maxTickAge.
func NewApi(db database.Database, scheduler Scheduler, maxTickAge time.Duration) *ApiHandler {
	return &ApiHandler{
		db:         db,
		scheduler:  scheduler,
		maxTickAge: maxTickAge,
	}
}

func (api *ApiHandler) CheckHealth() (*Health, error) {
	pending, err := api.db.CountPending()
	if err != nil {
		return nil, fmt.Errorf("db unavailable: %w", err)
	}

	health := &Health{
		Iteration: api.scheduler.Iteration(),
		LastTick:  api.scheduler.LastTick(),
		Pending:   pending,
	}
	if !health.LastTick.IsZero() && time.Since(health.LastTick) > api.maxTickAge {
		return health, fmt.Errorf("last tick completed at %s", health.LastTick.Format(time.RFC3339))
	}

	return health, nil
}

// SyncedState returns the checkpoint of a chain.
func (api *ApiHandler) SyncedState(chain string) (*types.ChainState, error) {
	state, err := api.db.LoadChainState(chain)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, types.NewChainNotFoundErr(chain)
	}

	return state, nil
}

func (api *ApiHandler) PendingCount() (int64, error) {
	return api.db.CountPending()
}

package core

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sisu-network/lib/log"
	"github.com/sisu-network/sentinel/alert"
	"github.com/sisu-network/sentinel/chains"
	"github.com/sisu-network/sentinel/config"
	"github.com/sisu-network/sentinel/database"
	"github.com/sisu-network/sentinel/metrics"
	"github.com/sisu-network/sentinel/types"
	"github.com/sisu-network/sentinel/utils"
	"go.uber.org/atomic"
)

const (
	pendingSweepEvery  = 10
	sentriedSweepEvery = 100
)

// cronLogger routes cron's own logs to the sisu logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Verbose(append([]interface{}{"cron: ", msg, " "}, keysAndValues...)...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error(append([]interface{}{"cron: ", msg, " err = ", err, " "}, keysAndValues...)...)
}

// Processor is the scheduler of the relayer. Every tick it retries pending transfers from time to
// time, syncs every chain, submits what was found and finally verifies utxo releases.
type Processor struct {
	cfg          *config.Sentinel
	registry     *chains.Registry
	db           database.Database
	submitter    *Submitter
	syncDriver   *SyncDriver
	verification *Verification

	cron      *cron.Cron
	ctx       context.Context
	cancel    context.CancelFunc
	iteration *atomic.Int64
	running   *atomic.Bool
	lastTick  *atomic.Int64
}

func NewProcessor(cfg *config.Sentinel, registry *chains.Registry, db database.Database, notifier alert.Notifier,
	submitter *Submitter, verification *Verification) *Processor {
	ctx, cancel := context.WithCancel(context.Background())

	return &Processor{
		cfg:          cfg,
		registry:     registry,
		db:           db,
		submitter:    submitter,
		syncDriver:   NewSyncDriver(db, notifier, cfg.SyncTimeout.Duration),
		verification: verification,
		ctx:          ctx,
		cancel:       cancel,
		iteration:    atomic.NewInt64(0),
		running:      atomic.NewBool(false),
		lastTick:     atomic.NewInt64(0),
	}
}

// Init seeds the checkpoint of every chain that has a syncer.
func (p *Processor) Init() error {
	for _, chainCfg := range p.cfg.Chains {
		chain, err := p.registry.Get(chainCfg.Chain)
		if err != nil || chain.Syncer == nil {
			continue
		}

		if err := p.db.EnsureChain(chainCfg.Chain, chainCfg.StartState); err != nil {
			return fmt.Errorf("cannot seed checkpoint of %s: %w", chainCfg.Chain, err)
		}
	}

	return nil
}

func (p *Processor) Start() error {
	logger := cronLogger{}
	p.cron = cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	spec := fmt.Sprintf("@every %s", p.cfg.TickInterval.Duration)
	if _, err := p.cron.AddFunc(spec, p.runTick); err != nil {
		return fmt.Errorf("cannot schedule tick %q: %w", spec, err)
	}

	log.Info("Starting processor, tick = ", p.cfg.TickInterval.Duration)
	p.cron.Start()
	go p.runTick()

	return nil
}

func (p *Processor) Stop() {
	p.cancel()
	if p.cron != nil {
		<-p.cron.Stop().Done()
	}
}

func (p *Processor) runTick() {
	if !p.running.CAS(false, true) {
		log.Verbose("Previous tick is still running")
		return
	}
	defer p.running.Store(false)

	p.Tick(p.ctx)
}

// Tick runs one pass of the relayer. Failures of one chain or one transfer never stop the pass.
func (p *Processor) Tick(ctx context.Context) {
	start := time.Now()
	iteration := p.iteration.Inc() - 1
	p.submitter.BeginTick()

	if iteration%pendingSweepEvery == 0 {
		includeSentried := iteration%sentriedSweepEvery == 0
		transfers, err := p.db.LoadPendingTransfers(includeSentried)
		if err != nil {
			log.Error("Cannot load pending transfers, err = ", err)
		} else {
			log.Verbosef("Retrying %d pending transfers (sentried included: %v)", len(transfers), includeSentried)
			p.submitAll(ctx, transfers)
		}
	}

	for _, chain := range p.registry.Syncable() {
		if ctx.Err() != nil {
			return
		}

		inserted, err := p.syncDriver.SyncChain(ctx, chain)
		if err != nil {
			if types.IsTransient(err) {
				log.Warnf("[%s] Sync failed: %v", chain.Name(), err)
			} else {
				log.Errorf("[%s] Sync failed: %v", chain.Name(), err)
			}
			continue
		}

		p.submitAll(ctx, inserted)
	}

	if p.cfg.EnableVerification && p.verification != nil {
		p.verification.BeginSweep()
		transfers, err := p.verification.Pending()
		if err != nil {
			log.Error("Cannot load transfers to verify, err = ", err)
		} else {
			utils.ForEachLimited(ctx, p.cfg.SubmitConcurrency, p.cfg.SubmitTimeout.Duration, transfers,
				func(ctx context.Context, _ int, transfer *types.Transfer) {
					p.verification.Verify(ctx, transfer)
				})
		}
	}

	if count, err := p.db.CountPending(); err == nil {
		metrics.PendingTransfers.Set(float64(count))
	}
	metrics.TickDuration.Observe(time.Since(start).Seconds())
	p.lastTick.Store(time.Now().UnixMilli())
}

func (p *Processor) submitAll(ctx context.Context, transfers []*types.Transfer) {
	utils.ForEachLimited(ctx, p.cfg.SubmitConcurrency, p.cfg.SubmitTimeout.Duration, transfers,
		func(ctx context.Context, _ int, transfer *types.Transfer) {
			p.submitter.Handle(ctx, transfer)
		})
}

// Iteration returns the number of ticks started so far.
func (p *Processor) Iteration() int64 {
	return p.iteration.Load()
}

// LastTick returns the end time of the last completed tick, zero before the first one.
func (p *Processor) LastTick() time.Time {
	ms := p.lastTick.Load()
	if ms == 0 {
		return time.Time{}
	}

	return time.UnixMilli(ms)
}

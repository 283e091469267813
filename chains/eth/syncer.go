package eth

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/golang/groupcache/lru"
	"github.com/sisu-network/lib/log"
	"github.com/sisu-network/sentinel/chains"
	"github.com/sisu-network/sentinel/config"
	"github.com/sisu-network/sentinel/metrics"
	"github.com/sisu-network/sentinel/types"
	"github.com/sisu-network/sentinel/utils"
)

const (
	BlockTimeCacheSize = 1_000
)

var syncedEvents = []string{EventLogBurn, EventLogBurnToChain, EventLogLockToChain}

// Syncer scans gateway logs in windows of blocks. The checkpoint is the last scanned block height.
type Syncer struct {
	cfg      config.Chain
	client   EthClient
	gateways gatewaySet

	blockTimes *lru.Cache
	lock       *sync.Mutex
}

func NewSyncer(cfg config.Chain, client EthClient) (*Syncer, error) {
	gateways, err := newGatewaySet(cfg.Gateways)
	if err != nil {
		return nil, err
	}
	if len(gateways) == 0 {
		return nil, fmt.Errorf("chain %s has no gateway", cfg.Chain)
	}

	return &Syncer{
		cfg:        cfg,
		client:     client,
		gateways:   gateways,
		blockTimes: lru.New(BlockTimeCacheSize),
		lock:       &sync.Mutex{},
	}, nil
}

type eventLog struct {
	event string
	log   ethtypes.Log
}

func (s *Syncer) Sync(ctx context.Context, syncedState string) (*chains.SyncResult, error) {
	synced, err := types.ParseHeightState(syncedState)
	if err != nil {
		return nil, err
	}

	latest, err := s.client.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot get latest block of %s: %w", s.cfg.Chain, err)
	}

	safeUpper := int64(latest) - s.cfg.ConfirmationOffset
	fromHeight := utils.MaxInt(synced+1, int64(latest)-s.cfg.MaxConfirmations)
	fromHeight = utils.MaxInt(fromHeight, 0)
	if fromHeight > safeUpper {
		// No blocks to fetch.
		return &chains.SyncResult{NewState: syncedState}, nil
	}

	toHeight := utils.MinInt(safeUpper, fromHeight+s.cfg.LogRequestLimit)
	log.Infof("[%s] Getting new logs from %d to %d (%d of %d blocks)", s.cfg.Chain, fromHeight, toHeight,
		toHeight-fromHeight+1, safeUpper-fromHeight+1)

	logs, err := s.fetchLogs(ctx, fromHeight, toHeight)
	if err != nil {
		return nil, err
	}

	transfers := make([]*types.Transfer, 0, len(logs))
	var failures []error
	for _, el := range logs {
		transfer, err := decodeLog(s.cfg.Chain, s.gateways, el.event, el.log)
		if err != nil {
			log.Errorf("[%s] Skipping log: %v", s.cfg.Chain, err)
			metrics.DecodeFailures.WithLabelValues(s.cfg.Chain).Inc()
			failures = append(failures, err)
			continue
		}

		transfer.BurnTime = s.blockTime(ctx, el.log.BlockNumber)
		transfers = append(transfers, transfer)
	}

	metrics.SyncedHeight.WithLabelValues(s.cfg.Chain).Set(float64(toHeight))

	return &chains.SyncResult{
		Transfers: transfers,
		NewState:  types.FormatHeightState(toHeight),
		Failures:  failures,
	}, nil
}

// fetchLogs gets the logs of every gateway event in parallel. The result is sorted by block and
// log index.
func (s *Syncer) fetchLogs(ctx context.Context, fromHeight, toHeight int64) ([]*eventLog, error) {
	addresses := s.gateways.addresses()
	results := make([][]ethtypes.Log, len(syncedEvents))
	errs := make([]error, len(syncedEvents))

	wg := &sync.WaitGroup{}
	for i, event := range syncedEvents {
		wg.Add(1)
		go func(i int, event string) {
			defer wg.Done()

			results[i], errs[i] = s.client.FilterLogs(ctx, ethereum.FilterQuery{
				FromBlock: big.NewInt(fromHeight),
				ToBlock:   big.NewInt(toHeight),
				Addresses: addresses,
				Topics:    [][]common.Hash{{EventTopic(event)}},
			})
		}(i, event)
	}
	wg.Wait()

	ret := make([]*eventLog, 0)
	for i, event := range syncedEvents {
		if errs[i] != nil {
			return nil, fmt.Errorf("cannot get %s logs of %s: %w", event, s.cfg.Chain, errs[i])
		}

		for _, l := range results[i] {
			if l.Removed {
				continue
			}
			ret = append(ret, &eventLog{event: event, log: l})
		}
	}

	sort.SliceStable(ret, func(i, j int) bool {
		if ret[i].log.BlockNumber != ret[j].log.BlockNumber {
			return ret[i].log.BlockNumber < ret[j].log.BlockNumber
		}
		return ret[i].log.Index < ret[j].log.Index
	})

	return ret, nil
}

// blockTime returns the timestamp of a block or a zero time when the header cannot be fetched.
func (s *Syncer) blockTime(ctx context.Context, number uint64) time.Time {
	s.lock.Lock()
	cached, ok := s.blockTimes.Get(number)
	s.lock.Unlock()
	if ok {
		return cached.(time.Time)
	}

	header, err := s.client.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil || header == nil {
		log.Warnf("[%s] cannot get header of block %d, err = %v", s.cfg.Chain, number, err)
		return time.Time{}
	}

	t := time.Unix(int64(header.Time), 0).UTC()
	s.lock.Lock()
	s.blockTimes.Add(number, t)
	s.lock.Unlock()

	return t
}

package eth

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/sisu-network/sentinel/config"
	"github.com/sisu-network/sentinel/types"
	"github.com/stretchr/testify/require"
)

func testChainConfig() config.Chain {
	return config.Chain{
		Chain:              "Ethereum",
		Family:             "evm",
		Gateways:           testGateways,
		ConfirmationOffset: 5,
		MaxConfirmations:   100,
		LogRequestLimit:    50,
	}
}

func TestSyncer_NoNewBlocks(t *testing.T) {
	filterCalls := 0
	client := &MockEthClient{
		BlockNumberFunc: func(ctx context.Context) (uint64, error) {
			return 100, nil
		},
		FilterLogsFunc: func(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error) {
			filterCalls++
			return nil, nil
		},
	}

	syncer, err := NewSyncer(testChainConfig(), client)
	require.Nil(t, err)

	// fromHeight = 97 > safeUpper = 95
	result, err := syncer.Sync(context.Background(), "96")
	require.Nil(t, err)
	require.Empty(t, result.Transfers)
	require.Equal(t, "96", result.NewState)
	require.Equal(t, 0, filterCalls)
}

func TestSyncer_Window(t *testing.T) {
	lock := &sync.Mutex{}
	queries := make([]ethereum.FilterQuery, 0)

	client := &MockEthClient{
		BlockNumberFunc: func(ctx context.Context) (uint64, error) {
			return 1000, nil
		},
		HeaderByNumberFunc: func(ctx context.Context, number *big.Int) (*ethtypes.Header, error) {
			return &ethtypes.Header{Number: number, Time: 1_650_000_000}, nil
		},
		FilterLogsFunc: func(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error) {
			lock.Lock()
			queries = append(queries, q)
			lock.Unlock()

			if q.Topics[0][0] != EventTopic(EventLogBurn) {
				return nil, nil
			}

			l := burnLog(t, testGateway, []byte(testRecipient), big.NewInt(20_000), big.NewInt(3))
			l.BlockNumber = 920
			return []ethtypes.Log{l}, nil
		},
	}

	syncer, err := NewSyncer(testChainConfig(), client)
	require.Nil(t, err)

	// Empty checkpoint: start from latest - max confirmations.
	result, err := syncer.Sync(context.Background(), "")
	require.Nil(t, err)
	require.Equal(t, "950", result.NewState)

	require.Len(t, queries, 3)
	for _, q := range queries {
		require.Equal(t, int64(900), q.FromBlock.Int64())
		require.Equal(t, int64(950), q.ToBlock.Int64())
		require.Equal(t, []common.Address{testGateway}, q.Addresses)
	}

	require.Len(t, result.Transfers, 1)
	transfer := result.Transfers[0]
	require.Equal(t, "BTC", transfer.Asset)
	require.Equal(t, int64(1_650_000_000), transfer.BurnTime.Unix())
}

func TestSyncer_DecodeFailureDoesNotBlockWindow(t *testing.T) {
	client := &MockEthClient{
		BlockNumberFunc: func(ctx context.Context) (uint64, error) {
			return 1000, nil
		},
		FilterLogsFunc: func(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error) {
			if q.Topics[0][0] != EventTopic(EventLogBurn) {
				return nil, nil
			}

			good := burnLog(t, testGateway, []byte(testRecipient), big.NewInt(20_000), big.NewInt(3))
			bad := burnLog(t, testGateway, []byte(testRecipient), big.NewInt(20_000), big.NewInt(4))
			bad.Data = []byte{1}
			removed := burnLog(t, testGateway, []byte(testRecipient), big.NewInt(20_000), big.NewInt(5))
			removed.Removed = true
			return []ethtypes.Log{bad, good, removed}, nil
		},
	}

	syncer, err := NewSyncer(testChainConfig(), client)
	require.Nil(t, err)

	result, err := syncer.Sync(context.Background(), "990")
	require.Nil(t, err)
	require.Len(t, result.Transfers, 1)
	require.Equal(t, byte(3), result.Transfers[0].Nonce[31])
	require.Equal(t, "995", result.NewState)
	require.Len(t, result.Failures, 1)
	require.True(t, types.IsMalformed(result.Failures[0]))
}

func TestSyncer_FetchError(t *testing.T) {
	client := &MockEthClient{
		BlockNumberFunc: func(ctx context.Context) (uint64, error) {
			return 1000, nil
		},
		FilterLogsFunc: func(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error) {
			if q.Topics[0][0] == EventTopic(EventLogLockToChain) {
				return nil, errors.New("query returned more than 10000 results")
			}
			return nil, nil
		},
	}

	syncer, err := NewSyncer(testChainConfig(), client)
	require.Nil(t, err)

	_, err = syncer.Sync(context.Background(), "900")
	require.NotNil(t, err)
}

func TestSyncer_CheckpointMonotonic(t *testing.T) {
	latest := uint64(200)
	client := &MockEthClient{
		BlockNumberFunc: func(ctx context.Context) (uint64, error) {
			return latest, nil
		},
	}

	syncer, err := NewSyncer(testChainConfig(), client)
	require.Nil(t, err)

	state := "150"
	previous := int64(150)
	for i := 0; i < 20; i++ {
		result, err := syncer.Sync(context.Background(), state)
		require.Nil(t, err)

		current := mustHeight(t, result.NewState)
		require.GreaterOrEqual(t, current, previous)
		require.LessOrEqual(t, current, int64(latest)-5)

		state, previous = result.NewState, current
		if i%3 == 0 {
			latest += 37
		}
	}
}

func TestSyncer_NoGateway(t *testing.T) {
	cfg := testChainConfig()
	cfg.Gateways = nil
	_, err := NewSyncer(cfg, &MockEthClient{})
	require.NotNil(t, err)
}

func mustHeight(t *testing.T, state string) int64 {
	h, ok := new(big.Int).SetString(state, 10)
	require.True(t, ok)
	return h.Int64()
}

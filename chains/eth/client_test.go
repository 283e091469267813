package eth

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/sisu-network/sentinel/types"
	"github.com/stretchr/testify/require"
)

func TestEthClient_SkipsUndialableRpc(t *testing.T) {
	dial := func(ctx context.Context, rpc string) (EthClient, error) {
		if rpc == "bad" {
			return nil, errors.New("connection refused")
		}

		return &MockEthClient{
			BlockNumberFunc: func(ctx context.Context) (uint64, error) {
				return 10, nil
			},
		}, nil
	}

	c := newEthClients("Ethereum", []string{"bad", "good"}, dial)
	for i := 0; i < 10; i++ {
		height, err := c.BlockNumber(context.Background())
		require.Nil(t, err)
		require.Equal(t, uint64(10), height)
	}
	require.Equal(t, []string{"good"}, c.rpcs)
}

func TestEthClient_Failover(t *testing.T) {
	calls := map[string]int{}
	dial := func(ctx context.Context, rpc string) (EthClient, error) {
		return &MockEthClient{
			FilterLogsFunc: func(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error) {
				calls[rpc]++
				if rpc == "flaky" {
					return nil, errors.New("internal error")
				}
				return []ethtypes.Log{{Index: 1}}, nil
			},
		}, nil
	}

	c := newEthClients("Ethereum", []string{"flaky", "stable"}, dial)
	for i := 0; i < 5; i++ {
		logs, err := c.FilterLogs(context.Background(), ethereum.FilterQuery{})
		require.Nil(t, err)
		require.Len(t, logs, 1)
	}

	// The flaky rpc is marked unhealthy after its first failure.
	require.LessOrEqual(t, calls["flaky"], 1)
	require.Equal(t, 5, calls["stable"])
}

func TestEthClient_NoHealthyClient(t *testing.T) {
	dial := func(ctx context.Context, rpc string) (EthClient, error) {
		return nil, errors.New("connection refused")
	}

	c := newEthClients("Ethereum", []string{"a", "b"}, dial)
	_, err := c.BlockNumber(context.Background())
	require.NotNil(t, err)
	require.True(t, types.IsTransient(err))
}

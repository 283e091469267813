package eth

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

type MockEthClient struct {
	BlockNumberFunc    func(ctx context.Context) (uint64, error)
	HeaderByNumberFunc func(ctx context.Context, number *big.Int) (*ethtypes.Header, error)
	FilterLogsFunc     func(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error)
}

func (c *MockEthClient) BlockNumber(ctx context.Context) (uint64, error) {
	if c.BlockNumberFunc != nil {
		return c.BlockNumberFunc(ctx)
	}
	return 0, nil
}

func (c *MockEthClient) HeaderByNumber(ctx context.Context, number *big.Int) (*ethtypes.Header, error) {
	if c.HeaderByNumberFunc != nil {
		return c.HeaderByNumberFunc(ctx, number)
	}

	return nil, nil
}

func (c *MockEthClient) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error) {
	if c.FilterLogsFunc != nil {
		return c.FilterLogsFunc(ctx, q)
	}

	return nil, nil
}

package client

import (
	"context"
	"math/big"
)

type MockSigningClient struct {
	QueryTxFunc    func(ctx context.Context, hash string) (*TxResult, error)
	SubmitTxFunc   func(ctx context.Context, tx *Tx) error
	ReleaseFeeFunc func(ctx context.Context, asset string) (*big.Int, error)
}

func (m *MockSigningClient) QueryTx(ctx context.Context, hash string) (*TxResult, error) {
	if m.QueryTxFunc != nil {
		return m.QueryTxFunc(ctx, hash)
	}

	return nil, nil
}

func (m *MockSigningClient) SubmitTx(ctx context.Context, tx *Tx) error {
	if m.SubmitTxFunc != nil {
		return m.SubmitTxFunc(ctx, tx)
	}

	return nil
}

func (m *MockSigningClient) ReleaseFee(ctx context.Context, asset string) (*big.Int, error) {
	if m.ReleaseFeeFunc != nil {
		return m.ReleaseFeeFunc(ctx, asset)
	}

	return big.NewInt(0), nil
}

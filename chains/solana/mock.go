package solana

import "context"

type MockSolanaClient struct {
	GetSlotFunc                 func(ctx context.Context) (uint64, error)
	GetAccountDataFunc          func(ctx context.Context, account string) ([]byte, error)
	GetSignaturesForAddressFunc func(ctx context.Context, account string) ([]*SignatureInfo, error)
}

func (m *MockSolanaClient) GetSlot(ctx context.Context) (uint64, error) {
	if m.GetSlotFunc != nil {
		return m.GetSlotFunc(ctx)
	}

	return 0, nil
}

func (m *MockSolanaClient) GetAccountData(ctx context.Context, account string) ([]byte, error) {
	if m.GetAccountDataFunc != nil {
		return m.GetAccountDataFunc(ctx, account)
	}

	return nil, nil
}

func (m *MockSolanaClient) GetSignaturesForAddress(ctx context.Context, account string) ([]*SignatureInfo, error) {
	if m.GetSignaturesForAddressFunc != nil {
		return m.GetSignaturesForAddressFunc(ctx, account)
	}

	return nil, nil
}

package cardano

import "context"

type MockProvider struct {
	AddressTransactionsFunc func(ctx context.Context, address string, page, count int) ([]string, error)
	TransactionFunc         func(ctx context.Context, hash string) (*Transaction, error)
}

func (m *MockProvider) AddressTransactions(ctx context.Context, address string, page, count int) ([]string, error) {
	if m.AddressTransactionsFunc != nil {
		return m.AddressTransactionsFunc(ctx, address, page, count)
	}

	return nil, nil
}

func (m *MockProvider) Transaction(ctx context.Context, hash string) (*Transaction, error) {
	if m.TransactionFunc != nil {
		return m.TransactionFunc(ctx, hash)
	}

	return nil, nil
}

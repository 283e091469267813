package database

import "github.com/sisu-network/sentinel/types"

type MockDb struct {
	InitFunc                 func() error
	CloseFunc                func() error
	EnsureChainFunc          func(chain, initialState string) error
	LoadChainStateFunc       func(chain string) (*types.ChainState, error)
	CommitSyncFunc           func(chain, newState string, transfers []*types.Transfer) ([]*types.Transfer, error)
	LoadTransferFunc         func(fromTxHash, fromTxIndex string) (*types.Transfer, error)
	LoadPendingTransfersFunc func(includeSentried bool) ([]*types.Transfer, error)
	UpdateTransferFunc       func(transfer *types.Transfer) error
	ClaimTransferFunc        func(transfer *types.Transfer) (bool, error)
	IsClaimedFunc            func(toTxHash string, exceptId int64) (bool, error)
	CountPendingFunc         func() (int64, error)
}

func (mock *MockDb) Init() error {
	if mock.InitFunc != nil {
		return mock.InitFunc()
	}

	return nil
}

func (mock *MockDb) Close() error {
	if mock.CloseFunc != nil {
		return mock.CloseFunc()
	}

	return nil
}

func (mock *MockDb) EnsureChain(chain, initialState string) error {
	if mock.EnsureChainFunc != nil {
		return mock.EnsureChainFunc(chain, initialState)
	}

	return nil
}

func (mock *MockDb) LoadChainState(chain string) (*types.ChainState, error) {
	if mock.LoadChainStateFunc != nil {
		return mock.LoadChainStateFunc(chain)
	}

	return nil, nil
}

func (mock *MockDb) CommitSync(chain, newState string, transfers []*types.Transfer) ([]*types.Transfer, error) {
	if mock.CommitSyncFunc != nil {
		return mock.CommitSyncFunc(chain, newState, transfers)
	}

	return transfers, nil
}

func (mock *MockDb) LoadTransfer(fromTxHash, fromTxIndex string) (*types.Transfer, error) {
	if mock.LoadTransferFunc != nil {
		return mock.LoadTransferFunc(fromTxHash, fromTxIndex)
	}

	return nil, nil
}

func (mock *MockDb) LoadPendingTransfers(includeSentried bool) ([]*types.Transfer, error) {
	if mock.LoadPendingTransfersFunc != nil {
		return mock.LoadPendingTransfersFunc(includeSentried)
	}

	return nil, nil
}

func (mock *MockDb) UpdateTransfer(transfer *types.Transfer) error {
	if mock.UpdateTransferFunc != nil {
		return mock.UpdateTransferFunc(transfer)
	}

	return nil
}

func (mock *MockDb) ClaimTransfer(transfer *types.Transfer) (bool, error) {
	if mock.ClaimTransferFunc != nil {
		return mock.ClaimTransferFunc(transfer)
	}

	return true, nil
}

func (mock *MockDb) IsClaimed(toTxHash string, exceptId int64) (bool, error) {
	if mock.IsClaimedFunc != nil {
		return mock.IsClaimedFunc(toTxHash, exceptId)
	}

	return false, nil
}

func (mock *MockDb) CountPending() (int64, error) {
	if mock.CountPendingFunc != nil {
		return mock.CountPendingFunc()
	}

	return 0, nil
}

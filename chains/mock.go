package chains

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/sisu-network/sentinel/types"
)

// MockChainClient is a ChainClient whose codecs default to plain strings and hex.
type MockChainClient struct {
	ChainName   string
	ChainFamily types.Family
	Natives     []string
	Decimals    map[string]int

	CurrentHeightFunc   func(ctx context.Context) (int64, error)
	ValidateAddressFunc func(address string) bool
}

func (m *MockChainClient) Name() string {
	return m.ChainName
}

func (m *MockChainClient) Family() types.Family {
	return m.ChainFamily
}

func (m *MockChainClient) CurrentHeight(ctx context.Context) (int64, error) {
	if m.CurrentHeightFunc != nil {
		return m.CurrentHeightFunc(ctx)
	}

	return 0, types.ErrNotSupported
}

func (m *MockChainClient) AddressToBytes(address string) ([]byte, error) {
	return []byte(address), nil
}

func (m *MockChainClient) AddressFromBytes(bz []byte) (string, error) {
	return string(bz), nil
}

func (m *MockChainClient) ValidateAddress(address string) bool {
	if m.ValidateAddressFunc != nil {
		return m.ValidateAddressFunc(address)
	}

	return address != ""
}

func (m *MockChainClient) TxHashToBytes(hash string) ([]byte, error) {
	return hex.DecodeString(hash)
}

func (m *MockChainClient) TxHashFromBytes(bz []byte) (string, error) {
	return hex.EncodeToString(bz), nil
}

func (m *MockChainClient) AssetDecimals(asset string) (int, error) {
	if d, ok := m.Decimals[asset]; ok {
		return d, nil
	}

	return 0, fmt.Errorf("unknown asset %s", asset)
}

func (m *MockChainClient) NativeAssets() []string {
	return m.Natives
}

func (m *MockChainClient) TxExplorerLink(hash string) string {
	return ""
}

type MockSyncer struct {
	SyncFunc func(ctx context.Context, syncedState string) (*SyncResult, error)
}

func (m *MockSyncer) Sync(ctx context.Context, syncedState string) (*SyncResult, error) {
	if m.SyncFunc != nil {
		return m.SyncFunc(ctx, syncedState)
	}

	return &SyncResult{NewState: syncedState}, nil
}

type MockExplorer struct {
	FetchIncomingPaymentsFunc func(ctx context.Context, address string, since time.Time) ([]*Candidate, error)
}

func (m *MockExplorer) FetchIncomingPayments(ctx context.Context, address string, since time.Time) ([]*Candidate, error) {
	if m.FetchIncomingPaymentsFunc != nil {
		return m.FetchIncomingPaymentsFunc(ctx, address, since)
	}

	return nil, nil
}

package chains

import (
	"context"
	"math/big"
	"time"

	"github.com/sisu-network/sentinel/types"
)

// ChainClient is the per chain codec and RPC capability used by the syncers, the submitter and the
// burn verifier. There is one implementation per chain family.
type ChainClient interface {
	Name() string
	Family() types.Family

	// CurrentHeight returns the latest block height. Chains without a block log return
	// types.ErrNotSupported.
	CurrentHeight(ctx context.Context) (int64, error)

	AddressToBytes(address string) ([]byte, error)
	AddressFromBytes(bz []byte) (string, error)
	ValidateAddress(address string) bool

	TxHashToBytes(hash string) ([]byte, error)
	TxHashFromBytes(bz []byte) (string, error)

	AssetDecimals(asset string) (int, error)
	// NativeAssets returns the assets whose origin is this chain.
	NativeAssets() []string
	TxExplorerLink(hash string) string
}

// SyncResult is the outcome of one sync pass: the transfers found and the checkpoint to store
// with them.
type SyncResult struct {
	Transfers []*types.Transfer
	NewState  string
	// Events that could not be decoded. NewState already moves past them.
	Failures []error
}

// Syncer pulls new burn and lock events since a checkpoint.
type Syncer interface {
	Sync(ctx context.Context, syncedState string) (*SyncResult, error)
}

// Candidate is a payment to an address seen on an explorer. It only lives for one verification
// pass.
type Candidate struct {
	TxHash          string
	Time            time.Time
	BalanceChange   *big.Int
	NumberOfOutputs int
	NumberOfInputs  int
	// Nil when the explorer does not report it.
	Fee *big.Int
}

// Explorer returns the incoming payments of an address on a UTXO chain.
type Explorer interface {
	// FetchIncomingPayments pages through the history of address, newest first, until it reaches
	// payments older than since or the configured page cap.
	FetchIncomingPayments(ctx context.Context, address string, since time.Time) ([]*Candidate, error)
}

// Chain groups everything the relayer knows about one configured chain. Syncer is nil for chains
// without burn events and Explorer is nil for non UTXO chains.
type Chain struct {
	Client   ChainClient
	Syncer   Syncer
	Explorer Explorer
}

func (c *Chain) Name() string {
	return c.Client.Name()
}

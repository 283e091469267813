package cardano

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/blockfrost/blockfrost-go"
	"github.com/sisu-network/sentinel/config"
)

const (
	ParamsOrderDesc = "desc"
	UnitLovelace    = "lovelace"
)

type Output struct {
	Address  string
	Lovelace *big.Int
}

type Transaction struct {
	Hash    string
	Time    time.Time
	Fee     *big.Int
	Inputs  int
	Outputs []*Output
}

// Provider is the subset of a cardano indexer the explorer reads from.
type Provider interface {
	// AddressTransactions returns tx hashes of an address, newest first. Pages start at 1.
	AddressTransactions(ctx context.Context, address string, page, count int) ([]string, error)
	Transaction(ctx context.Context, hash string) (*Transaction, error)
}

type blockfrostProvider struct {
	inner blockfrost.APIClient
}

func NewBlockfrostProvider(cfg config.Explorer) Provider {
	return &blockfrostProvider{
		inner: blockfrost.NewAPIClient(blockfrost.APIClientOptions{
			ProjectID: cfg.ApiKey,
			Server:    cfg.Url,
		}),
	}
}

func (b *blockfrostProvider) AddressTransactions(ctx context.Context, address string, page, count int) ([]string, error) {
	btxs, err := b.inner.AddressTransactions(ctx, address, blockfrost.APIQueryParams{
		Count: count,
		Page:  page,
		Order: ParamsOrderDesc,
	})
	if err != nil {
		return nil, err
	}

	hashes := make([]string, 0, len(btxs))
	for _, btx := range btxs {
		hashes = append(hashes, btx.TxHash)
	}

	return hashes, nil
}

func (b *blockfrostProvider) Transaction(ctx context.Context, hash string) (*Transaction, error) {
	content, err := b.inner.Transaction(ctx, hash)
	if err != nil {
		return nil, err
	}

	utxos, err := b.inner.TransactionUTXOs(ctx, hash)
	if err != nil {
		return nil, err
	}

	fee, ok := new(big.Int).SetString(content.Fees, 10)
	if !ok {
		return nil, fmt.Errorf("invalid fees %q of tx %s", content.Fees, hash)
	}

	tx := &Transaction{
		Hash:    hash,
		Time:    time.Unix(int64(content.BlockTime), 0).UTC(),
		Fee:     fee,
		Inputs:  len(utxos.Inputs),
		Outputs: make([]*Output, 0, len(utxos.Outputs)),
	}

	for _, output := range utxos.Outputs {
		lovelace := big.NewInt(0)
		for _, amount := range output.Amount {
			if amount.Unit != UnitLovelace {
				continue
			}
			if _, ok := lovelace.SetString(amount.Quantity, 10); !ok {
				return nil, fmt.Errorf("invalid lovelace quantity %q of tx %s", amount.Quantity, hash)
			}
		}

		tx.Outputs = append(tx.Outputs, &Output{Address: output.Address, Lovelace: lovelace})
	}

	return tx, nil
}

package cardano

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sisu-network/lib/log"
	"github.com/sisu-network/sentinel/chains"
	"github.com/sisu-network/sentinel/config"
	"github.com/sisu-network/sentinel/types"
)

const DefaultPageSize = 20

// Explorer lists payments to a cardano address. Like the insight explorer, every output paid to
// the address is its own candidate named "<hash>_<output index>".
type Explorer struct {
	cfg      config.Explorer
	provider Provider
}

func NewExplorer(cfg config.Explorer, provider Provider) *Explorer {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 5
	}

	return &Explorer{cfg: cfg, provider: provider}
}

func (e *Explorer) FetchIncomingPayments(ctx context.Context, address string, since time.Time) ([]*chains.Candidate, error) {
	ret := make([]*chains.Candidate, 0)

	for page := 1; page <= e.cfg.MaxPages; page++ {
		hashes, err := e.provider.AddressTransactions(ctx, address, page, e.cfg.PageSize)
		if err != nil {
			return nil, wrapErr(err)
		}

		reachedSince := false
		for _, hash := range hashes {
			tx, err := e.provider.Transaction(ctx, hash)
			if err != nil {
				if err = wrapErr(err); types.IsRateLimit(err) {
					return nil, err
				}
				log.Warnf("[%s] Skipping tx %s: %v", Cardano, hash, err)
				continue
			}

			if tx.Time.Before(since) {
				reachedSince = true
			}
			ret = append(ret, toCandidates(address, tx)...)
		}

		if len(hashes) < e.cfg.PageSize || reachedSince {
			break
		}
	}

	return ret, nil
}

func toCandidates(address string, tx *Transaction) []*chains.Candidate {
	ret := make([]*chains.Candidate, 0)
	for i, output := range tx.Outputs {
		if output.Address != address {
			continue
		}

		ret = append(ret, &chains.Candidate{
			TxHash:          fmt.Sprintf("%s_%d", tx.Hash, i),
			Time:            tx.Time,
			BalanceChange:   output.Lovelace,
			NumberOfOutputs: len(tx.Outputs),
			NumberOfInputs:  tx.Inputs,
			Fee:             tx.Fee,
		})
	}

	return ret
}

// wrapErr maps blockfrost throttling errors. The client only exposes them through the message.
func wrapErr(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "over limit") || strings.Contains(msg, "too many requests") {
		return types.NewRateLimitErr("blockfrost", err.Error())
	}

	return err
}

package utxo

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/sisu-network/lib/log"
	"github.com/sisu-network/sentinel/chains"
	"github.com/sisu-network/sentinel/config"
	"github.com/sisu-network/sentinel/network"
)

const (
	DefaultBlockchairPageSize = 100
	blockchairTimeLayout      = "2006-01-02 15:04:05"
)

type blockchairTransaction struct {
	BlockId       int64       `json:"block_id"`
	Hash          string      `json:"hash"`
	Time          string      `json:"time"`
	BalanceChange json.Number `json:"balance_change"`
}

type blockchairAddress struct {
	Transactions []*blockchairTransaction `json:"transactions"`
}

type blockchairResponse struct {
	Data map[string]*blockchairAddress `json:"data"`
}

// Blockchair reads address dashboards from the blockchair api. Dashboards only carry the balance
// change of each transaction, so candidates have no output count or fee.
type Blockchair struct {
	chain      string
	cfg        config.Explorer
	httpClient network.Http
}

func NewBlockchair(chain string, cfg config.Explorer, httpClient network.Http) *Blockchair {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultBlockchairPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 1
	}

	return &Blockchair{chain: chain, cfg: cfg, httpClient: httpClient}
}

func (b *Blockchair) FetchIncomingPayments(ctx context.Context, address string, since time.Time) ([]*chains.Candidate, error) {
	ret := make([]*chains.Candidate, 0)

	for page := 0; page < b.cfg.MaxPages; page++ {
		txs, err := b.fetchPage(ctx, address, page*b.cfg.PageSize)
		if err != nil {
			return nil, err
		}

		reachedSince := false
		for _, tx := range txs {
			candidate, err := b.toCandidate(tx)
			if err != nil {
				log.Warnf("[%s] Skipping blockchair tx %s: %v", b.chain, tx.Hash, err)
				continue
			}

			if candidate.Time.Before(since) {
				reachedSince = true
			}
			ret = append(ret, candidate)
		}

		if len(txs) < b.cfg.PageSize || reachedSince {
			break
		}
	}

	return ret, nil
}

func (b *Blockchair) fetchPage(ctx context.Context, address string, offset int) ([]*blockchairTransaction, error) {
	query := url.Values{}
	query.Set("transaction_details", "true")
	query.Set("limit", fmt.Sprintf("%d", b.cfg.PageSize))
	query.Set("offset", fmt.Sprintf("%d", offset))
	if b.cfg.ApiKey != "" {
		query.Set("key", b.cfg.ApiKey)
	}

	reqUrl := fmt.Sprintf("%s/dashboards/address/%s?%s", b.cfg.Url, url.PathEscape(address), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqUrl, nil)
	if err != nil {
		return nil, err
	}

	bz, err := b.httpClient.Get(req)
	if err != nil {
		return nil, wrapHttpErr("blockchair", err)
	}

	response := new(blockchairResponse)
	if err := json.Unmarshal(bz, response); err != nil {
		return nil, fmt.Errorf("cannot decode blockchair response: %w", err)
	}

	// Blockchair may normalize the key, e.g. lower case bech32 addresses.
	for _, data := range response.Data {
		if data != nil {
			return data.Transactions, nil
		}
	}

	return nil, nil
}

func (b *Blockchair) toCandidate(tx *blockchairTransaction) (*chains.Candidate, error) {
	t, err := time.ParseInLocation(blockchairTimeLayout, tx.Time, time.UTC)
	if err != nil {
		return nil, err
	}

	change, ok := new(big.Int).SetString(tx.BalanceChange.String(), 10)
	if !ok {
		return nil, fmt.Errorf("invalid balance change %s", tx.BalanceChange)
	}

	return &chains.Candidate{
		TxHash:        tx.Hash,
		Time:          t,
		BalanceChange: change,
	}, nil
}

package utxo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sisu-network/sentinel/chains"
	"github.com/sisu-network/sentinel/config"
	"github.com/sisu-network/sentinel/network"
)

const (
	DefaultInsightPageSize = 10
	insightDecimals        = 8
)

type insightVout struct {
	Value        decimal.Decimal `json:"value"`
	N            int             `json:"n"`
	ScriptPubKey struct {
		Addresses []string `json:"addresses"`
	} `json:"scriptPubKey"`
}

type insightItem struct {
	Txid string            `json:"txid"`
	Time int64             `json:"time"`
	Vin  []json.RawMessage `json:"vin"`
	Vout []*insightVout    `json:"vout"`
	Fees decimal.Decimal   `json:"fees"`
}

type insightResponse struct {
	TotalItems int            `json:"totalItems"`
	Items      []*insightItem `json:"items"`
}

// Insight reads address transactions from an insight api (zcash explorers). Every output paid to
// the address is a candidate named "<txid>_<vout>".
type Insight struct {
	chain      string
	cfg        config.Explorer
	httpClient network.Http
}

func NewInsight(chain string, cfg config.Explorer, httpClient network.Http) *Insight {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultInsightPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 100
	}

	return &Insight{chain: chain, cfg: cfg, httpClient: httpClient}
}

func (in *Insight) FetchIncomingPayments(ctx context.Context, address string, since time.Time) ([]*chains.Candidate, error) {
	ret := make([]*chains.Candidate, 0)

	for page := 0; page < in.cfg.MaxPages; page++ {
		offset := page * in.cfg.PageSize
		items, err := in.fetchPage(ctx, address, offset)
		if err != nil {
			return nil, err
		}

		for _, item := range items {
			ret = append(ret, in.toCandidates(address, item)...)
		}

		if len(items) < in.cfg.PageSize || items[len(items)-1].Time < since.Unix() {
			break
		}
	}

	return ret, nil
}

func (in *Insight) fetchPage(ctx context.Context, address string, offset int) ([]*insightItem, error) {
	reqUrl := fmt.Sprintf("%s/addrs/%s/txs?from=%d&to=%d", in.cfg.Url, address, offset, offset+in.cfg.PageSize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqUrl, nil)
	if err != nil {
		return nil, err
	}

	bz, err := in.httpClient.Get(req)
	if err != nil {
		return nil, wrapHttpErr("insight", err)
	}

	response := new(insightResponse)
	if err := json.Unmarshal(bz, response); err != nil {
		return nil, fmt.Errorf("cannot decode insight response: %w", err)
	}

	return response.Items, nil
}

func (in *Insight) toCandidates(address string, item *insightItem) []*chains.Candidate {
	ret := make([]*chains.Candidate, 0)
	fee := item.Fees.Shift(insightDecimals).BigInt()

	for i, vout := range item.Vout {
		paid := false
		for _, a := range vout.ScriptPubKey.Addresses {
			if a == address {
				paid = true
				break
			}
		}
		if !paid {
			continue
		}

		ret = append(ret, &chains.Candidate{
			TxHash:          fmt.Sprintf("%s_%d", item.Txid, i),
			Time:            time.Unix(item.Time, 0).UTC(),
			BalanceChange:   vout.Value.Shift(insightDecimals).BigInt(),
			NumberOfOutputs: len(item.Vout),
			NumberOfInputs:  len(item.Vin),
			Fee:             fee,
		})
	}

	return ret
}

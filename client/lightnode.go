package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/sisu-network/lib/log"
	"github.com/sisu-network/sentinel/types"
	"github.com/sisu-network/sentinel/utils"
	"github.com/ybbus/jsonrpc/v3"
)

const (
	methodQueryTx         = "ren_queryTx"
	methodSubmitTx        = "ren_submitTx"
	methodQueryBlockState = "ren_queryBlockState"

	feeCacheTtl = 10 * time.Minute
)

var notFoundRegex = regexp.MustCompile(`not found$`)

// TxResult is the state of a transaction on the signing network.
type TxResult struct {
	Hash   string
	Status types.TxStatus
	// Destination chain tx hash bytes. Empty until the transaction is done.
	OutTxid []byte
	Revert  string
}

// SigningClient talks to the signing network gateway (lightnode).
type SigningClient interface {
	// QueryTx returns types.ErrTxNotFound when the network has never seen the hash.
	QueryTx(ctx context.Context, hash string) (*TxResult, error)
	SubmitTx(ctx context.Context, tx *Tx) error
	// ReleaseFee returns the fee, in the asset's smallest unit, charged when releasing asset on
	// its origin chain.
	ReleaseFee(ctx context.Context, asset string) (*big.Int, error)
}

type queryTxResponse struct {
	Tx struct {
		Hash string `json:"hash"`
		Out  *struct {
			V struct {
				Txid   string `json:"txid"`
				Revert string `json:"revert"`
			} `json:"v"`
		} `json:"out"`
	} `json:"tx"`
	TxStatus string `json:"txStatus"`
}

type assetState struct {
	GasLimit string `json:"gasLimit"`
	GasCap   string `json:"gasCap"`
}

type queryBlockStateResponse struct {
	State struct {
		V map[string]*assetState `json:"v"`
	} `json:"state"`
}

type cachedFee struct {
	fee *big.Int
	at  time.Time
}

type lightnodeClient struct {
	url    string
	client jsonrpc.RPCClient

	fees *lru.Cache
	lock *sync.Mutex
}

func NewLightnodeClient(url string) SigningClient {
	return newLightnodeClient(url, jsonrpc.NewClient(url))
}

func newLightnodeClient(url string, client jsonrpc.RPCClient) *lightnodeClient {
	return &lightnodeClient{
		url:    url,
		client: client,
		fees:   lru.New(64),
		lock:   &sync.Mutex{},
	}
}

func (c *lightnodeClient) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	res, err := c.client.Call(ctx, method, params)
	if err != nil {
		var httpErr *jsonrpc.HTTPError
		if errors.As(err, &httpErr) && httpErr.Code == 429 {
			return types.NewRateLimitErr("lightnode", err.Error())
		}
		return err
	}

	if res.Error != nil {
		return res.Error
	}

	if out == nil {
		return nil
	}

	return res.GetObject(out)
}

func (c *lightnodeClient) QueryTx(ctx context.Context, hash string) (*TxResult, error) {
	response := new(queryTxResponse)
	err := c.call(ctx, methodQueryTx, map[string]string{"txHash": hash}, response)
	if err != nil {
		var rpcErr *jsonrpc.RPCError
		if errors.As(err, &rpcErr) && notFoundRegex.MatchString(rpcErr.Message) {
			return nil, types.ErrTxNotFound
		}

		return nil, err
	}

	result := &TxResult{
		Hash:   hash,
		Status: types.TxStatus(response.TxStatus),
	}

	if response.Tx.Out != nil {
		result.Revert = response.Tx.Out.V.Revert
		if response.Tx.Out.V.Txid != "" {
			txid, err := utils.FromBase64(response.Tx.Out.V.Txid)
			if err != nil {
				return nil, fmt.Errorf("invalid out txid of %s: %w", hash, err)
			}
			result.OutTxid = txid
		}
	}

	return result, nil
}

func (c *lightnodeClient) SubmitTx(ctx context.Context, tx *Tx) error {
	log.Verbosef("Submitting %s (%s) to lightnode", tx.Hash, tx.Selector)

	return c.call(ctx, methodSubmitTx, map[string]interface{}{"tx": tx}, nil)
}

func (c *lightnodeClient) ReleaseFee(ctx context.Context, asset string) (*big.Int, error) {
	c.lock.Lock()
	if v, ok := c.fees.Get(asset); ok {
		cached := v.(*cachedFee)
		if time.Since(cached.at) < feeCacheTtl {
			c.lock.Unlock()
			return new(big.Int).Set(cached.fee), nil
		}
	}
	c.lock.Unlock()

	response := new(queryBlockStateResponse)
	if err := c.call(ctx, methodQueryBlockState, map[string]string{"contract": asset}, response); err != nil {
		return nil, err
	}

	state, ok := response.State.V[asset]
	if !ok || state == nil {
		return nil, fmt.Errorf("no block state for asset %s", asset)
	}

	gasLimit, ok1 := new(big.Int).SetString(state.GasLimit, 10)
	gasCap, ok2 := new(big.Int).SetString(state.GasCap, 10)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("invalid gas state %s/%s for asset %s", state.GasLimit, state.GasCap, asset)
	}

	fee := new(big.Int).Mul(gasLimit, gasCap)

	c.lock.Lock()
	c.fees.Add(asset, &cachedFee{fee: fee, at: time.Now()})
	c.lock.Unlock()

	return new(big.Int).Set(fee), nil
}

package solana

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sisu-network/lib/log"
	"github.com/ybbus/jsonrpc/v3"
)

const (
	CommitmentFinalized = "finalized"

	signaturesPageLimit = 1000
)

// SignatureInfo is one entry of getSignaturesForAddress.
type SignatureInfo struct {
	Signature string      `json:"signature"`
	Slot      uint64      `json:"slot"`
	BlockTime *int64      `json:"blockTime"`
	Err       interface{} `json:"err"`
}

// SolanaClient is the subset of the solana json rpc used by the syncer.
type SolanaClient interface {
	GetSlot(ctx context.Context) (uint64, error)
	// GetAccountData returns nil data without error when the account does not exist.
	GetAccountData(ctx context.Context, account string) ([]byte, error)
	// GetSignaturesForAddress returns the signatures of an account, newest first.
	GetSignaturesForAddress(ctx context.Context, account string) ([]*SignatureInfo, error)
}

type defaultSolanaClient struct {
	chain   string
	clients []jsonrpc.RPCClient
}

func NewSolanaClient(chain string, rpcs []string) SolanaClient {
	clients := make([]jsonrpc.RPCClient, 0, len(rpcs))
	for _, rpc := range rpcs {
		clients = append(clients, jsonrpc.NewClient(rpc))
		log.Info("Adding solana client at rpc: ", rpc)
	}

	return &defaultSolanaClient{chain: chain, clients: clients}
}

type commitmentConfig struct {
	Commitment string `json:"commitment"`
	Encoding   string `json:"encoding,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

func (c *defaultSolanaClient) GetSlot(ctx context.Context) (uint64, error) {
	return executeWithClients(c.clients, func(client jsonrpc.RPCClient) (uint64, bool, error) {
		var slot uint64
		// A single struct param would be sent as an object, solana wants an array.
		stop, err := call(ctx, client, "getSlot", &slot, []interface{}{&commitmentConfig{Commitment: CommitmentFinalized}})
		return slot, stop, err
	})
}

func (c *defaultSolanaClient) GetAccountData(ctx context.Context, account string) ([]byte, error) {
	type accountInfo struct {
		Value *struct {
			Data     []string `json:"data"`
			Owner    string   `json:"owner"`
			Lamports uint64   `json:"lamports"`
		} `json:"value"`
	}

	info, err := executeWithClients(c.clients, func(client jsonrpc.RPCClient) (*accountInfo, bool, error) {
		info := new(accountInfo)
		stop, err := call(ctx, client, "getAccountInfo", info, account,
			&commitmentConfig{Commitment: CommitmentFinalized, Encoding: "base64"})
		return info, stop, err
	})
	if err != nil {
		return nil, err
	}

	if info == nil || info.Value == nil {
		return nil, nil
	}

	if len(info.Value.Data) != 2 || info.Value.Data[1] != "base64" {
		return nil, fmt.Errorf("unexpected data encoding of account %s", account)
	}

	return base64.StdEncoding.DecodeString(info.Value.Data[0])
}

func (c *defaultSolanaClient) GetSignaturesForAddress(ctx context.Context, account string) ([]*SignatureInfo, error) {
	return executeWithClients(c.clients, func(client jsonrpc.RPCClient) ([]*SignatureInfo, bool, error) {
		sigs := make([]*SignatureInfo, 0)
		stop, err := call(ctx, client, "getSignaturesForAddress", &sigs, account,
			&commitmentConfig{Commitment: CommitmentFinalized, Limit: signaturesPageLimit})
		return sigs, stop, err
	})
}

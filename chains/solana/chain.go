package solana

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/sisu-network/sentinel/config"
	"github.com/sisu-network/sentinel/types"
)

// Chain is the ChainClient of a solana chain. Addresses are base58 public keys and tx hashes are
// base58 signatures.
type Chain struct {
	cfg    config.Chain
	client SolanaClient
}

func NewChain(cfg config.Chain, client SolanaClient) *Chain {
	return &Chain{cfg: cfg, client: client}
}

func (c *Chain) Name() string {
	return c.cfg.Chain
}

func (c *Chain) Family() types.Family {
	return types.FamilySolana
}

func (c *Chain) CurrentHeight(ctx context.Context) (int64, error) {
	slot, err := c.client.GetSlot(ctx)
	if err != nil {
		return 0, err
	}

	return int64(slot), nil
}

func (c *Chain) AddressToBytes(address string) ([]byte, error) {
	key, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("invalid %s address %s: %w", c.cfg.Chain, address, err)
	}

	return key.Bytes(), nil
}

func (c *Chain) AddressFromBytes(bz []byte) (string, error) {
	if len(bz) != solana.PublicKeyLength {
		return "", fmt.Errorf("invalid %s address length %d", c.cfg.Chain, len(bz))
	}

	return solana.PublicKeyFromBytes(bz).String(), nil
}

func (c *Chain) ValidateAddress(address string) bool {
	_, err := solana.PublicKeyFromBase58(address)
	return err == nil
}

func (c *Chain) TxHashToBytes(hash string) ([]byte, error) {
	sig, err := solana.SignatureFromBase58(hash)
	if err != nil {
		return nil, fmt.Errorf("invalid %s tx hash %s: %w", c.cfg.Chain, hash, err)
	}

	return sig[:], nil
}

func (c *Chain) TxHashFromBytes(bz []byte) (string, error) {
	var sig solana.Signature
	if len(bz) != len(sig) {
		return "", fmt.Errorf("invalid %s tx hash length %d", c.cfg.Chain, len(bz))
	}
	copy(sig[:], bz)

	return sig.String(), nil
}

func (c *Chain) AssetDecimals(asset string) (int, error) {
	return c.cfg.AssetDecimals(asset)
}

func (c *Chain) NativeAssets() []string {
	return c.cfg.NativeAssets
}

func (c *Chain) TxExplorerLink(hash string) string {
	return c.cfg.ExplorerLink(hash)
}

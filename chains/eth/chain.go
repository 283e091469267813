package eth

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sisu-network/sentinel/config"
	"github.com/sisu-network/sentinel/types"
)

// Chain is the ChainClient of an EVM chain.
type Chain struct {
	cfg    config.Chain
	client EthClient
}

func NewChain(cfg config.Chain, client EthClient) *Chain {
	return &Chain{cfg: cfg, client: client}
}

func (c *Chain) Name() string {
	return c.cfg.Chain
}

func (c *Chain) Family() types.Family {
	return types.FamilyEvm
}

func (c *Chain) CurrentHeight(ctx context.Context) (int64, error) {
	height, err := c.client.BlockNumber(ctx)
	if err != nil {
		return 0, err
	}

	return int64(height), nil
}

func (c *Chain) AddressToBytes(address string) ([]byte, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid %s address %s", c.cfg.Chain, address)
	}

	return common.HexToAddress(address).Bytes(), nil
}

func (c *Chain) AddressFromBytes(bz []byte) (string, error) {
	if len(bz) != common.AddressLength {
		return "", fmt.Errorf("invalid %s address length %d", c.cfg.Chain, len(bz))
	}

	return common.BytesToAddress(bz).Hex(), nil
}

func (c *Chain) ValidateAddress(address string) bool {
	return common.IsHexAddress(address)
}

func (c *Chain) TxHashToBytes(hash string) ([]byte, error) {
	bz, err := hexutil.Decode(hash)
	if err != nil {
		return nil, fmt.Errorf("invalid %s tx hash %s: %w", c.cfg.Chain, hash, err)
	}
	if len(bz) != common.HashLength {
		return nil, fmt.Errorf("invalid %s tx hash length %d", c.cfg.Chain, len(bz))
	}

	return bz, nil
}

func (c *Chain) TxHashFromBytes(bz []byte) (string, error) {
	if len(bz) != common.HashLength {
		return "", fmt.Errorf("invalid %s tx hash length %d", c.cfg.Chain, len(bz))
	}

	return common.BytesToHash(bz).Hex(), nil
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

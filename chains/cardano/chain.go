package cardano

import (
	"context"
	"fmt"

	"github.com/echovl/cardano-go"
	"github.com/sisu-network/sentinel/config"
	"github.com/sisu-network/sentinel/types"
)

const Cardano = "Cardano"

// Chain is the ChainClient of cardano. Addresses are bech32 strings and their bytes are the raw
// address header + credentials.
type Chain struct {
	cfg     config.Chain
	network cardano.Network
}

func NewChain(cfg config.Chain) *Chain {
	network := cardano.Mainnet
	if cfg.Testnet {
		network = cardano.Testnet
	}

	return &Chain{cfg: cfg, network: network}
}

func (c *Chain) Name() string {
	return c.cfg.Chain
}

func (c *Chain) Family() types.Family {
	return types.FamilyCardano
}

func (c *Chain) CurrentHeight(ctx context.Context) (int64, error) {
	return 0, types.ErrNotSupported
}

func (c *Chain) parse(address string) (cardano.Address, error) {
	addr, err := cardano.NewAddress(address)
	if err != nil {
		return cardano.Address{}, err
	}

	if addr.Network != c.network {
		return cardano.Address{}, fmt.Errorf("address %s is not on network %d", address, c.network)
	}

	return addr, nil
}

func (c *Chain) AddressToBytes(address string) ([]byte, error) {
	addr, err := c.parse(address)
	if err != nil {
		return nil, err
	}

	return addr.Bytes(), nil
}

func (c *Chain) AddressFromBytes(bz []byte) (string, error) {
	addr, err := cardano.NewAddressFromBytes(bz)
	if err != nil {
		return "", err
	}
	if addr.Network != c.network {
		return "", fmt.Errorf("address bytes %x are not on network %d", bz, c.network)
	}

	return addr.Bech32(), nil
}

func (c *Chain) ValidateAddress(address string) bool {
	_, err := c.parse(address)
	return err == nil
}

func (c *Chain) TxHashToBytes(hash string) ([]byte, error) {
	h, err := cardano.NewHash32(hash)
	if err != nil {
		return nil, fmt.Errorf("invalid cardano tx hash %s: %w", hash, err)
	}
	if len(h) != 32 {
		return nil, fmt.Errorf("invalid cardano tx hash %s", hash)
	}

	return h, nil
}

func (c *Chain) TxHashFromBytes(bz []byte) (string, error) {
	if len(bz) != 32 {
		return "", fmt.Errorf("invalid cardano tx hash length %d", len(bz))
	}

	return cardano.Hash32(bz).String(), nil
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

package utxo

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/sisu-network/sentinel/config"
	"github.com/sisu-network/sentinel/types"
)

// Chain is the ChainClient of a bitcoin like chain. These chains have no gateway contract: the
// relayer never syncs them and only checks their address history when they are a destination.
type Chain struct {
	cfg   config.Chain
	codec addressCodec
}

func NewChain(cfg config.Chain) (*Chain, error) {
	var codec addressCodec
	if cfg.Chain == Zcash {
		codec = newZcashCodec(cfg.Testnet)
	} else {
		params, err := btcParams(cfg.Chain, cfg.Testnet)
		if err != nil {
			return nil, err
		}
		codec = &btcCodec{params: params}
	}

	return &Chain{cfg: cfg, codec: codec}, nil
}

func (c *Chain) Name() string {
	return c.cfg.Chain
}

func (c *Chain) Family() types.Family {
	return types.FamilyUtxo
}

func (c *Chain) CurrentHeight(ctx context.Context) (int64, error) {
	return 0, types.ErrNotSupported
}

func (c *Chain) AddressToBytes(address string) ([]byte, error) {
	return c.codec.toBytes(address)
}

func (c *Chain) AddressFromBytes(bz []byte) (string, error) {
	return c.codec.fromBytes(bz)
}

func (c *Chain) ValidateAddress(address string) bool {
	return c.codec.validate(address)
}

// TxHashToBytes decodes a hex tx hash. The byte order is the one shown by explorers.
func (c *Chain) TxHashToBytes(hash string) ([]byte, error) {
	bz, err := hex.DecodeString(hash)
	if err != nil || len(bz) != 32 {
		return nil, fmt.Errorf("invalid %s tx hash %s", c.cfg.Chain, hash)
	}

	return bz, nil
}

func (c *Chain) TxHashFromBytes(bz []byte) (string, error) {
	if len(bz) != 32 {
		return "", fmt.Errorf("invalid %s tx hash length %d", c.cfg.Chain, len(bz))
	}

	return hex.EncodeToString(bz), nil
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

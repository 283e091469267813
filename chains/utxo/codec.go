package utxo

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// addressCodec validates the addresses of one utxo chain and converts them to the bytes used in
// transfer recipients: the raw base58 payload for base58 addresses and the utf8 string for bech32
// ones.
type addressCodec interface {
	validate(address string) bool
	toBytes(address string) ([]byte, error)
	fromBytes(bz []byte) (string, error)
}

type btcCodec struct {
	params *chaincfg.Params
}

func (c *btcCodec) validate(address string) bool {
	decoded, err := btcutil.DecodeAddress(address, c.params)
	if err != nil {
		return false
	}

	return decoded.IsForNet(c.params)
}

func (c *btcCodec) toBytes(address string) ([]byte, error) {
	if !c.validate(address) {
		return nil, fmt.Errorf("invalid %s address %s", c.params.Name, address)
	}

	if c.params.Bech32HRPSegwit != "" && strings.HasPrefix(strings.ToLower(address), c.params.Bech32HRPSegwit+"1") {
		return []byte(address), nil
	}

	return base58.Decode(address), nil
}

func (c *btcCodec) fromBytes(bz []byte) (string, error) {
	if utf8.Valid(bz) && c.validate(string(bz)) {
		return string(bz), nil
	}

	address := base58.Encode(bz)
	if !c.validate(address) {
		return "", fmt.Errorf("bytes %x are not a %s address", bz, c.params.Name)
	}

	return address, nil
}

// Zcash transparent addresses use a two byte version that btcutil does not understand.
var (
	zcashMainNetPrefixes = [][]byte{{0x1c, 0xb8}, {0x1c, 0xbd}}
	zcashTestNetPrefixes = [][]byte{{0x1d, 0x25}, {0x1c, 0xba}}
)

const zcashAddressLength = 2 + 20 + 4

type zcashCodec struct {
	prefixes [][]byte
}

func newZcashCodec(testnet bool) *zcashCodec {
	if testnet {
		return &zcashCodec{prefixes: zcashTestNetPrefixes}
	}
	return &zcashCodec{prefixes: zcashMainNetPrefixes}
}

func (c *zcashCodec) validateBytes(bz []byte) bool {
	if len(bz) != zcashAddressLength {
		return false
	}

	payload, checksum := bz[:len(bz)-4], bz[len(bz)-4:]
	if !bytes.Equal(chainhash.DoubleHashB(payload)[:4], checksum) {
		return false
	}

	for _, prefix := range c.prefixes {
		if bytes.HasPrefix(payload, prefix) {
			return true
		}
	}

	return false
}

func (c *zcashCodec) validate(address string) bool {
	return c.validateBytes(base58.Decode(address))
}

func (c *zcashCodec) toBytes(address string) ([]byte, error) {
	bz := base58.Decode(address)
	if !c.validateBytes(bz) {
		return nil, fmt.Errorf("invalid zcash address %s", address)
	}

	return bz, nil
}

func (c *zcashCodec) fromBytes(bz []byte) (string, error) {
	if !c.validateBytes(bz) {
		return "", fmt.Errorf("bytes %x are not a zcash address", bz)
	}

	return base58.Encode(bz), nil
}

package utxo

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
)

// Chain names with a utxo codec.
const (
	Bitcoin     = "Bitcoin"
	BitcoinCash = "BitcoinCash"
	Dogecoin    = "Dogecoin"
	DigiByte    = "DigiByte"
	Zcash       = "Zcash"
)

var (
	dogeMainNetParams = withPrefixes(chaincfg.MainNetParams, 0xc0c0c0c0, 0x1e, 0x16, "")
	dogeTestNetParams = withPrefixes(chaincfg.TestNet3Params, 0xdcb7c1fc, 0x71, 0xc4, "")
	dgbMainNetParams  = withPrefixes(chaincfg.MainNetParams, 0xdab6c3fa, 0x1e, 0x3f, "dgb")
	dgbTestNetParams  = withPrefixes(chaincfg.TestNet3Params, 0xddbdc8fd, 0x7e, 0x8c, "dgbt")
)

func init() {
	for _, params := range []*chaincfg.Params{dogeMainNetParams, dogeTestNetParams, dgbMainNetParams, dgbTestNetParams} {
		// Registration makes btcutil accept the bech32 prefixes of these networks.
		if err := chaincfg.Register(params); err != nil && err != chaincfg.ErrDuplicateNet {
			panic(err)
		}
	}
}

func withPrefixes(base chaincfg.Params, net uint32, pubKeyHash, scriptHash byte, hrp string) *chaincfg.Params {
	params := base
	params.Net = wire.BitcoinNet(net)
	params.PubKeyHashAddrID = pubKeyHash
	params.ScriptHashAddrID = scriptHash
	params.Bech32HRPSegwit = hrp
	return &params
}

// btcParams returns the address parameters of a bitcoin like chain.
func btcParams(chain string, testnet bool) (*chaincfg.Params, error) {
	switch chain {
	case Bitcoin, BitcoinCash:
		// Only legacy addresses are supported for bitcoin cash, they share bitcoin prefixes.
		if testnet {
			return &chaincfg.TestNet3Params, nil
		}
		return &chaincfg.MainNetParams, nil
	case Dogecoin:
		if testnet {
			return dogeTestNetParams, nil
		}
		return dogeMainNetParams, nil
	case DigiByte:
		if testnet {
			return dgbTestNetParams, nil
		}
		return dgbMainNetParams, nil
	}

	return nil, fmt.Errorf("chain %s has no bitcoin address params", chain)
}

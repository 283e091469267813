package utxo

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/sisu-network/sentinel/config"
	"github.com/sisu-network/sentinel/types"
	"github.com/stretchr/testify/require"
)

func newTestChain(t *testing.T, name string, testnet bool) *Chain {
	chain, err := NewChain(config.Chain{Chain: name, Testnet: testnet, Family: string(types.FamilyUtxo)})
	require.Nil(t, err)
	return chain
}

func zcashAddress(prefix []byte, hash []byte) string {
	payload := append(append([]byte{}, prefix...), hash...)
	return base58.Encode(append(payload, chainhash.DoubleHashB(payload)[:4]...))
}

func TestChain_Bitcoin(t *testing.T) {
	chain := newTestChain(t, Bitcoin, false)
	hash := bytes.Repeat([]byte{7}, 20)

	segwit, err := btcutil.NewAddressWitnessPubKeyHash(hash, &chaincfg.MainNetParams)
	require.Nil(t, err)
	for _, address := range []string{"1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", segwit.EncodeAddress()} {
		require.True(t, chain.ValidateAddress(address), address)

		bz, err := chain.AddressToBytes(address)
		require.Nil(t, err)
		back, err := chain.AddressFromBytes(bz)
		require.Nil(t, err)
		require.Equal(t, address, back)
	}

	// Base58 addresses are stored as their raw payload.
	bz, err := chain.AddressToBytes("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa")
	require.Nil(t, err)
	require.Len(t, bz, 25)

	testnet, err := btcutil.NewAddressPubKeyHash(hash, &chaincfg.TestNet3Params)
	require.Nil(t, err)
	require.False(t, chain.ValidateAddress(testnet.EncodeAddress()))
	require.True(t, newTestChain(t, Bitcoin, true).ValidateAddress(testnet.EncodeAddress()))

	require.False(t, chain.ValidateAddress("0x0000000000000000000000000000000000000001"))
	require.False(t, chain.ValidateAddress(""))

	_, err = chain.AddressFromBytes([]byte{1, 2, 3})
	require.NotNil(t, err)
}

func TestChain_Dogecoin(t *testing.T) {
	chain := newTestChain(t, Dogecoin, false)
	hash := bytes.Repeat([]byte{9}, 20)

	doge, err := btcutil.NewAddressPubKeyHash(hash, dogeMainNetParams)
	require.Nil(t, err)
	require.Equal(t, byte('D'), doge.EncodeAddress()[0])
	require.True(t, chain.ValidateAddress(doge.EncodeAddress()))

	btc, err := btcutil.NewAddressPubKeyHash(hash, &chaincfg.MainNetParams)
	require.Nil(t, err)
	require.False(t, chain.ValidateAddress(btc.EncodeAddress()))
}

func TestChain_Zcash(t *testing.T) {
	chain := newTestChain(t, Zcash, false)
	hash := bytes.Repeat([]byte{3}, 20)

	address := zcashAddress([]byte{0x1c, 0xb8}, hash)
	require.Equal(t, "t1", address[:2])
	require.True(t, chain.ValidateAddress(address))

	bz, err := chain.AddressToBytes(address)
	require.Nil(t, err)
	back, err := chain.AddressFromBytes(bz)
	require.Nil(t, err)
	require.Equal(t, address, back)

	// Testnet prefix on mainnet.
	require.False(t, chain.ValidateAddress(zcashAddress([]byte{0x1d, 0x25}, hash)))
	require.True(t, newTestChain(t, Zcash, true).ValidateAddress(zcashAddress([]byte{0x1d, 0x25}, hash)))

	// Bad checksum.
	raw := base58.Decode(address)
	raw[len(raw)-1] ^= 0xff
	require.False(t, chain.ValidateAddress(base58.Encode(raw)))
}

func TestChain_TxHash(t *testing.T) {
	chain := newTestChain(t, Bitcoin, false)

	hash := "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"
	bz, err := chain.TxHashToBytes(hash)
	require.Nil(t, err)
	back, err := chain.TxHashFromBytes(bz)
	require.Nil(t, err)
	require.Equal(t, hash, back)

	_, err = chain.TxHashToBytes("abcd")
	require.NotNil(t, err)
}

func TestChain_UnknownChain(t *testing.T) {
	_, err := NewChain(config.Chain{Chain: "Litecoin"})
	require.NotNil(t, err)
}

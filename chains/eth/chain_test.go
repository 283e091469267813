package eth

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sisu-network/sentinel/config"
	"github.com/stretchr/testify/require"
)

func TestChain_Codecs(t *testing.T) {
	cfg := testChainConfig()
	cfg.NativeAssets = []string{"ETH"}
	cfg.Decimals = map[string]int{"ETH": 18, "BTC": 8}
	cfg.TxExplorerLink = "https://etherscan.io/tx/%s"
	chain := NewChain(cfg, &MockEthClient{})

	address := "0x0000000000000000000000000000000000000001"
	require.True(t, chain.ValidateAddress(address))
	require.False(t, chain.ValidateAddress("bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"))

	bz, err := chain.AddressToBytes(address)
	require.Nil(t, err)
	require.Len(t, bz, common.AddressLength)

	back, err := chain.AddressFromBytes(bz)
	require.Nil(t, err)
	require.Equal(t, address, back)

	_, err = chain.AddressFromBytes([]byte("too short"))
	require.NotNil(t, err)

	hashBz, err := chain.TxHashToBytes(testTxHash.Hex())
	require.Nil(t, err)
	hash, err := chain.TxHashFromBytes(hashBz)
	require.Nil(t, err)
	require.Equal(t, testTxHash.Hex(), hash)

	decimals, err := chain.AssetDecimals("BTC")
	require.Nil(t, err)
	require.Equal(t, 8, decimals)
	_, err = chain.AssetDecimals("DOGE")
	require.NotNil(t, err)

	require.Equal(t, "https://etherscan.io/tx/0x1", chain.TxExplorerLink("0x1"))
	require.Equal(t, []string{"ETH"}, chain.NativeAssets())
}

func TestChain_ExplorerLinkUnset(t *testing.T) {
	chain := NewChain(config.Chain{Chain: "Ethereum"}, &MockEthClient{})
	require.Equal(t, "", chain.TxExplorerLink("0x1"))
}

package eth

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sisu-network/sentinel/types"
	"github.com/stretchr/testify/require"
)

var (
	testGateway   = common.HexToAddress("0xe4b679400F0f267212D5D812B95f58C83243EE71")
	testGateways  = map[string]string{"renBTC": testGateway.Hex()}
	testTxHash    = common.HexToHash("0x6a8a3e2d0b1f8c4b2f5a2d7b4c2e1f0a9b8c7d6e5f4a3b2c1d0e9f8a7b6c5d4e")
	testRecipient = "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"
)

func burnLog(t *testing.T, gateway common.Address, to []byte, amount, nonce *big.Int) ethtypes.Log {
	event := gatewayAbi.Events[EventLogBurn]
	data, err := event.Inputs.NonIndexed().Pack(to, amount)
	require.Nil(t, err)

	return ethtypes.Log{
		Address: gateway,
		Topics:  []common.Hash{event.ID, common.BigToHash(nonce), crypto.Keccak256Hash(to)},
		Data:    data,
		TxHash:  testTxHash,
	}
}

func toChainLog(t *testing.T, name string, gateway common.Address, recipient, toChain string, payload []byte,
	amount, nonce *big.Int) ethtypes.Log {
	event := gatewayAbi.Events[name]
	data, err := event.Inputs.NonIndexed().Pack(recipient, payload, amount, toChain)
	require.Nil(t, err)

	return ethtypes.Log{
		Address: gateway,
		Topics: []common.Hash{
			event.ID,
			crypto.Keccak256Hash([]byte(toChain)),
			common.BigToHash(nonce),
			crypto.Keccak256Hash([]byte(recipient)),
		},
		Data:   data,
		TxHash: testTxHash,
	}
}

func TestGateway_EventTopics(t *testing.T) {
	require.Equal(t, crypto.Keccak256Hash([]byte("LogBurn(bytes,uint256,uint256,bytes)")), EventTopic(EventLogBurn))
	require.Equal(t, crypto.Keccak256Hash([]byte("LogBurnToChain(string,string,bytes,uint256,uint256,string,string)")),
		EventTopic(EventLogBurnToChain))
	require.Equal(t, crypto.Keccak256Hash([]byte("LogLockToChain(string,string,bytes,uint256,uint256,string,string)")),
		EventTopic(EventLogLockToChain))
}

func TestGateway_DecodeLogBurn(t *testing.T) {
	gateways, err := newGatewaySet(testGateways)
	require.Nil(t, err)

	l := burnLog(t, testGateway, []byte(testRecipient), big.NewInt(1_000_000), big.NewInt(42))
	transfer, err := decodeLog("Ethereum", gateways, EventLogBurn, l)
	require.Nil(t, err)

	nonce := make([]byte, 32)
	nonce[31] = 42
	require.Equal(t, "BTC", transfer.Asset)
	require.Equal(t, "Ethereum", transfer.FromChain)
	require.Equal(t, "", transfer.ToChain)
	require.Equal(t, testTxHash.Hex(), transfer.FromTxHash)
	require.Equal(t, "0", transfer.FromTxIndex)
	require.Equal(t, nonce, transfer.Nonce)
	require.Equal(t, big.NewInt(1_000_000), transfer.Amount)
	require.Equal(t, []byte(testRecipient), transfer.ToRecipient)
	require.Empty(t, transfer.ToPayload)
}

func TestGateway_DecodeLogBurnToChain(t *testing.T) {
	gateways, err := newGatewaySet(testGateways)
	require.Nil(t, err)

	for _, event := range []string{EventLogBurnToChain, EventLogLockToChain} {
		l := toChainLog(t, event, testGateway, "0x0000000000000000000000000000000000000001", "Solana",
			[]byte{1, 2, 3}, big.NewInt(5000), big.NewInt(7))
		transfer, err := decodeLog("Ethereum", gateways, event, l)
		require.Nil(t, err, event)

		require.Equal(t, "BTC", transfer.Asset)
		require.Equal(t, "Solana", transfer.ToChain)
		require.Equal(t, []byte("0x0000000000000000000000000000000000000001"), transfer.ToRecipient)
		require.Equal(t, []byte{1, 2, 3}, transfer.ToPayload)
		require.Equal(t, big.NewInt(5000), transfer.Amount)
		require.Equal(t, byte(7), transfer.Nonce[31])
		require.Len(t, transfer.Nonce, 32)
	}
}

func TestGateway_DecodeFailures(t *testing.T) {
	gateways, err := newGatewaySet(testGateways)
	require.Nil(t, err)

	// Unknown contract.
	l := burnLog(t, common.Address{1}, []byte(testRecipient), big.NewInt(1), big.NewInt(1))
	_, err = decodeLog("Ethereum", gateways, EventLogBurn, l)
	require.True(t, types.IsMalformed(err))

	// Truncated data.
	l = burnLog(t, testGateway, []byte(testRecipient), big.NewInt(1), big.NewInt(1))
	l.Data = l.Data[:10]
	_, err = decodeLog("Ethereum", gateways, EventLogBurn, l)
	require.True(t, types.IsMalformed(err))

	// Missing nonce topic.
	l = burnLog(t, testGateway, []byte(testRecipient), big.NewInt(1), big.NewInt(1))
	l.Topics = l.Topics[:1]
	_, err = decodeLog("Ethereum", gateways, EventLogBurn, l)
	require.True(t, types.IsMalformed(err))
}

func TestGateway_InvalidGatewayAddress(t *testing.T) {
	_, err := newGatewaySet(map[string]string{"renBTC": "not an address"})
	require.NotNil(t, err)
}

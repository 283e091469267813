package eth

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/sisu-network/sentinel/types"
	"github.com/sisu-network/sentinel/utils"
)

const (
	EventLogBurn        = "LogBurn"
	EventLogBurnToChain = "LogBurnToChain"
	EventLogLockToChain = "LogLockToChain"
)

const gatewayAbiJson = `[
  {
    "anonymous": false,
    "type": "event",
    "name": "LogBurn",
    "inputs": [
      {"indexed": false, "name": "_to", "type": "bytes"},
      {"indexed": false, "name": "_amount", "type": "uint256"},
      {"indexed": true, "name": "_n", "type": "uint256"},
      {"indexed": true, "name": "_indexedTo", "type": "bytes"}
    ]
  },
  {
    "anonymous": false,
    "type": "event",
    "name": "LogBurnToChain",
    "inputs": [
      {"indexed": false, "name": "recipientAddress", "type": "string"},
      {"indexed": true, "name": "recipientChainIndexed", "type": "string"},
      {"indexed": false, "name": "recipientPayload", "type": "bytes"},
      {"indexed": false, "name": "amount", "type": "uint256"},
      {"indexed": true, "name": "burnNonce", "type": "uint256"},
      {"indexed": false, "name": "recipientChain", "type": "string"},
      {"indexed": true, "name": "recipientAddressIndexed", "type": "string"}
    ]
  },
  {
    "anonymous": false,
    "type": "event",
    "name": "LogLockToChain",
    "inputs": [
      {"indexed": false, "name": "recipientAddress", "type": "string"},
      {"indexed": true, "name": "recipientChainIndexed", "type": "string"},
      {"indexed": false, "name": "recipientPayload", "type": "bytes"},
      {"indexed": false, "name": "amount", "type": "uint256"},
      {"indexed": true, "name": "lockNonce", "type": "uint256"},
      {"indexed": false, "name": "recipientChain", "type": "string"},
      {"indexed": true, "name": "recipientAddressIndexed", "type": "string"}
    ]
  }
]`

var gatewayAbi abi.ABI

func init() {
	var err error
	gatewayAbi, err = abi.JSON(strings.NewReader(gatewayAbiJson))
	if err != nil {
		panic(err)
	}
}

// EventTopic returns the topic 0 of a gateway event.
func EventTopic(name string) common.Hash {
	return gatewayAbi.Events[name].ID
}

// gatewaySet maps gateway addresses to the asset they hold, without the "ren" prefix.
type gatewaySet map[common.Address]string

func newGatewaySet(gateways map[string]string) (gatewaySet, error) {
	ret := make(gatewaySet, len(gateways))
	for symbol, address := range gateways {
		if !common.IsHexAddress(address) {
			return nil, fmt.Errorf("invalid gateway address %s for %s", address, symbol)
		}
		ret[common.HexToAddress(address)] = strings.TrimPrefix(symbol, "ren")
	}

	return ret, nil
}

func (g gatewaySet) addresses() []common.Address {
	ret := make([]common.Address, 0, len(g))
	for address := range g {
		ret = append(ret, address)
	}

	return ret
}

// decodeLog turns a gateway event into a transfer. ToChain is left empty for LogBurn, it is
// resolved later from the asset origin.
func decodeLog(chain string, gateways gatewaySet, event string, l ethtypes.Log) (*types.Transfer, error) {
	txHash := l.TxHash.Hex()

	asset, ok := gateways[l.Address]
	if !ok {
		return nil, types.NewDecodeEventErr(chain, txHash, fmt.Errorf("event from unknown contract %s", l.Address.Hex()))
	}

	values := make(map[string]interface{})
	if err := gatewayAbi.UnpackIntoMap(values, event, l.Data); err != nil {
		return nil, types.NewDecodeEventErr(chain, txHash, err)
	}

	transfer := &types.Transfer{
		Asset:       asset,
		FromChain:   chain,
		FromTxHash:  txHash,
		FromTxIndex: "0",
	}

	var nonceTopic int
	switch event {
	case EventLogBurn:
		to, ok1 := values["_to"].([]byte)
		amount, ok2 := values["_amount"].(*big.Int)
		if !ok1 || !ok2 {
			return nil, types.NewDecodeEventErr(chain, txHash, fmt.Errorf("unexpected %s fields", event))
		}
		transfer.ToRecipient = to
		transfer.Amount = amount
		nonceTopic = 1

	case EventLogBurnToChain, EventLogLockToChain:
		recipient, ok1 := values["recipientAddress"].(string)
		payload, ok2 := values["recipientPayload"].([]byte)
		amount, ok3 := values["amount"].(*big.Int)
		toChain, ok4 := values["recipientChain"].(string)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return nil, types.NewDecodeEventErr(chain, txHash, fmt.Errorf("unexpected %s fields", event))
		}
		transfer.ToRecipient = []byte(recipient)
		transfer.ToPayload = payload
		transfer.Amount = amount
		transfer.ToChain = toChain
		nonceTopic = 2

	default:
		return nil, types.NewDecodeEventErr(chain, txHash, fmt.Errorf("unknown event %s", event))
	}

	if len(l.Topics) <= nonceTopic {
		return nil, types.NewDecodeEventErr(chain, txHash, fmt.Errorf("missing nonce topic"))
	}
	nonce := new(big.Int).SetBytes(l.Topics[nonceTopic].Bytes())
	transfer.Nonce = utils.ToNBytes(nonce, 32)

	return transfer, nil
}

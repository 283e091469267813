package client

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"io"
	"math/big"

	"github.com/sisu-network/sentinel/bridge"
	"github.com/sisu-network/sentinel/utils"
)

const TxVersion = "1"

// crossChainInputType is the type definition sent along with every cross chain input.
var crossChainInputType = json.RawMessage(`{"struct":[{"txid":"bytes"},{"txindex":"u32"},{"amount":"u256"},{"payload":"bytes"},{"phash":"bytes32"},{"to":"string"},{"nonce":"bytes32"},{"nhash":"bytes32"},{"gpubkey":"bytes"},{"ghash":"bytes32"}]}`)

// CrossChainInput is the decoded input of a mint or release. Bytes are base64 url encoded on the
// wire.
type CrossChainInput struct {
	Txid    []byte
	Txindex uint32
	Amount  *big.Int
	Payload []byte
	Phash   []byte
	To      string
	Nonce   []byte
	Nhash   []byte
	Gpubkey []byte
	Ghash   []byte
}

type crossChainInputJson struct {
	Txid    string `json:"txid"`
	Txindex string `json:"txindex"`
	Amount  string `json:"amount"`
	Payload string `json:"payload"`
	Phash   string `json:"phash"`
	To      string `json:"to"`
	Nonce   string `json:"nonce"`
	Nhash   string `json:"nhash"`
	Gpubkey string `json:"gpubkey"`
	Ghash   string `json:"ghash"`
}

type TxIn struct {
	T json.RawMessage     `json:"t"`
	V crossChainInputJson `json:"v"`
}

type Tx struct {
	Hash     string `json:"hash"`
	Version  string `json:"version"`
	Selector string `json:"selector"`
	In       TxIn   `json:"in"`
}

// NewCrossChainTx builds the signing network transaction of a transfer. The hash only depends on
// its arguments so the same transfer always maps to the same transaction.
func NewCrossChainTx(selector string, ids *bridge.Identifiers, in *CrossChainInput) *Tx {
	in.Phash = ids.PHash
	in.Nhash = ids.NHash
	in.Ghash = ids.GHash
	if in.Gpubkey == nil {
		in.Gpubkey = []byte{}
	}
	if in.Amount == nil {
		in.Amount = big.NewInt(0)
	}

	return &Tx{
		Hash:     utils.ToURLBase64(TxHash(TxVersion, selector, in)),
		Version:  TxVersion,
		Selector: selector,
		In: TxIn{
			T: crossChainInputType,
			V: crossChainInputJson{
				Txid:    utils.ToURLBase64(in.Txid),
				Txindex: big.NewInt(int64(in.Txindex)).String(),
				Amount:  in.Amount.String(),
				Payload: utils.ToURLBase64(in.Payload),
				Phash:   utils.ToURLBase64(in.Phash),
				To:      in.To,
				Nonce:   utils.ToURLBase64(in.Nonce),
				Nhash:   utils.ToURLBase64(in.Nhash),
				Gpubkey: utils.ToURLBase64(in.Gpubkey),
				Ghash:   utils.ToURLBase64(in.Ghash),
			},
		},
	}
}

// TxHash is sha256 over the packed version, selector and input. Strings and variable bytes are
// prefixed by their u32 length, fixed size values are written as is.
func TxHash(version, selector string, in *CrossChainInput) []byte {
	h := sha256.New()

	packBytes(h, []byte(version))
	packBytes(h, []byte(selector))

	packBytes(h, in.Txid)
	packU32(h, in.Txindex)
	h.Write(utils.ToNBytes(in.Amount, 32))
	packBytes(h, in.Payload)
	h.Write(in.Phash)
	packBytes(h, []byte(in.To))
	h.Write(in.Nonce)
	h.Write(in.Nhash)
	packBytes(h, in.Gpubkey)
	h.Write(in.Ghash)

	return h.Sum(nil)
}

func packU32(w io.Writer, v uint32) {
	bz := make([]byte, 4)
	binary.BigEndian.PutUint32(bz, v)
	w.Write(bz)
}

func packBytes(w io.Writer, bz []byte) {
	packU32(w, uint32(len(bz)))
	w.Write(bz)
}

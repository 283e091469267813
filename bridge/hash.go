package bridge

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/sisu-network/sentinel/utils"
)

// Identifiers are the hashes the signing network uses to address one logical transfer. They only
// depend on immutable fields of the transfer.
type Identifiers struct {
	NHash []byte
	PHash []byte
	SHash []byte
	GHash []byte
}

// NHash = keccak256(nonce | txid | uint32 big endian txindex)
func NHash(nonce, txid []byte, txindex uint32) []byte {
	index := make([]byte, 4)
	binary.BigEndian.PutUint32(index, txindex)

	return utils.Keccak256(nonce, txid, index)
}

func PHash(payload []byte) []byte {
	return utils.Keccak256(payload)
}

// SHash hashes the "<asset>/to<chain>" selector.
func SHash(asset, toChain string) []byte {
	return utils.Keccak256([]byte(fmt.Sprintf("%s/to%s", asset, toChain)))
}

func GHash(phash, shash, to, nonce []byte) []byte {
	return utils.Keccak256(phash, shash, to, nonce)
}

// ParseTxIndex parses the decimal output or log index of a source transaction.
func ParseTxIndex(s string) (uint32, error) {
	if s == "" {
		return 0, nil
	}

	index, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid tx index %q: %w", s, err)
	}

	return uint32(index), nil
}

// Derive computes all the identifiers of a transfer.
func Derive(asset, toChain string, nonce, txid []byte, txindex uint32, payload, to []byte) *Identifiers {
	phash := PHash(payload)
	shash := SHash(asset, toChain)

	return &Identifiers{
		NHash: NHash(nonce, txid, txindex),
		PHash: phash,
		SHash: shash,
		GHash: GHash(phash, shash, to, nonce),
	}
}

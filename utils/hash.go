package utils

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Keccak256 hashes the concatenation of all the inputs.
func Keccak256(data ...[]byte) []byte {
	hash := sha3.NewLegacyKeccak256()
	for _, bz := range data {
		hash.Write(bz)
	}

	return hash.Sum(nil)
}

// KeccakHex returns the first 32 hex characters of the keccak hash of a string. It is only used
// for short, log friendly identifiers.
func KeccakHex(s string) string {
	encoded := hex.EncodeToString(Keccak256([]byte(s)))
	if len(encoded) > 32 {
		encoded = encoded[:32]
	}

	return encoded
}

package utils

import (
	"encoding/base64"
	"math/big"

	"github.com/shopspring/decimal"
)

// FormatAmount shifts an amount in the smallest unit by the asset decimals, e.g. 150000000 with 8
// decimals is "1.5".
func FormatAmount(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}

	return decimal.NewFromBigInt(amount, int32(-decimals)).String()
}

// FormatAmountFixed is like FormatAmount but always prints `places` fractional digits.
func FormatAmountFixed(amount *big.Int, decimals int, places int32) string {
	if amount == nil {
		amount = big.NewInt(0)
	}

	return decimal.NewFromBigInt(amount, int32(-decimals)).StringFixed(places)
}

// ToNBytes returns the big endian encoding of value padded to n bytes.
func ToNBytes(value *big.Int, n int) []byte {
	ret := make([]byte, n)
	if value == nil {
		return ret
	}

	return value.FillBytes(ret)
}

func ToURLBase64(bz []byte) string {
	return base64.RawURLEncoding.EncodeToString(bz)
}

func FromBase64(s string) ([]byte, error) {
	if bz, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return bz, nil
	}

	return base64.StdEncoding.DecodeString(s)
}

// ShortHash returns a log friendly "abcdef...123456" version of long hashes.
func ShortHash(hash string) string {
	if len(hash) <= 16 {
		return hash
	}

	return hash[:6] + "..." + hash[len(hash)-6:]
}

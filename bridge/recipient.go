package bridge

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mr-tron/base58"
	"github.com/sisu-network/sentinel/chains"
	"github.com/sisu-network/sentinel/types"
)

const (
	FormatUtf8   = "utf8"
	FormatBytes  = "bytes"
	FormatBase58 = "base58"
)

type Recipient struct {
	Address string
	Bytes   []byte
	Format  string
}

// DecodeRecipient turns the opaque recipient of a transfer into an address of the destination
// chain. It tries the utf8 string, then the raw address bytes and then a base58 string wrapping the
// address bytes. The first candidate accepted by the chain wins.
func DecodeRecipient(client chains.ChainClient, recipient []byte) (*Recipient, error) {
	tried := make([]string, 0, 3)

	utf8Address := string(recipient)
	if utf8.ValidString(utf8Address) && client.ValidateAddress(utf8Address) {
		return newRecipient(client, utf8Address, FormatUtf8)
	}
	tried = append(tried, quote(utf8Address))

	if bytesAddress, err := client.AddressFromBytes(recipient); err == nil {
		if client.ValidateAddress(bytesAddress) {
			return newRecipient(client, bytesAddress, FormatBytes)
		}
		tried = append(tried, quote(bytesAddress))
	}

	if decoded, err := base58.Decode(utf8Address); err == nil && len(decoded) > 0 {
		if base58Address, err := client.AddressFromBytes(decoded); err == nil {
			if client.ValidateAddress(base58Address) {
				return newRecipient(client, base58Address, FormatBase58)
			}
			tried = append(tried, quote(base58Address))
		}
	}

	return nil, types.NewMalformedRecipientErr(client.Name(), recipient, tried)
}

func newRecipient(client chains.ChainClient, address, format string) (*Recipient, error) {
	bz, err := client.AddressToBytes(address)
	if err != nil {
		return nil, types.NewMalformedRecipientErr(client.Name(), []byte(address), []string{format})
	}

	return &Recipient{Address: address, Bytes: bz, Format: format}, nil
}

// quote strips control characters so that garbage recipients stay readable in logs and alerts.
func quote(s string) string {
	return fmt.Sprintf("'%s'", strings.Map(func(r rune) rune {
		if r < 0x20 || r == utf8.RuneError {
			return -1
		}
		return r
	}, s))
}

package bridge

import (
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/sisu-network/sentinel/chains"
	"github.com/sisu-network/sentinel/types"
	"github.com/stretchr/testify/require"
)

// prefixClient only accepts addresses starting with "bc1".
func prefixClient() *chains.MockChainClient {
	return &chains.MockChainClient{
		ChainName: "Bitcoin",
		ValidateAddressFunc: func(address string) bool {
			return strings.HasPrefix(address, "bc1")
		},
	}
}

func TestDecodeRecipient_Utf8(t *testing.T) {
	r, err := DecodeRecipient(prefixClient(), []byte("bc1qexample"))
	require.Nil(t, err)
	require.Equal(t, "bc1qexample", r.Address)
	require.Equal(t, FormatUtf8, r.Format)
	require.Equal(t, []byte("bc1qexample"), r.Bytes)
}

func TestDecodeRecipient_Base58(t *testing.T) {
	encoded := base58.Encode([]byte("bc1qwrapped"))

	r, err := DecodeRecipient(prefixClient(), []byte(encoded))
	require.Nil(t, err)
	require.Equal(t, "bc1qwrapped", r.Address)
	require.Equal(t, FormatBase58, r.Format)
}

func TestDecodeRecipient_Bytes(t *testing.T) {
	client := &chains.MockChainClient{
		ChainName: "Ethereum",
		ValidateAddressFunc: func(address string) bool {
			return address == "0x0102"
		},
	}

	// A client whose byte codec differs from its string form.
	r, err := DecodeRecipient(&hexClient{client}, []byte{1, 2})
	require.Nil(t, err)
	require.Equal(t, "0x0102", r.Address)
	require.Equal(t, FormatBytes, r.Format)
}

func TestDecodeRecipient_Malformed(t *testing.T) {
	_, err := DecodeRecipient(prefixClient(), []byte("0xdeadbeef\x00"))
	require.NotNil(t, err)
	require.True(t, types.IsMalformed(err))
}

type hexClient struct {
	*chains.MockChainClient
}

func (c *hexClient) AddressFromBytes(bz []byte) (string, error) {
	s := "0x"
	for _, b := range bz {
		s += string("0123456789abcdef"[b>>4]) + string("0123456789abcdef"[b&0xf])
	}
	return s, nil
}

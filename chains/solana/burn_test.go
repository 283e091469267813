package solana

import (
	"bytes"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func encodeBurn(t *testing.T, amount uint64, recipient []byte) []byte {
	burn := &BurnData{Amount: amount, RecipientLen: uint8(len(recipient))}
	copy(burn.Recipient[:], recipient)

	buf := new(bytes.Buffer)
	require.Nil(t, bin.NewBorshEncoder(buf).Encode(burn))
	return buf.Bytes()
}

func TestBurn_Decode(t *testing.T) {
	data := encodeBurn(t, 123_456, []byte("bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"))
	require.Len(t, data, 8+1+MaxRecipientLength)

	burn, err := DecodeBurnData(data)
	require.Nil(t, err)
	require.Equal(t, uint64(123_456), burn.Amount)
	require.Equal(t, []byte("bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"), burn.RecipientBytes())
}

func TestBurn_DecodeInvalid(t *testing.T) {
	data := encodeBurn(t, 1, []byte("x"))
	data[8] = MaxRecipientLength + 1
	_, err := DecodeBurnData(data)
	require.NotNil(t, err)

	_, err = DecodeBurnData([]byte{1, 2, 3})
	require.NotNil(t, err)
}

func TestBurn_AccountAddress(t *testing.T) {
	program := solana.TokenProgramID

	address, err := BurnAccountAddress(program, 258)
	require.Nil(t, err)

	expected, _, err := solana.FindProgramAddress([][]byte{{2, 1, 0, 0, 0, 0, 0, 0}}, program)
	require.Nil(t, err)
	require.Equal(t, expected, address)

	other, err := BurnAccountAddress(program, 259)
	require.Nil(t, err)
	require.NotEqual(t, address, other)
}

package solana

import (
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const MaxRecipientLength = 80

// BurnData is the borsh layout of a gateway burn account.
type BurnData struct {
	Amount       uint64
	RecipientLen uint8
	Recipient    [MaxRecipientLength]byte
}

func (b *BurnData) RecipientBytes() []byte {
	ret := make([]byte, b.RecipientLen)
	copy(ret, b.Recipient[:b.RecipientLen])
	return ret
}

// BurnAccountAddress derives the account that stores the burn with the given nonce. The seed is
// the nonce as 8 little endian bytes.
func BurnAccountAddress(program solana.PublicKey, nonce uint64) (solana.PublicKey, error) {
	seed := make([]byte, 8)
	binary.LittleEndian.PutUint64(seed, nonce)

	address, _, err := solana.FindProgramAddress([][]byte{seed}, program)
	return address, err
}

func DecodeBurnData(data []byte) (*BurnData, error) {
	burn := new(BurnData)
	if err := bin.NewBorshDecoder(data).Decode(burn); err != nil {
		return nil, err
	}

	if burn.RecipientLen > MaxRecipientLength {
		return nil, fmt.Errorf("recipient length %d is larger than %d", burn.RecipientLen, MaxRecipientLength)
	}

	return burn, nil
}

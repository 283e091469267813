package types

import (
	"fmt"
	"math/big"
	"time"
)

// Transfer is one burn or lock event observed on a source chain. It is created by a chain syncer
// and then mutated by the submitter and the burn verifier. Records are never deleted.
type Transfer struct {
	Id int64

	Asset     string
	FromChain string
	// ToChain is empty when the event does not name a destination. The asset's origin chain is
	// used in that case.
	ToChain string

	FromTxHash  string
	FromTxIndex string

	// 32 bytes.
	Nonce  []byte
	Amount *big.Int

	// Opaque encoding of the recipient. It can be an utf8 string, raw address bytes or a base58
	// string. It is decoded against the destination chain when needed.
	ToRecipient []byte
	ToPayload   []byte

	ToTxHash    string
	SigningHash string

	Done     bool
	Sentried bool
	Ignored  bool

	// Source block time. Zero when the source chain does not report it.
	BurnTime time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key returns the unique identity of the event on its source chain.
func (t *Transfer) Key() string {
	return fmt.Sprintf("%s_%s", t.FromTxHash, t.FromTxIndex)
}

// EventTime is the best known time of the burn.
func (t *Transfer) EventTime() time.Time {
	if !t.BurnTime.IsZero() {
		return t.BurnTime
	}

	return t.CreatedAt
}

func (t *Transfer) Pending() bool {
	return !t.Done && !t.Ignored
}

func (t *Transfer) String() string {
	return fmt.Sprintf("%s %s %s (%s)", t.FromChain, t.Asset, t.Key(), t.Amount)
}

func (t *Transfer) Clone() *Transfer {
	c := *t
	if t.Amount != nil {
		c.Amount = new(big.Int).Set(t.Amount)
	}
	c.Nonce = append([]byte(nil), t.Nonce...)
	c.ToRecipient = append([]byte(nil), t.ToRecipient...)
	if t.ToPayload != nil {
		c.ToPayload = append([]byte(nil), t.ToPayload...)
	}

	return &c
}

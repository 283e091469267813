package types

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrors_Classification(t *testing.T) {
	require.True(t, IsTransient(context.DeadlineExceeded))
	require.True(t, IsTransient(fmt.Errorf("sync: %w", NewChainNotFoundErr("Ethereum"))))
	require.True(t, IsTransient(NewNoHealthyClientErr("Ethereum")))
	require.True(t, IsTransient(errors.New("429: Rate limit exceeded")))
	require.False(t, IsTransient(errors.New("boom")))
	require.False(t, IsTransient(nil))

	require.True(t, IsRateLimit(NewRateLimitErr("lightnode", "slow down")))
	require.False(t, IsRateLimit(ErrTxNotFound))

	require.True(t, IsMalformed(NewMalformedRecipientErr("Bitcoin", []byte{1}, []string{"utf8"})))
	require.True(t, IsMalformed(fmt.Errorf("x: %w", NewDecodeEventErr("Ethereum", "0x1", errors.New("bad")))))
	require.False(t, IsMalformed(context.DeadlineExceeded))
}

func TestChainState_NonceStateMerge(t *testing.T) {
	state, err := ParseNonceState(`{"BTC":4,"ZEC":1}`)
	require.Nil(t, err)

	merged := state.Merge(NonceState{"BTC": 3, "ZEC": 2, "DOGE": 1})
	require.Equal(t, NonceState{"BTC": 4, "ZEC": 2, "DOGE": 1}, merged)
	require.Equal(t, `{"BTC":4,"DOGE":1,"ZEC":2}`, merged.String())

	empty, err := ParseNonceState("")
	require.Nil(t, err)
	require.Empty(t, empty)

	_, err = ParseNonceState("not json")
	require.NotNil(t, err)
}

func TestChainState_HeightState(t *testing.T) {
	h, err := ParseHeightState("")
	require.Nil(t, err)
	require.Equal(t, int64(-1), h)

	h, err = ParseHeightState(FormatHeightState(15_000_000))
	require.Nil(t, err)
	require.Equal(t, int64(15_000_000), h)

	_, err = ParseHeightState("abc")
	require.NotNil(t, err)
}

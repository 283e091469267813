package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ChainState is the persisted sync checkpoint of a chain. SyncedState is opaque to the store: a
// decimal block height for log based chains or a JSON nonce map for program state chains.
type ChainState struct {
	Chain       string
	SyncedState string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ParseHeightState parses a block height checkpoint. An empty state returns -1.
func ParseHeightState(state string) (int64, error) {
	if state == "" {
		return -1, nil
	}

	height, err := strconv.ParseInt(state, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid height state %q: %w", state, err)
	}

	return height, nil
}

func FormatHeightState(height int64) string {
	return strconv.FormatInt(height, 10)
}

// NonceState maps an asset to the last nonce seen for it.
type NonceState map[string]uint64

func ParseNonceState(state string) (NonceState, error) {
	ret := make(NonceState)
	if state == "" {
		return ret, nil
	}

	if err := json.Unmarshal([]byte(state), &ret); err != nil {
		return nil, fmt.Errorf("invalid nonce state %q: %w", state, err)
	}

	return ret, nil
}

func (s NonceState) String() string {
	bz, err := json.Marshal(s)
	if err != nil {
		// A map of string to uint64 always marshals.
		panic(err)
	}

	return string(bz)
}

// Merge returns a copy of s where every asset of other with a higher nonce wins. Nonces never go
// backward.
func (s NonceState) Merge(other NonceState) NonceState {
	ret := make(NonceState, len(s))
	for k, v := range s {
		ret[k] = v
	}
	for k, v := range other {
		if v > ret[k] {
			ret[k] = v
		}
	}

	return ret
}

package database

import (
	"math/big"
	"testing"
	"time"

	"github.com/sisu-network/sentinel/config"
	"github.com/sisu-network/sentinel/types"
	"github.com/stretchr/testify/require"
)

func getTestDb(t *testing.T) Database {
	cfg := config.Sentinel{
		DbSchema: "sentinel",
		InMemory: true,
	}
	dbInstance := NewDb(&cfg)
	err := dbInstance.Init()
	require.Nil(t, err)

	t.Cleanup(func() {
		dbInstance.Close()
	})

	return dbInstance
}

func newTestTransfer(hash string, index string) *types.Transfer {
	nonce := make([]byte, 32)
	nonce[31] = 7

	return &types.Transfer{
		Asset:       "BTC",
		FromChain:   "Ethereum",
		FromTxHash:  hash,
		FromTxIndex: index,
		Nonce:       nonce,
		Amount:      big.NewInt(1_000_000),
		ToRecipient: []byte("bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"),
		BurnTime:    time.UnixMilli(1_650_000_000_000),
	}
}

func TestDefaultDatabase_CommitSync(t *testing.T) {
	db := getTestDb(t)

	transfers := []*types.Transfer{newTestTransfer("0xaa", "0"), newTestTransfer("0xbb", "0")}
	transfers[1].ToPayload = []byte{1, 2, 3}
	transfers[1].ToChain = "Solana"

	inserted, err := db.CommitSync("Ethereum", "100", transfers)
	require.Nil(t, err)
	require.Len(t, inserted, 2)
	require.NotZero(t, inserted[0].Id)
	require.NotEqual(t, inserted[0].Id, inserted[1].Id)

	state, err := db.LoadChainState("Ethereum")
	require.Nil(t, err)
	require.Equal(t, "100", state.SyncedState)

	loaded, err := db.LoadTransfer("0xbb", "0")
	require.Nil(t, err)
	require.Equal(t, "Solana", loaded.ToChain)
	require.Equal(t, []byte{1, 2, 3}, loaded.ToPayload)
	require.Equal(t, transfers[1].Nonce, loaded.Nonce)
	require.Equal(t, transfers[1].ToRecipient, loaded.ToRecipient)
	require.Equal(t, "1000000", loaded.Amount.String())
	require.Equal(t, transfers[1].BurnTime.UnixMilli(), loaded.BurnTime.UnixMilli())

	loaded, err = db.LoadTransfer("0xaa", "0")
	require.Nil(t, err)
	require.Nil(t, loaded.ToPayload)
	require.Empty(t, loaded.ToChain)
}

func TestDefaultDatabase_CommitSyncTwiceNoDuplicates(t *testing.T) {
	db := getTestDb(t)

	_, err := db.CommitSync("Ethereum", "100", []*types.Transfer{newTestTransfer("0xaa", "0")})
	require.Nil(t, err)

	// Syncing the same window again.
	inserted, err := db.CommitSync("Ethereum", "100", []*types.Transfer{
		newTestTransfer("0xaa", "0"),
		newTestTransfer("0xaa", "1"),
	})
	require.Nil(t, err)
	require.Len(t, inserted, 1)
	require.Equal(t, "1", inserted[0].FromTxIndex)

	pending, err := db.LoadPendingTransfers(true)
	require.Nil(t, err)
	require.Len(t, pending, 2)
}

func TestDefaultDatabase_EnsureChain(t *testing.T) {
	db := getTestDb(t)

	state, err := db.LoadChainState("Solana")
	require.Nil(t, err)
	require.Nil(t, state)

	require.Nil(t, db.EnsureChain("Solana", `{"BTC":1}`))
	// Seeding again must not reset progress.
	_, err = db.CommitSync("Solana", `{"BTC":2}`, nil)
	require.Nil(t, err)
	require.Nil(t, db.EnsureChain("Solana", `{"BTC":1}`))

	state, err = db.LoadChainState("Solana")
	require.Nil(t, err)
	require.Equal(t, `{"BTC":2}`, state.SyncedState)
}

func TestDefaultDatabase_PendingAndUpdate(t *testing.T) {
	db := getTestDb(t)

	_, err := db.CommitSync("Ethereum", "100", []*types.Transfer{
		newTestTransfer("0x01", "0"),
		newTestTransfer("0x02", "0"),
		newTestTransfer("0x03", "0"),
	})
	require.Nil(t, err)

	t1, err := db.LoadTransfer("0x01", "0")
	require.Nil(t, err)
	t1.Done = true
	t1.ToTxHash = "btc-tx-1"
	t1.SigningHash = "signing-hash"
	require.Nil(t, db.UpdateTransfer(t1))

	t2, err := db.LoadTransfer("0x02", "0")
	require.Nil(t, err)
	t2.Sentried = true
	require.Nil(t, db.UpdateTransfer(t2))

	pending, err := db.LoadPendingTransfers(false)
	require.Nil(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "0x03", pending[0].FromTxHash)

	pending, err = db.LoadPendingTransfers(true)
	require.Nil(t, err)
	require.Len(t, pending, 2)

	count, err := db.CountPending()
	require.Nil(t, err)
	require.Equal(t, int64(2), count)

	loaded, err := db.LoadTransfer("0x01", "0")
	require.Nil(t, err)
	require.True(t, loaded.Done)
	require.Equal(t, "btc-tx-1", loaded.ToTxHash)
	require.Equal(t, "signing-hash", loaded.SigningHash)

	require.NotNil(t, db.UpdateTransfer(newTestTransfer("0xmissing", "0")))
}

func TestDefaultDatabase_IsClaimed(t *testing.T) {
	db := getTestDb(t)

	_, err := db.CommitSync("Ethereum", "100", []*types.Transfer{
		newTestTransfer("0x01", "0"),
		newTestTransfer("0x02", "0"),
	})
	require.Nil(t, err)

	t1, err := db.LoadTransfer("0x01", "0")
	require.Nil(t, err)
	t2, err := db.LoadTransfer("0x02", "0")
	require.Nil(t, err)

	claimed, err := db.IsClaimed("utxo-1", t2.Id)
	require.Nil(t, err)
	require.False(t, claimed)

	t1.ToTxHash = "utxo-1"
	require.Nil(t, db.UpdateTransfer(t1))

	claimed, err = db.IsClaimed("utxo-1", t2.Id)
	require.Nil(t, err)
	require.True(t, claimed)

	// A transfer does not conflict with itself.
	claimed, err = db.IsClaimed("utxo-1", t1.Id)
	require.Nil(t, err)
	require.False(t, claimed)
}

func TestDefaultDatabase_ClaimTransfer(t *testing.T) {
	db := getTestDb(t)

	_, err := db.CommitSync("Ethereum", "100", []*types.Transfer{
		newTestTransfer("0x01", "0"),
		newTestTransfer("0x02", "0"),
	})
	require.Nil(t, err)

	t1, err := db.LoadTransfer("0x01", "0")
	require.Nil(t, err)
	t2, err := db.LoadTransfer("0x02", "0")
	require.Nil(t, err)

	t1.Done = true
	t1.ToTxHash = "utxo-1"
	ok, err := db.ClaimTransfer(t1)
	require.Nil(t, err)
	require.True(t, ok)

	// Claiming the same utxo again for the same transfer is allowed.
	ok, err = db.ClaimTransfer(t1)
	require.Nil(t, err)
	require.True(t, ok)

	t2.Done = true
	t2.ToTxHash = "utxo-1"
	ok, err = db.ClaimTransfer(t2)
	require.Nil(t, err)
	require.False(t, ok)

	loaded, err := db.LoadTransfer("0x02", "0")
	require.Nil(t, err)
	require.False(t, loaded.Done)
	require.Empty(t, loaded.ToTxHash)

	// Releases without a hash are never in conflict.
	t2.ToTxHash = ""
	ok, err = db.ClaimTransfer(t2)
	require.Nil(t, err)
	require.True(t, ok)

	missing := newTestTransfer("0xmissing", "0")
	missing.ToTxHash = "utxo-2"
	_, err = db.ClaimTransfer(missing)
	require.NotNil(t, err)
}

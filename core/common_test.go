package core

import (
	"math/big"
	"strings"
	"time"

	"github.com/sisu-network/sentinel/alert"
	"github.com/sisu-network/sentinel/chains"
	"github.com/sisu-network/sentinel/client"
	"github.com/sisu-network/sentinel/config"
	"github.com/sisu-network/sentinel/database"
	"github.com/sisu-network/sentinel/types"
)

const btcRecipient = "miMi2VET41YV1j6SDNTeZoPBbmH8B4nEx6"

var (
	testNow    = time.Date(2022, 6, 1, 12, 0, 0, 0, time.UTC)
	testTxHash = strings.Repeat("ab", 32)
)

func testConfig() *config.Sentinel {
	return &config.Sentinel{
		TickInterval:      config.Duration{Duration: time.Minute},
		SyncTimeout:       config.Duration{Duration: time.Second},
		SubmitTimeout:     config.Duration{Duration: time.Second},
		SubmitConcurrency: 2,
		RateLimitPause:    config.Duration{Duration: 20 * time.Millisecond},
		EscalationDelay:   config.Duration{Duration: 60 * time.Minute},
		Chains: map[string]config.Chain{
			"ethereum": {Chain: "Ethereum", StartState: "100"},
			"bitcoin":  {Chain: "Bitcoin"},
		},
	}
}

func testRegistry(syncer chains.Syncer) *chains.Registry {
	registry := chains.NewRegistry()
	registry.Add(&chains.Chain{
		Client: &chains.MockChainClient{
			ChainName:   "Ethereum",
			ChainFamily: types.FamilyEvm,
			Decimals:    map[string]int{"BTC": 8},
		},
		Syncer: syncer,
	})
	registry.Add(&chains.Chain{
		Client: &chains.MockChainClient{
			ChainName:   "Bitcoin",
			ChainFamily: types.FamilyUtxo,
			Natives:     []string{"BTC"},
			Decimals:    map[string]int{"BTC": 8},
			ValidateAddressFunc: func(address string) bool {
				return address == btcRecipient
			},
		},
		Explorer: &chains.MockExplorer{},
	})

	return registry
}

func testTransfer() *types.Transfer {
	return &types.Transfer{
		Id:          1,
		Asset:       "BTC",
		FromChain:   "Ethereum",
		FromTxHash:  testTxHash,
		FromTxIndex: "3",
		Nonce:       make([]byte, 32),
		Amount:      big.NewInt(100000),
		ToRecipient: []byte(btcRecipient),
		CreatedAt:   testNow.Add(-time.Minute),
	}
}

func testSubmitter(signer client.SigningClient, notifier alert.Notifier, db database.Database) *Submitter {
	s := NewSubmitter(testConfig(), testRegistry(nil), db, signer, notifier)
	s.now = func() time.Time { return testNow }

	return s
}

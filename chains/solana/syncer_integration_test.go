package solana

import (
	"context"
	"testing"
	"time"

	"github.com/sisu-network/lib/log"
	"github.com/sisu-network/sentinel/config"
	"github.com/stretchr/testify/require"
)

// Sanity testing
func TestIntegration_SyncMainnet(t *testing.T) {
	t.Skip()

	cfg := config.Chain{
		Chain:            "Solana",
		Rpcs:             []string{"https://api.mainnet-beta.solana.com"},
		Gateways:         map[string]string{"BTC": "FsEACSS3nKamRKdJBaBDpNtDXWrHTAsByDVQxYaXE3s7"},
		ProbeConcurrency: 3,
		ProbeTimeout:     config.Duration{Duration: 10 * time.Second},
	}

	syncer, err := NewSyncer(cfg, NewSolanaClient(cfg.Chain, cfg.Rpcs))
	require.Nil(t, err)

	state := ""
	for i := 0; i < 3; i++ {
		result, err := syncer.Sync(context.Background(), state)
		require.Nil(t, err)
		for _, transfer := range result.Transfers {
			log.Verbose("Transfer: ", transfer)
		}
		state = result.NewState
	}
	log.Verbose("State = ", state)
}

package solana

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sisu-network/lib/log"
	"github.com/sisu-network/sentinel/chains"
	"github.com/sisu-network/sentinel/config"
	"github.com/sisu-network/sentinel/metrics"
	"github.com/sisu-network/sentinel/types"
	"github.com/sisu-network/sentinel/utils"
)

type gateway struct {
	asset   string
	program solana.PublicKey
}

// Syncer probes the burn account of the next nonce of every asset gateway. The checkpoint is a
// json map of asset to last seen nonce.
type Syncer struct {
	cfg      config.Chain
	client   SolanaClient
	gateways []*gateway
}

func NewSyncer(cfg config.Chain, client SolanaClient) (*Syncer, error) {
	gateways := make([]*gateway, 0, len(cfg.Gateways))
	for symbol, address := range cfg.Gateways {
		program, err := solana.PublicKeyFromBase58(address)
		if err != nil {
			return nil, fmt.Errorf("invalid gateway program %s for %s: %w", address, symbol, err)
		}
		gateways = append(gateways, &gateway{asset: strings.TrimPrefix(symbol, "ren"), program: program})
	}
	if len(gateways) == 0 {
		return nil, fmt.Errorf("chain %s has no gateway", cfg.Chain)
	}

	sort.Slice(gateways, func(i, j int) bool {
		return gateways[i].asset < gateways[j].asset
	})

	return &Syncer{cfg: cfg, client: client, gateways: gateways}, nil
}

func (s *Syncer) Sync(ctx context.Context, syncedState string) (*chains.SyncResult, error) {
	state, err := types.ParseNonceState(syncedState)
	if err != nil {
		return nil, err
	}

	found := make([]*types.Transfer, len(s.gateways))
	failed := make([]error, len(s.gateways))
	utils.ForEachLimited(ctx, s.cfg.ProbeConcurrency, s.cfg.ProbeTimeout.Duration, s.gateways,
		func(ctx context.Context, i int, gw *gateway) {
			nonce := state[gw.asset] + 1

			transfer, err := s.probe(ctx, gw, nonce)
			if err != nil {
				log.Warnf("[%s] Failed to probe %s burn with nonce %d, err = %v", s.cfg.Chain, gw.asset, nonce, err)
				if types.IsMalformed(err) {
					// The account will never decode, skip the nonce instead of stalling the asset.
					metrics.DecodeFailures.WithLabelValues(s.cfg.Chain).Inc()
					failed[i] = fmt.Errorf("%s nonce %d: %w", gw.asset, nonce, err)
				}
				return
			}

			if transfer != nil {
				log.Infof("[%s] New %s transaction with nonce %d", s.cfg.Chain, gw.asset, nonce)
			}
			found[i] = transfer
		})

	transfers := make([]*types.Transfer, 0)
	var failures []error
	advanced := make(types.NonceState)
	for i, gw := range s.gateways {
		switch {
		case found[i] != nil:
			transfers = append(transfers, found[i])
		case failed[i] != nil:
			failures = append(failures, failed[i])
		default:
			continue
		}
		advanced[gw.asset] = state[gw.asset] + 1
	}

	return &chains.SyncResult{
		Transfers: transfers,
		NewState:  state.Merge(advanced).String(),
		Failures:  failures,
	}, nil
}

// probe returns the burn with the given nonce or nil when it does not exist yet.
func (s *Syncer) probe(ctx context.Context, gw *gateway, nonce uint64) (*types.Transfer, error) {
	account, err := BurnAccountAddress(gw.program, nonce)
	if err != nil {
		return nil, err
	}

	data, err := s.client.GetAccountData(ctx, account.String())
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	burn, err := DecodeBurnData(data)
	if err != nil {
		return nil, types.NewDecodeEventErr(s.cfg.Chain, account.String(), err)
	}

	sigs, err := s.client.GetSignaturesForAddress(ctx, account.String())
	if err != nil {
		return nil, err
	}
	if len(sigs) == 0 {
		return nil, fmt.Errorf("burn account %s has no signature yet", account)
	}

	// Signatures are sorted newest first, the burn is the one that created the account.
	oldest := sigs[len(sigs)-1]

	transfer := &types.Transfer{
		Asset:       gw.asset,
		FromChain:   s.cfg.Chain,
		FromTxHash:  oldest.Signature,
		FromTxIndex: "0",
		Nonce:       utils.ToNBytes(new(big.Int).SetUint64(nonce), 32),
		Amount:      new(big.Int).SetUint64(burn.Amount),
		ToRecipient: burn.RecipientBytes(),
	}
	if oldest.BlockTime != nil {
		transfer.BurnTime = time.Unix(*oldest.BlockTime, 0).UTC()
	}

	return transfer, nil
}

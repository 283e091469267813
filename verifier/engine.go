package verifier

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/sisu-network/lib/log"
	"github.com/sisu-network/sentinel/bridge"
	"github.com/sisu-network/sentinel/chains"
	"github.com/sisu-network/sentinel/client"
	"github.com/sisu-network/sentinel/config"
	"github.com/sisu-network/sentinel/database"
	"github.com/sisu-network/sentinel/types"
	"github.com/sisu-network/sentinel/utils"
)

// Minimum output accepted by bitcoin like chains.
const dustOutput = 547

type Outcome string

const (
	Confirmed Outcome = "confirmed"
	Pending   Outcome = "pending"
	Ignored   Outcome = "ignored"
)

// Result is the status transition of a transfer. Engine never writes it back nor alerts.
type Result struct {
	Outcome  Outcome
	ToTxHash string
	Escalate bool
	Reason   string
}

// Engine checks that a release to a utxo chain has been paid by looking at the recipient's address
// history. These chains carry no proof that links a payment to a burn, so payments are matched by
// amount, time and fee.
type Engine struct {
	registry *chains.Registry
	db       database.Database
	signer   client.SigningClient

	dustThreshold   *big.Int
	escalationDelay time.Duration
	regimes         map[string]feeRegimes

	now func() time.Time
}

func NewEngine(cfg *config.Sentinel, registry *chains.Registry, db database.Database, signer client.SigningClient) *Engine {
	regimes := make(map[string]feeRegimes)
	for name, chain := range cfg.Chains {
		if chain.Chain != "" {
			name = chain.Chain
		}
		regimes[name] = newFeeRegimes(chain.FeeRegimes)
	}

	return &Engine{
		registry:        registry,
		db:              db,
		signer:          signer,
		dustThreshold:   big.NewInt(cfg.DustThreshold),
		escalationDelay: cfg.VerifyEscalationDelay.Duration,
		regimes:         regimes,
		now:             time.Now,
	}
}

// Verify decides whether the release of transfer has been received.
func (e *Engine) Verify(ctx context.Context, transfer *types.Transfer) (*Result, error) {
	to, err := Destination(e.registry, transfer)
	if err != nil {
		return nil, err
	}
	if to.Explorer == nil {
		return nil, fmt.Errorf("chain %s has no explorer", to.Name())
	}

	burnTime := transfer.EventTime()
	age := e.now().Sub(burnTime)
	amount := transfer.Amount
	if amount == nil {
		amount = big.NewInt(0)
	}

	recipient, decodeErr := bridge.DecodeRecipient(to.Client, transfer.ToRecipient)

	if amount.Cmp(e.dustThreshold) <= 0 {
		return &Result{Outcome: Confirmed, Reason: fmt.Sprintf("amount %s is below dust threshold", amount)}, nil
	}

	if decodeErr != nil {
		return &Result{
			Outcome:  Ignored,
			Escalate: !transfer.Sentried,
			Reason:   fmt.Sprintf("%s (%s) - Invalid burn recipient: %v", e.describe(to, transfer), formatAge(age), decodeErr),
		}, nil
	}

	releaseFee, err := e.signer.ReleaseFee(ctx, transfer.Asset)
	if err != nil {
		return nil, fmt.Errorf("cannot get release fee of %s: %w", transfer.Asset, err)
	}
	minimum := new(big.Int).Add(releaseFee, big.NewInt(dustOutput))
	if amount.Cmp(minimum) < 0 {
		return &Result{
			Outcome:  Ignored,
			Escalate: !transfer.Sentried,
			Reason:   fmt.Sprintf("%s - Burn of %s is less than minimum %s", e.describe(to, transfer), amount, minimum),
		}, nil
	}

	candidates, err := to.Explorer.FetchIncomingPayments(ctx, recipient.Address, burnTime)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Time.After(candidates[j].Time)
	})

	regime := e.regimes[to.Name()].at(burnTime)
	decimals := e.decimals(to, transfer.Asset)
	free := make([]string, 0)
	taken := make([]string, 0)

	for _, candidate := range candidates {
		if candidate.BalanceChange == nil || candidate.BalanceChange.Sign() < 0 {
			continue
		}
		if candidate.Time.Before(burnTime) {
			continue
		}
		if candidate.Fee != nil && candidate.Fee.Sign() < 0 {
			continue
		}

		fee := new(big.Int).Sub(amount, candidate.BalanceChange)
		if fee.Sign() < 0 {
			continue
		}

		claimed, err := e.db.IsClaimed(candidate.TxHash, transfer.Id)
		if err != nil {
			return nil, err
		}

		log.Verbosef("[%s] Checking %s for %s: paid %s, fee %s, claimed %v", to.Name(),
			utils.ShortHash(candidate.TxHash), transfer.Key(), candidate.BalanceChange, fee, claimed)

		if !claimed && matchesFee(regime, fee, candidate) {
			return &Result{
				Outcome:  Confirmed,
				ToTxHash: candidate.TxHash,
				Reason:   fmt.Sprintf("found %s with fee %s", candidate.TxHash, fee),
			}, nil
		}

		entry := fmt.Sprintf("%s (%s)", utils.FormatAmount(candidate.BalanceChange, decimals),
			formatAge(candidate.Time.Sub(burnTime)))
		if claimed {
			taken = append(taken, entry)
		} else {
			free = append(free, entry)
		}
	}

	reason := fmt.Sprintf("%s (%s) - %s %s to %s - burn not found", e.describe(to, transfer), formatAge(age),
		utils.FormatAmount(amount, decimals), transfer.Asset, recipient.Address)
	if len(free) > 0 {
		reason += " - Other utxos: " + strings.Join(free, ", ")
	}
	if len(taken) > 0 {
		reason += " - Taken: " + strings.Join(taken, ", ")
	}

	return &Result{
		Outcome:  Pending,
		Escalate: age > e.escalationDelay && !transfer.Sentried,
		Reason:   reason,
	}, nil
}

// Destination returns the chain a transfer releases to: its ToChain or else the asset's origin.
func Destination(registry *chains.Registry, transfer *types.Transfer) (*chains.Chain, error) {
	if transfer.ToChain != "" {
		return registry.Get(transfer.ToChain)
	}

	return registry.Origin(transfer.Asset)
}

func (e *Engine) describe(to *chains.Chain, transfer *types.Transfer) string {
	return fmt.Sprintf("[%s] %s %s", to.Name(), transfer.Asset, transfer.Key())
}

func (e *Engine) decimals(to *chains.Chain, asset string) int {
	decimals, err := to.Client.AssetDecimals(asset)
	if err != nil {
		return 0
	}

	return decimals
}

func formatAge(d time.Duration) string {
	return d.Round(time.Minute).String()
}

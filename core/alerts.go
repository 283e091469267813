package core

import (
	"fmt"
	"strings"

	"github.com/sisu-network/sentinel/alert"
	"github.com/sisu-network/sentinel/chains"
	"github.com/sisu-network/sentinel/types"
	"github.com/sisu-network/sentinel/utils"
)

// newAlert describes transfer for the operators. from and to may be nil when they could not be
// resolved.
func newAlert(status alert.Status, message string, transfer *types.Transfer, from, to *chains.Chain,
	signingLink string) *alert.Alert {
	a := &alert.Alert{
		Status:      status,
		Message:     message,
		Asset:       transfer.Asset,
		Amount:      utils.FormatAmountFixed(transfer.Amount, assetDecimals(from, transfer.Asset), 4),
		FromChain:   transfer.FromChain,
		FromTxHash:  transfer.FromTxHash,
		SigningHash: transfer.SigningHash,
		ToChain:     transfer.ToChain,
		ToTxHash:    transfer.ToTxHash,
	}

	if from != nil {
		a.FromLink = from.Client.TxExplorerLink(transfer.FromTxHash)
	}
	if to != nil {
		a.ToChain = to.Name()
		if transfer.ToTxHash != "" {
			a.ToLink = to.Client.TxExplorerLink(transfer.ToTxHash)
		}
	}
	if transfer.SigningHash != "" && strings.Contains(signingLink, "%s") {
		a.SigningLink = fmt.Sprintf(signingLink, transfer.SigningHash)
	}

	return a
}

func assetDecimals(chain *chains.Chain, asset string) int {
	if chain == nil {
		return 0
	}

	decimals, err := chain.Client.AssetDecimals(asset)
	if err != nil {
		return 0
	}

	return decimals
}

// escalationMessage is the one line summary of a stuck transfer.
func escalationMessage(transfer *types.Transfer, from *chains.Chain) string {
	return fmt.Sprintf("[sentinel][%s] %s %s %s", transfer.FromChain, strings.TrimSpace(transfer.FromTxHash),
		utils.FormatAmount(transfer.Amount, assetDecimals(from, transfer.Asset)), transfer.Asset)
}

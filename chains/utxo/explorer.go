package utxo

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sisu-network/sentinel/chains"
	"github.com/sisu-network/sentinel/config"
	"github.com/sisu-network/sentinel/network"
	"github.com/sisu-network/sentinel/types"
)

// NewExplorer returns the address history provider configured for a utxo chain.
func NewExplorer(chain string, cfg config.Explorer, httpClient network.Http) (chains.Explorer, error) {
	switch cfg.Kind {
	case config.ExplorerBlockchair:
		return NewBlockchair(chain, cfg, httpClient), nil
	case config.ExplorerInsight:
		return NewInsight(chain, cfg, httpClient), nil
	}

	return nil, fmt.Errorf("unknown explorer %q for chain %s", cfg.Kind, chain)
}

// wrapHttpErr turns throttling responses into rate limit errors.
func wrapHttpErr(source string, err error) error {
	var statusErr *network.StatusErr
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		// Blockchair answers 402 and 430 when the daily quota is used.
		case http.StatusTooManyRequests, http.StatusPaymentRequired, 430:
			return types.NewRateLimitErr(source, statusErr.Error())
		}
	}

	return err
}

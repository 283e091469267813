package verifier

import (
	"math/big"
	"sort"
	"time"

	"github.com/sisu-network/sentinel/chains"
	"github.com/sisu-network/sentinel/config"
)

// DefaultFeeRegime is used for chains without configured regimes. The fixed fees are the release
// fees that were charged before fees depended on the transaction shape.
var DefaultFeeRegime = config.FeeRegime{
	Fixed:        []int64{70000, 35000, 5000, 16000, 30000},
	Proportional: true,
}

// feeRegimes is the ordered list of fee regimes of one chain.
type feeRegimes []config.FeeRegime

func newFeeRegimes(regimes []config.FeeRegime) feeRegimes {
	ret := make(feeRegimes, len(regimes))
	copy(ret, regimes)
	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].Since.Before(ret[j].Since)
	})

	return ret
}

// at returns the latest regime that started at or before t.
func (r feeRegimes) at(t time.Time) config.FeeRegime {
	if len(r) == 0 {
		return DefaultFeeRegime
	}

	ret := r[0]
	for _, regime := range r {
		if regime.Since.After(t) {
			break
		}
		ret = regime
	}

	return ret
}

// matchesFee reports whether the difference between the burnt amount and the payment is a release
// fee of the regime.
func matchesFee(regime config.FeeRegime, fee *big.Int, candidate *chains.Candidate) bool {
	if regime.Proportional && candidate.NumberOfOutputs > 0 {
		if candidate.NumberOfOutputs < 2 || candidate.Fee == nil {
			return false
		}

		inputs := candidate.NumberOfInputs
		if inputs == 0 {
			inputs = 1
		}
		divisor := int64(candidate.NumberOfOutputs - 1 + inputs - 1)
		if divisor < 1 {
			divisor = 1
		}

		share, rem := new(big.Int).QuoRem(candidate.Fee, big.NewInt(divisor), new(big.Int))
		return rem.Sign() == 0 && share.Cmp(fee) == 0
	}

	for _, fixed := range regime.Fixed {
		if fee.Cmp(big.NewInt(fixed)) == 0 {
			return true
		}
	}

	return false
}

package sweep

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"
)

const (
	defaultTipGwei  = 2
	defaultBaseGwei = 1
)

// FeeReader is the slice of chain RPC the estimator needs. Nil values
// mean the node does not report the figure; errors mean the query itself
// failed.
type FeeReader interface {
	// SuggestFees returns the node's priority-fee and cap-fee suggestions.
	SuggestFees(ctx context.Context) (tip, cap *big.Int, err error)
	// LatestBaseFee returns the latest block's base fee, nil pre-1559.
	LatestBaseFee(ctx context.Context) (*big.Int, error)
}

// Estimator produces the initial fee quote for a send.
type Estimator struct {
	reader FeeReader
	log    *zap.Logger
}

func NewEstimator(reader FeeReader, log *zap.Logger) *Estimator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Estimator{reader: reader, log: log}
}

// Estimate reads current fee data and scales both components by the
// decimal multiplier. Missing suggestions fall back to 2 gwei tip and
// baseFee+tip cap (base defaulting to 1 gwei). Query failures surface as
// ErrEstimationUnavailable; retrying is the caller's call.
func (e *Estimator) Estimate(ctx context.Context, multiplier string) (FeeQuote, error) {
	tip, cap, err := e.reader.SuggestFees(ctx)
	if err != nil {
		return FeeQuote{}, fmt.Errorf("%w: %v", ErrEstimationUnavailable, err)
	}
	if tip == nil {
		tip = gweiToWei(defaultTipGwei)
	}
	if cap == nil {
		base, err := e.reader.LatestBaseFee(ctx)
		if err != nil {
			return FeeQuote{}, fmt.Errorf("%w: %v", ErrEstimationUnavailable, err)
		}
		if base == nil {
			base = gweiToWei(defaultBaseGwei)
		}
		cap = new(big.Int).Add(base, tip)
	}

	scaledTip, err := ScaleDecimal(tip, multiplier)
	if err != nil {
		return FeeQuote{}, err
	}
	scaledCap, err := ScaleDecimal(cap, multiplier)
	if err != nil {
		return FeeQuote{}, err
	}
	q := FeeQuote{PriorityFee: scaledTip, CapFee: scaledCap}
	if err := q.Validate(); err != nil {
		return FeeQuote{}, err
	}
	e.log.Debug("fee quote",
		zap.String("tip_gwei", formatGwei(q.PriorityFee)),
		zap.String("cap_gwei", formatGwei(q.CapFee)),
		zap.String("multiplier", multiplier))
	return q, nil
}

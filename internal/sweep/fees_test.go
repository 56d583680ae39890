package sweep

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubFeeReader struct {
	tip, cap *big.Int
	base     *big.Int
	err      error
	baseErr  error
}

func (s *stubFeeReader) SuggestFees(context.Context) (*big.Int, *big.Int, error) {
	return s.tip, s.cap, s.err
}

func (s *stubFeeReader) LatestBaseFee(context.Context) (*big.Int, error) {
	return s.base, s.baseErr
}

func TestEstimator(t *testing.T) {
	ctx := context.Background()

	t.Run("scales node suggestions", func(t *testing.T) {
		e := NewEstimator(&stubFeeReader{
			tip: gweiToWei(2),
			cap: gweiToWei(10),
		}, zap.NewNop())
		q, err := e.Estimate(ctx, "1.25")
		require.NoError(t, err)
		assert.Equal(t, "2500000000", q.PriorityFee.String())
		assert.Equal(t, "12500000000", q.CapFee.String())
	})

	t.Run("absent tip defaults to 2 gwei", func(t *testing.T) {
		e := NewEstimator(&stubFeeReader{cap: gweiToWei(10)}, nil)
		q, err := e.Estimate(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, gweiToWei(2).String(), q.PriorityFee.String())
	})

	t.Run("absent cap derives from base fee plus tip", func(t *testing.T) {
		e := NewEstimator(&stubFeeReader{
			tip:  gweiToWei(3),
			base: gweiToWei(20),
		}, nil)
		q, err := e.Estimate(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, gweiToWei(23).String(), q.CapFee.String())
	})

	t.Run("absent cap and base fee falls back to 1 gwei base", func(t *testing.T) {
		e := NewEstimator(&stubFeeReader{tip: gweiToWei(2)}, nil)
		q, err := e.Estimate(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, gweiToWei(3).String(), q.CapFee.String())
	})

	t.Run("query failure surfaces as estimation unavailable", func(t *testing.T) {
		e := NewEstimator(&stubFeeReader{err: fmt.Errorf("connection refused")}, nil)
		_, err := e.Estimate(ctx, "1")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEstimationUnavailable)
	})

	t.Run("base fee query failure surfaces as estimation unavailable", func(t *testing.T) {
		e := NewEstimator(&stubFeeReader{
			tip:     gweiToWei(2),
			baseErr: fmt.Errorf("timeout"),
		}, nil)
		_, err := e.Estimate(ctx, "1")
		assert.ErrorIs(t, err, ErrEstimationUnavailable)
	})

	t.Run("quote keeps cap at or above tip", func(t *testing.T) {
		e := NewEstimator(&stubFeeReader{
			tip: gweiToWei(5),
			cap: gweiToWei(50),
		}, nil)
		q, err := e.Estimate(ctx, "2.50")
		require.NoError(t, err)
		assert.True(t, q.CapFee.Cmp(q.PriorityFee) >= 0)
		require.NoError(t, q.Validate())
	})
}

func TestFeeQuoteValidate(t *testing.T) {
	assert.Error(t, FeeQuote{}.Validate())
	assert.Error(t, FeeQuote{PriorityFee: gweiToWei(3), CapFee: gweiToWei(2)}.Validate())
	assert.NoError(t, FeeQuote{PriorityFee: gweiToWei(2), CapFee: gweiToWei(2)}.Validate())
}

package sweep

import (
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmtrr0/evmsweep/internal/activity"
)

type stubBalances struct {
	seq   []*big.Int // consumed in order; last value repeats
	err   error
	polls int
}

func (s *stubBalances) BalanceAt(context.Context, common.Address) (*big.Int, error) {
	if s.err != nil {
		return nil, s.err
	}
	i := s.polls
	s.polls++
	if i >= len(s.seq) {
		i = len(s.seq) - 1
	}
	return new(big.Int).Set(s.seq[i]), nil
}

func newTestDrain(balances *stubBalances, capGwei int64) *DrainLoop {
	return &DrainLoop{
		Balances: balances,
		Estimator: NewEstimator(&stubFeeReader{
			tip: gweiToWei(1),
			cap: gweiToWei(capGwei),
		}, nil),
		FeeMultiplier: "1",
		PollInterval:  time.Millisecond,
	}
}

func TestDrainLoop(t *testing.T) {
	addr := common.HexToAddress("0xaa")

	t.Run("resolves balance minus doubled gas reserve", func(t *testing.T) {
		// 1 ETH balance, 10 gwei cap: reserve = 21000 * 10 gwei * 2.
		bal, _ := new(big.Int).SetString("1000000000000000000", 10)
		d := newTestDrain(&stubBalances{seq: []*big.Int{bal}}, 10)

		got, err := d.Resolve(context.Background(), addr)
		require.NoError(t, err)
		assert.Equal(t, "999999580000000000", got.String())
	})

	t.Run("waits through zero balance", func(t *testing.T) {
		bal := new(big.Int).Mul(gweiToWei(10), big.NewInt(100_000))
		balances := &stubBalances{seq: []*big.Int{big.NewInt(0), big.NewInt(0), bal}}
		d := newTestDrain(balances, 10)

		got, err := d.Resolve(context.Background(), addr)
		require.NoError(t, err)
		assert.Equal(t, 3, balances.polls)
		reserve := new(big.Int).Mul(gweiToWei(10), big.NewInt(21000*2))
		assert.Equal(t, new(big.Int).Sub(bal, reserve).String(), got.String())
	})

	t.Run("re-polls while balance does not exceed the reserve", func(t *testing.T) {
		reserve := new(big.Int).Mul(gweiToWei(10), big.NewInt(21000*2))
		over := new(big.Int).Add(reserve, big.NewInt(1))
		// Exactly the reserve is still insufficient; strict excess resolves.
		balances := &stubBalances{seq: []*big.Int{reserve, reserve, over}}
		d := newTestDrain(balances, 10)

		got, err := d.Resolve(context.Background(), addr)
		require.NoError(t, err)
		assert.Equal(t, 3, balances.polls)
		assert.Equal(t, "1", got.String())
	})

	t.Run("cancellation stops the unbounded wait", func(t *testing.T) {
		d := newTestDrain(&stubBalances{seq: []*big.Int{big.NewInt(0)}}, 10)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := d.Resolve(ctx, addr)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("balance query failure propagates", func(t *testing.T) {
		d := newTestDrain(&stubBalances{err: fmt.Errorf("rpc down")}, 10)
		_, err := d.Resolve(context.Background(), addr)
		assert.Error(t, err)
	})

	t.Run("estimation failure propagates", func(t *testing.T) {
		d := newTestDrain(&stubBalances{seq: []*big.Int{big.NewInt(1)}}, 10)
		d.Estimator = NewEstimator(&stubFeeReader{err: fmt.Errorf("boom")}, nil)
		_, err := d.Resolve(context.Background(), addr)
		assert.ErrorIs(t, err, ErrEstimationUnavailable)
	})

	t.Run("records the resolved amount", func(t *testing.T) {
		bal, _ := new(big.Int).SetString("1000000000000000000", 10)
		rec := &memRecorder{}
		d := newTestDrain(&stubBalances{seq: []*big.Int{bal}}, 10)
		d.Recorder = rec

		_, err := d.Resolve(context.Background(), addr)
		require.NoError(t, err)
		require.Len(t, rec.kinds(activity.KindDrainResolved), 1)
		assert.Equal(t, "999999580000000000", rec.kinds(activity.KindDrainResolved)[0].ValueWei)
	})
}

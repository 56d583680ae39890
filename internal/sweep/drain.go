package sweep

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/dmtrr0/evmsweep/internal/activity"
)

const (
	// NativeTransferGas is the intrinsic cost of a plain value transfer.
	NativeTransferGas = 21000
	// DefaultMarginFactor doubles the reserved gas cost so the reserve
	// absorbs a few escalation steps.
	DefaultMarginFactor = 2

	drainPollInterval = 3 * time.Second
)

// BalanceReader supplies the account's spendable native balance.
type BalanceReader interface {
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
}

// DrainLoop resolves the amount for a "send everything" request. It
// waits, unbounded, for the account to hold more than the reserved gas
// cost; the only exits are a resolvable balance or ctx cancellation.
// Waiting on a zero balance is intentional: the loop exists to catch
// incoming deposits, not just to avoid a race.
type DrainLoop struct {
	Balances  BalanceReader
	Estimator *Estimator
	Recorder  activity.Recorder
	Log       *zap.Logger

	FeeMultiplier string
	GasLimit      uint64 // 0 takes NativeTransferGas
	MarginFactor  int64  // 0 takes DefaultMarginFactor

	PollInterval time.Duration // overridable in tests
}

func (d *DrainLoop) gasLimit() uint64 {
	if d.GasLimit > 0 {
		return d.GasLimit
	}
	return NativeTransferGas
}

func (d *DrainLoop) margin() int64 {
	if d.MarginFactor > 0 {
		return d.MarginFactor
	}
	return DefaultMarginFactor
}

func (d *DrainLoop) interval() time.Duration {
	if d.PollInterval > 0 {
		return d.PollInterval
	}
	return drainPollInterval
}

// Resolve polls balance and current gas cost until the balance exceeds
// gasLimit*capFee*margin, then returns balance minus that reserve. The
// reserve is not re-checked during the send's own escalation loop, so a
// long bump sequence can still outspend it under adversarial fee spikes.
func (d *DrainLoop) Resolve(ctx context.Context, account common.Address) (*big.Int, error) {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	mul := d.FeeMultiplier
	if mul == "" {
		mul = "1"
	}

	for {
		bal, err := d.Balances.BalanceAt(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("balance query: %w", err)
		}
		if bal.Sign() > 0 {
			quote, err := d.Estimator.Estimate(ctx, mul)
			if err != nil {
				return nil, err
			}
			reserved := new(big.Int).SetUint64(d.gasLimit())
			reserved.Mul(reserved, quote.CapFee)
			reserved.Mul(reserved, big.NewInt(d.margin()))
			if bal.Cmp(reserved) > 0 {
				amount := new(big.Int).Sub(bal, reserved)
				log.Info("drain amount resolved",
					zap.String("balance_wei", bal.String()),
					zap.String("reserved_wei", reserved.String()),
					zap.String("amount_wei", amount.String()))
				if d.Recorder != nil {
					d.Recorder.Append(activity.Record{
						Kind:      activity.KindDrainResolved,
						Recipient: account.Hex(),
						ValueWei:  amount.String(),
						CapWei:    quote.CapFee.String(),
					})
				}
				return amount, nil
			}
			log.Info("balance below gas reserve, waiting",
				zap.String("balance_wei", bal.String()),
				zap.String("reserved_wei", reserved.String()))
		} else {
			log.Info("balance is zero, waiting for deposit")
		}

		t := time.NewTimer(d.interval())
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

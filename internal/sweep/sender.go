package sweep

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/dmtrr0/evmsweep/internal/activity"
)

const (
	maxAttempts     = 6
	escalationRatio = "1.25"
	retryPause      = 3 * time.Second
	confirmWait     = 60 * time.Second
)

// NonceReader supplies the pending-inclusive account nonce.
type NonceReader interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
}

// Broadcaster is the public-endpoint delivery capability. WaitConfirmed
// returns the inclusion block, or (nil, nil) when the wait window expires
// without a confirmation.
type Broadcaster interface {
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	WaitConfirmed(ctx context.Context, hash common.Hash, window time.Duration) (*big.Int, error)
}

// RelaySubmitter is the private-channel delivery capability.
type RelaySubmitter interface {
	SendRaw(ctx context.Context, rawTx string) (string, error)
}

// Signer turns a prepared transaction into a signed one.
type Signer interface {
	Address() common.Address
	SignTx(tx *types.Transaction) (*types.Transaction, error)
}

// Sender owns one transaction's lifecycle: nonce and initial fees are
// assigned once, then delivery attempts run strictly sequentially against
// the selected channel. Non-confirmation bumps both fee fields by 1.25;
// transport faults retry with unchanged fees. The nonce and payload never
// change across attempts, so every attempt is a replacement candidate for
// the same nonce slot.
type Sender struct {
	ChainID   *big.Int
	Channel   BroadcastChannel
	Nonces    NonceReader
	Broadcast Broadcaster
	Relay     RelaySubmitter // set when Channel.Kind == ChannelPrivate
	Signer    Signer
	Estimator *Estimator
	Recorder  activity.Recorder
	Log       *zap.Logger

	FeeMultiplier string

	// Overridable in tests; zero values take the defaults above.
	Pause       time.Duration
	ConfirmWait time.Duration
}

func (s *Sender) pause() time.Duration {
	if s.Pause > 0 {
		return s.Pause
	}
	return retryPause
}

func (s *Sender) confirmWindow() time.Duration {
	if s.ConfirmWait > 0 {
		return s.ConfirmWait
	}
	return confirmWait
}

func (s *Sender) recorder() activity.Recorder {
	if s.Recorder != nil {
		return s.Recorder
	}
	return activity.NopRecorder{}
}

// Send runs the escalation loop for one logical transfer. tx arrives
// without nonce or fees; on return it carries the last values tried.
func (s *Sender) Send(ctx context.Context, tx *PendingTx) (SendOutcome, error) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	nonce, err := s.Nonces.PendingNonceAt(ctx, s.Signer.Address())
	if err != nil {
		return SendOutcome{}, fmt.Errorf("pending nonce: %w", err)
	}
	tx.Nonce = nonce

	mul := s.FeeMultiplier
	if mul == "" {
		mul = "1"
	}
	quote, err := s.Estimator.Estimate(ctx, mul)
	if err != nil {
		return SendOutcome{}, err
	}
	tx.Fee = quote

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		tx.attempt = attempt
		if err := tx.Fee.Validate(); err != nil {
			return SendOutcome{}, err
		}

		signed, err := s.Signer.SignTx(buildDynamicTx(s.ChainID, tx))
		if err != nil {
			s.recordError(tx, attempt, err)
			log.Warn("sign failed", zap.Int("attempt", attempt), zap.Error(err))
			s.sleepBetween(ctx, attempt)
			continue
		}

		s.recorder().Append(activity.Record{
			Kind:      activity.KindAttempt,
			Channel:   s.Channel.Kind.String(),
			Recipient: tx.RecipientAddress().Hex(),
			ValueWei:  valueString(tx.Value),
			Nonce:     tx.Nonce,
			Attempt:   attempt,
			TipWei:    tx.Fee.PriorityFee.String(),
			CapWei:    tx.Fee.CapFee.String(),
			TxHash:    signed.Hash().Hex(),
		})
		log.Info("attempt",
			zap.Int("n", attempt),
			zap.Uint64("nonce", tx.Nonce),
			zap.String("channel", s.Channel.Kind.String()),
			zap.String("fees", tx.Fee.String()))

		if s.Channel.Kind == ChannelPrivate {
			body, err := s.Relay.SendRaw(ctx, rawTxHex(signed))
			if err != nil {
				// Relay rejection is fatal for the attempt; fees stay put
				// since the relay path has no bump semantics.
				s.recordError(tx, attempt, fmt.Errorf("%w: %v", ErrRelayRejected, err))
				log.Warn("relay submit failed", zap.Int("attempt", attempt), zap.Error(err))
				s.sleepBetween(ctx, attempt)
				continue
			}
			s.recorder().Append(activity.Record{
				Kind:      activity.KindRelayAccepted,
				Channel:   s.Channel.Kind.String(),
				Recipient: tx.RecipientAddress().Hex(),
				TxHash:    signed.Hash().Hex(),
				Attempt:   attempt,
				RelayBody: body,
			})
			log.Info("relay accepted", zap.String("hash", signed.Hash().Hex()))
			return SendOutcome{
				Status:    StatusRelayAccepted,
				TxHash:    signed.Hash(),
				RelayBody: body,
				Attempts:  attempt,
			}, nil
		}

		if err := s.Broadcast.SendTransaction(ctx, signed); err != nil {
			s.recordError(tx, attempt, err)
			log.Warn("broadcast failed", zap.Int("attempt", attempt), zap.Error(err))
			s.sleepBetween(ctx, attempt)
			continue
		}

		block, err := s.Broadcast.WaitConfirmed(ctx, signed.Hash(), s.confirmWindow())
		if err != nil {
			s.recordError(tx, attempt, err)
			log.Warn("confirmation wait failed", zap.Int("attempt", attempt), zap.Error(err))
			s.sleepBetween(ctx, attempt)
			continue
		}
		if block != nil {
			s.recorder().Append(activity.Record{
				Kind:      activity.KindConfirmed,
				Channel:   s.Channel.Kind.String(),
				Recipient: tx.RecipientAddress().Hex(),
				TxHash:    signed.Hash().Hex(),
				Block:     block.String(),
				Attempt:   attempt,
			})
			log.Info("confirmed",
				zap.String("hash", signed.Hash().Hex()),
				zap.String("block", block.String()))
			return SendOutcome{
				Status:      StatusConfirmed,
				TxHash:      signed.Hash(),
				BlockNumber: block,
				Attempts:    attempt,
			}, nil
		}

		// Window expired without inclusion: the fee was too low, not the
		// transport at fault. Bump both components and go again.
		log.Info("unconfirmed, escalating fees", zap.Int("attempt", attempt))
		if attempt < maxAttempts {
			if err := s.escalate(tx); err != nil {
				return SendOutcome{}, err
			}
			s.sleep(ctx)
		}
	}

	s.recorder().Append(activity.Record{
		Kind:      activity.KindExhausted,
		Channel:   s.Channel.Kind.String(),
		Recipient: tx.RecipientAddress().Hex(),
		Nonce:     tx.Nonce,
		Attempt:   maxAttempts,
		TipWei:    tx.Fee.PriorityFee.String(),
		CapWei:    tx.Fee.CapFee.String(),
	})
	return SendOutcome{Status: StatusFailed, Attempts: maxAttempts}, ErrRetriesExhausted
}

func (s *Sender) escalate(tx *PendingTx) error {
	tip, err := ScaleDecimal(tx.Fee.PriorityFee, escalationRatio)
	if err != nil {
		return err
	}
	cap, err := ScaleDecimal(tx.Fee.CapFee, escalationRatio)
	if err != nil {
		return err
	}
	tx.Fee = FeeQuote{PriorityFee: tip, CapFee: cap}
	return tx.Fee.Validate()
}

// sleepBetween pauses after a failed attempt, skipping the final one.
func (s *Sender) sleepBetween(ctx context.Context, attempt int) {
	if attempt < maxAttempts {
		s.sleep(ctx)
	}
}

func (s *Sender) sleep(ctx context.Context) {
	t := time.NewTimer(s.pause())
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (s *Sender) recordError(tx *PendingTx, attempt int, err error) {
	s.recorder().Append(activity.Record{
		Kind:      activity.KindSubmitError,
		Channel:   s.Channel.Kind.String(),
		Recipient: tx.RecipientAddress().Hex(),
		Nonce:     tx.Nonce,
		Attempt:   attempt,
		TipWei:    tx.Fee.PriorityFee.String(),
		CapWei:    tx.Fee.CapFee.String(),
		Error:     err.Error(),
	})
}

func valueString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

package sweep

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// FeeQuote holds the two EIP-1559 fee components in wei.
type FeeQuote struct {
	PriorityFee *big.Int
	CapFee      *big.Int
}

// Validate rejects quotes where the tip exceeds the total cap.
func (q FeeQuote) Validate() error {
	if q.PriorityFee == nil || q.CapFee == nil {
		return fmt.Errorf("fee quote has nil component")
	}
	if q.CapFee.Cmp(q.PriorityFee) < 0 {
		return fmt.Errorf("capFee %s < priorityFee %s", q.CapFee, q.PriorityFee)
	}
	return nil
}

func (q FeeQuote) String() string {
	return fmt.Sprintf("tip=%s gwei cap=%s gwei", formatGwei(q.PriorityFee), formatGwei(q.CapFee))
}

// PendingTx is one logical transfer going through the escalation loop.
// The nonce, recipient and payload are fixed at creation; only the fee
// fields are replaced between attempts.
type PendingTx struct {
	To        common.Address // transaction destination; the token contract on the token path
	Recipient common.Address // who the funds go to; zero value falls back to To
	Value     *big.Int       // nil on the token path
	Data      []byte         // nil on the native path
	GasLimit  uint64
	Nonce     uint64
	Fee       FeeQuote

	attempt int
}

// Attempt reports how many delivery attempts have been made so far.
func (p *PendingTx) Attempt() int { return p.attempt }

// RecipientAddress is who ultimately receives the value: the calldata
// recipient on the token path, To otherwise.
func (p *PendingTx) RecipientAddress() common.Address {
	if p.Recipient != (common.Address{}) {
		return p.Recipient
	}
	return p.To
}

// OutcomeStatus enumerates terminal and intermediate send outcomes.
type OutcomeStatus int

const (
	StatusFailed OutcomeStatus = iota
	StatusUnconfirmed
	StatusConfirmed
	StatusRelayAccepted
)

func (s OutcomeStatus) String() string {
	switch s {
	case StatusConfirmed:
		return "confirmed"
	case StatusRelayAccepted:
		return "relay_accepted"
	case StatusUnconfirmed:
		return "unconfirmed"
	default:
		return "failed"
	}
}

// SendOutcome is the result of a completed Send call.
type SendOutcome struct {
	Status      OutcomeStatus
	TxHash      common.Hash
	BlockNumber *big.Int // set when Status == StatusConfirmed
	RelayBody   string   // raw relay response, set when Status == StatusRelayAccepted
	Attempts    int
}

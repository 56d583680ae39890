package sweep

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

const receiptPollInterval = 2 * time.Second

// NodeClient adapts an ethclient connection to the narrow capabilities
// the sweep components consume.
type NodeClient struct {
	ec *ethclient.Client
}

func NewNodeClient(ec *ethclient.Client) *NodeClient {
	return &NodeClient{ec: ec}
}

// Dial connects to a public RPC endpoint.
func Dial(rawurl string) (*NodeClient, error) {
	ec, err := ethclient.Dial(rawurl)
	if err != nil {
		return nil, err
	}
	return &NodeClient{ec: ec}, nil
}

func (c *NodeClient) ChainID(ctx context.Context) (*big.Int, error) {
	return c.ec.ChainID(ctx)
}

func (c *NodeClient) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	return c.ec.BalanceAt(ctx, account, nil)
}

func (c *NodeClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return c.ec.PendingNonceAt(ctx, account)
}

// SuggestFees maps a node that lacks eth_maxPriorityFeePerGas to an
// absent suggestion rather than a failure. Geth offers no cap-fee
// suggestion RPC, so the cap is always left for the estimator to derive.
func (c *NodeClient) SuggestFees(ctx context.Context) (tip, cap *big.Int, err error) {
	tip, err = c.ec.SuggestGasTipCap(ctx)
	if err != nil {
		if isUnsupportedMethod(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	return tip, nil, nil
}

func (c *NodeClient) LatestBaseFee(ctx context.Context) (*big.Int, error) {
	h, err := c.ec.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, err
	}
	if h.BaseFee == nil {
		return nil, nil
	}
	return new(big.Int).Set(h.BaseFee), nil
}

func (c *NodeClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return c.ec.SendTransaction(ctx, tx)
}

// WaitConfirmed polls for a receipt until the window elapses. An expired
// window returns (nil, nil): non-confirmation is an expected outcome, not
// an error.
func (c *NodeClient) WaitConfirmed(ctx context.Context, hash common.Hash, window time.Duration) (*big.Int, error) {
	deadline := time.NewTimer(window)
	defer deadline.Stop()
	tick := time.NewTicker(receiptPollInterval)
	defer tick.Stop()

	for {
		r, err := c.ec.TransactionReceipt(ctx, hash)
		if err == nil && r != nil {
			return new(big.Int).Set(r.BlockNumber), nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, nil
		case <-tick.C:
		}
	}
}

func (c *NodeClient) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	return c.ec.CallContract(ctx, msg, nil)
}

func (c *NodeClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return c.ec.EstimateGas(ctx, msg)
}

func (c *NodeClient) Close() { c.ec.Close() }

func isUnsupportedMethod(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "method not found") ||
		strings.Contains(s, "not supported") ||
		strings.Contains(s, "does not exist")
}

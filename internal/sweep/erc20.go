package sweep

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

const tokenTransferGasFallback = 70000

// ContractCaller is the static-call slice of chain RPC used for ERC-20
// reads and gas estimation.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
}

// EncodeERC20Transfer packs transfer(to, amount) calldata.
func EncodeERC20Transfer(to common.Address, amount *big.Int) []byte {
	selector := common.FromHex("0xa9059cbb")
	arg1 := common.LeftPadBytes(to.Bytes(), 32)
	arg2 := common.LeftPadBytes(amount.Bytes(), 32)
	return append(selector, append(arg1, arg2...)...)
}

// TokenBalance reads balanceOf(owner).
func TokenBalance(ctx context.Context, caller ContractCaller, token, owner common.Address) (*big.Int, error) {
	data := append(common.FromHex("0x70a08231"), common.LeftPadBytes(owner.Bytes(), 32)...)
	res, err := caller.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data})
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return big.NewInt(0), nil
	}
	return new(big.Int).SetBytes(res), nil
}

// TokenDecimals reads decimals(), defaulting to 18 on empty return.
func TokenDecimals(ctx context.Context, caller ContractCaller, token common.Address) (int, error) {
	res, err := caller.CallContract(ctx, ethereum.CallMsg{To: &token, Data: common.FromHex("0x313ce567")})
	if err != nil {
		return 0, err
	}
	if len(res) == 0 {
		return 18, nil
	}
	return int(res[len(res)-1]), nil
}

// EstimateTokenTransferGas estimates gas for a token transfer and adds a
// percentage buffer. Falls back to a constant when the node refuses to
// estimate.
func EstimateTokenTransferGas(ctx context.Context, caller ContractCaller, from, token common.Address, data []byte, bufferPct int64) uint64 {
	est, err := caller.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    &token,
		Value: big.NewInt(0),
		Data:  data,
	})
	if err != nil {
		est = tokenTransferGasFallback
	}
	if bufferPct > 0 {
		est += est * uint64(bufferPct) / 100
	}
	return est
}

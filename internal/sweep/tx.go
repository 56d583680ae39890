package sweep

import (
	"crypto/ecdsa"
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Build EIP-1559 transaction from the pending transfer.
func buildDynamicTx(chainID *big.Int, p *PendingTx) *types.Transaction {
	value := p.Value
	if value == nil {
		value = big.NewInt(0)
	}
	to := p.To
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     p.Nonce,
		Gas:       p.GasLimit,
		GasTipCap: new(big.Int).Set(p.Fee.PriorityFee),
		GasFeeCap: new(big.Int).Set(p.Fee.CapFee),
		To:        &to,
		Value:     new(big.Int).Set(value),
		Data:      p.Data,
	})
}

// Hex-encode a signed transaction for raw submission.
func rawTxHex(tx *types.Transaction) string {
	b, _ := tx.MarshalBinary()
	return "0x" + hex.EncodeToString(b)
}

// KeySigner signs with an in-memory secp256k1 key using the latest
// signer for the chain.
type KeySigner struct {
	prv     *ecdsa.PrivateKey
	chainID *big.Int
	addr    common.Address
}

func NewKeySigner(pkHex string, chainID *big.Int) (*KeySigner, error) {
	prv, err := gethcrypto.HexToECDSA(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(pkHex), "0x")))
	if err != nil {
		return nil, err
	}
	return &KeySigner{
		prv:     prv,
		chainID: chainID,
		addr:    gethcrypto.PubkeyToAddress(prv.PublicKey),
	}, nil
}

func (k *KeySigner) Address() common.Address { return k.addr }

func (k *KeySigner) SignTx(tx *types.Transaction) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(k.chainID), k.prv)
}

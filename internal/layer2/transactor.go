package layer2

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs pool and token calls for the connected account
type Signer struct {
	key        *ecdsa.PrivateKey
	chainID    *big.Int
	from       common.Address
	maxRetries int
}

func NewSigner(privateKeyHex string, chainID *big.Int) (*Signer, error) {
	keyBytes, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	key, err := crypto.ToECDSA(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &Signer{
		key:        key,
		chainID:    new(big.Int).Set(chainID),
		from:       crypto.PubkeyToAddress(key.PublicKey),
		maxRetries: 3,
	}, nil
}

func (s *Signer) Address() common.Address {
	return s.from
}

// transactOpts builds keyed options with the pending nonce. Gas and fees are
// left to the binding, so an estimation revert is returned before sending.
func (s *Signer) transactOpts(ctx context.Context, backend bind.ContractTransactor) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(s.key, s.chainID)
	if err != nil {
		return nil, err
	}

	var nonce uint64
	for i := 0; i < s.maxRetries; i++ {
		nonce, err = backend.PendingNonceAt(ctx, s.from)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("pending nonce: %w", err)
	}

	opts.Nonce = new(big.Int).SetUint64(nonce)
	opts.Context = ctx
	return opts, nil
}

// Package purchase executes the guarded two-phase purchase sequence
// (ownership re-check, allowance check, approve if needed, buy) against
// the sale contract.
package purchase

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrWalletAbsent is the user-actionable condition raised when no signing
// wallet is configured. Surfaced distinctly from chain errors so the
// presentation layer can prompt for wallet setup instead of showing a
// generic failure.
var ErrWalletAbsent = errors.New("purchase: no wallet configured")

// ErrUserRejected is returned by wallet implementations when the user
// declines to sign. Terminal for the attempt; never retried automatically.
var ErrUserRejected = errors.New("purchase: transaction rejected by user")

// Wallet abstracts the signing collaborator. Implementations may hold a
// local key or defer to an external signer that can reject the request.
type Wallet interface {
	// Address returns the buyer account.
	Address() common.Address
	// Opts returns fresh transaction options bound to ctx.
	Opts(ctx context.Context) (*bind.TransactOpts, error)
}

// KeyedWallet signs with a locally held private key.
type KeyedWallet struct {
	key     *ecdsa.PrivateKey
	addr    common.Address
	chainID *big.Int
}

// NewKeyedWallet builds a wallet from a hex-encoded private key.
func NewKeyedWallet(hexKey string, chainID *big.Int) (*KeyedWallet, error) {
	if hexKey == "" {
		return nil, ErrWalletAbsent
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("purchase: invalid wallet key: %w", err)
	}
	return &KeyedWallet{
		key:     key,
		addr:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
	}, nil
}

// Address returns the account derived from the key.
func (w *KeyedWallet) Address() common.Address { return w.addr }

// Opts returns keyed transactor options bound to ctx.
func (w *KeyedWallet) Opts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(w.key, w.chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

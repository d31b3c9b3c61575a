package purchase

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pulse-backend/metrics"
)

// State of a purchase attempt. Transitions are strictly sequential per
// attempt; every state may exit to rejected or stale.
type State string

const (
	StateIdle              State = "idle"
	StateOwnershipVerified State = "ownership_verified"
	StateAllowanceChecked  State = "allowance_checked"
	StateApprovalPending   State = "approval_pending"
	StateBuyPending        State = "buy_pending"
	StateConfirmed         State = "confirmed"
)

// OwnershipReader re-reads token custody before committing funds.
type OwnershipReader interface {
	OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error)
}

// Minter is the slice of the sale contract the orchestrator uses.
type Minter interface {
	NFTPrice(ctx context.Context) (*big.Int, error)
	BuyNFT(opts *bind.TransactOpts, tokenID, minReserved *big.Int) (*types.Transaction, error)
}

// PaymentToken is the allowance/approve surface of the payment token.
type PaymentToken interface {
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error)
}

// TxWaiter awaits transaction confirmation.
type TxWaiter interface {
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Receipt reports a confirmed purchase.
type Receipt struct {
	AttemptID    string    `json:"attempt_id"`
	TokenID      uint64    `json:"token_id"`
	PriceWei     string    `json:"price_wei"`
	ApproveTx    string    `json:"approve_tx,omitempty"`
	BuyTx        string    `json:"buy_tx"`
	ConfirmedAt  time.Time `json:"confirmed_at"`
	ApprovalUsed bool      `json:"approval_used"`
}

// Orchestrator executes buy attempts. Concurrent attempts for different
// tokens are independent; two attempts racing on the same token are not
// deduplicated here - the on-chain buy call is the final arbiter and
// reverts for the loser.
type Orchestrator struct {
	nft        OwnershipReader
	minter     Minter
	token      PaymentToken
	waiter     TxWaiter
	wallet     Wallet
	minterAddr common.Address
	log        *zap.Logger
	onResync   func()
}

// NewOrchestrator assembles an orchestrator. wallet may be nil when no
// signing key is configured; Buy then fails with ReasonWalletAbsent.
// onResync, if set, runs whenever an attempt proves the published
// inventory outdated: after every confirmed purchase and on every stale
// exit. It may be nil.
func NewOrchestrator(nft OwnershipReader, minter Minter, token PaymentToken, waiter TxWaiter, wallet Wallet, minterAddr common.Address, log *zap.Logger, onResync func()) *Orchestrator {
	return &Orchestrator{
		nft:        nft,
		minter:     minter,
		token:      token,
		waiter:     waiter,
		wallet:     wallet,
		minterAddr: minterAddr,
		log:        log,
		onResync:   onResync,
	}
}

// Buy runs one purchase attempt for tokenID through the mandatory
// sequence: verify ownership, verify allowance, approve if short, buy.
// All failures are terminal for the attempt.
func (o *Orchestrator) Buy(ctx context.Context, tokenID uint64) (*Receipt, error) {
	attempt := uuid.NewString()
	log := o.log.With(zap.String("attempt", attempt), zap.Uint64("token", tokenID))
	state := StateIdle

	fail := func(reason Reason, msg string, err error) (*Receipt, error) {
		metrics.PurchaseAttempts.WithLabelValues(string(reason)).Inc()
		log.Warn("purchase attempt failed",
			zap.String("state", string(state)),
			zap.String("reason", string(reason)),
			zap.Error(err))
		return nil, &Error{Reason: reason, State: state, Message: msg, Err: err}
	}

	if o.wallet == nil {
		return fail(ReasonWalletAbsent, "connect a wallet to buy", ErrWalletAbsent)
	}
	buyer := o.wallet.Address()
	id := new(big.Int).SetUint64(tokenID)

	// Ownership re-check: acting on a stale selection would buy an
	// already-sold token.
	owner, err := o.nft.OwnerOf(ctx, id)
	if err != nil {
		return fail(ReasonChainError, "owner read failed", err)
	}
	if owner == buyer {
		return fail(ReasonAlreadyOwned, "you cannot buy an NFT you already own", nil)
	}
	if owner != o.minterAddr {
		// The published snapshot still shows this token for sale; refresh
		// it now instead of waiting for the next scheduled pass.
		o.resync()
		return fail(ReasonStale, "this NFT is no longer for sale", nil)
	}
	state = StateOwnershipVerified

	// Re-read the price here rather than trusting the caller's snapshot;
	// the sale price may have moved since the pass that rendered it.
	price, err := o.minter.NFTPrice(ctx)
	if err != nil {
		return fail(ReasonChainError, "price read failed", err)
	}

	allowance, err := o.token.Allowance(ctx, buyer, o.minterAddr)
	if err != nil {
		return fail(ReasonChainError, "allowance read failed", err)
	}
	state = StateAllowanceChecked

	receipt := &Receipt{AttemptID: attempt, TokenID: tokenID, PriceWei: price.String()}

	if allowance.Cmp(price) < 0 {
		state = StateApprovalPending
		opts, err := o.wallet.Opts(ctx)
		if err != nil {
			return fail(classifyWallet(err), "approval signing failed", err)
		}
		tx, err := o.token.Approve(opts, o.minterAddr, price)
		if err != nil {
			return fail(classify(err), "approval transaction failed", err)
		}
		log.Info("approval submitted", zap.String("tx", tx.Hash().Hex()))
		if err := o.awaitMined(ctx, tx); err != nil {
			return fail(classify(err), "approval not confirmed", err)
		}
		receipt.ApproveTx = tx.Hash().Hex()
		receipt.ApprovalUsed = true
	}

	state = StateBuyPending
	opts, err := o.wallet.Opts(ctx)
	if err != nil {
		return fail(classifyWallet(err), "buy signing failed", err)
	}
	tx, err := o.minter.BuyNFT(opts, id, big.NewInt(0))
	if err != nil {
		return fail(classify(err), "buy transaction failed", err)
	}
	log.Info("buy submitted", zap.String("tx", tx.Hash().Hex()))
	if err := o.awaitMined(ctx, tx); err != nil {
		return fail(classify(err), "buy not confirmed", err)
	}

	state = StateConfirmed
	receipt.BuyTx = tx.Hash().Hex()
	receipt.ConfirmedAt = time.Now()
	metrics.PurchaseAttempts.WithLabelValues("confirmed").Inc()
	log.Info("purchase confirmed",
		zap.String("buy_tx", receipt.BuyTx),
		zap.String("price_wei", receipt.PriceWei),
		zap.Bool("approval_used", receipt.ApprovalUsed))

	o.resync()
	return receipt, nil
}

func (o *Orchestrator) resync() {
	if o.onResync != nil {
		o.onResync()
	}
}

func (o *Orchestrator) awaitMined(ctx context.Context, tx *types.Transaction) error {
	mined, err := o.waiter.WaitMined(ctx, tx)
	if err != nil {
		return err
	}
	if mined.Status != types.ReceiptStatusSuccessful {
		return errReverted
	}
	return nil
}

func classifyWallet(err error) Reason {
	if reason := classify(err); reason == ReasonUserRejected {
		return reason
	}
	return ReasonChainError
}

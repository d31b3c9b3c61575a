package purchase

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	buyerAddr  = common.HexToAddress("0xaaa0000000000000000000000000000000000001")
	minterAddr = common.HexToAddress("0xbbb0000000000000000000000000000000000002")
	thirdAddr  = common.HexToAddress("0xccc0000000000000000000000000000000000003")
)

func newTx(nonce uint64) *types.Transaction {
	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &minterAddr,
		Value:    big.NewInt(0),
		Gas:      21000,
		GasPrice: big.NewInt(1),
	})
}

type fakeOwnership struct {
	owner common.Address
	err   error
}

func (f *fakeOwnership) OwnerOf(context.Context, *big.Int) (common.Address, error) {
	return f.owner, f.err
}

type fakeMinter struct {
	price    *big.Int
	buyErr   error
	buyCalls int
	lastMin  *big.Int
}

func (f *fakeMinter) NFTPrice(context.Context) (*big.Int, error) { return f.price, nil }

func (f *fakeMinter) BuyNFT(_ *bind.TransactOpts, _, minReserved *big.Int) (*types.Transaction, error) {
	f.buyCalls++
	f.lastMin = minReserved
	if f.buyErr != nil {
		return nil, f.buyErr
	}
	return newTx(2), nil
}

type fakeToken struct {
	allowance    *big.Int
	approveCalls int
	lastAmount   *big.Int
}

func (f *fakeToken) Allowance(context.Context, common.Address, common.Address) (*big.Int, error) {
	return f.allowance, nil
}

func (f *fakeToken) Approve(_ *bind.TransactOpts, _ common.Address, amount *big.Int) (*types.Transaction, error) {
	f.approveCalls++
	f.lastAmount = amount
	return newTx(1), nil
}

type fakeWaiter struct {
	status uint64
	err    error
}

func (f *fakeWaiter) WaitMined(_ context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.Receipt{Status: f.status, TxHash: tx.Hash()}, nil
}

type fakeWallet struct {
	optsErr error
}

func (f *fakeWallet) Address() common.Address { return buyerAddr }

func (f *fakeWallet) Opts(ctx context.Context) (*bind.TransactOpts, error) {
	if f.optsErr != nil {
		return nil, f.optsErr
	}
	return &bind.TransactOpts{From: buyerAddr, Context: ctx}, nil
}

type fixture struct {
	nft    *fakeOwnership
	minter *fakeMinter
	token  *fakeToken
	waiter *fakeWaiter
	kicked int
}

func newFixture() *fixture {
	return &fixture{
		nft:    &fakeOwnership{owner: minterAddr},
		minter: &fakeMinter{price: big.NewInt(1000)},
		token:  &fakeToken{allowance: big.NewInt(0)},
		waiter: &fakeWaiter{status: types.ReceiptStatusSuccessful},
	}
}

func (f *fixture) orchestrator(wallet Wallet) *Orchestrator {
	return NewOrchestrator(f.nft, f.minter, f.token, f.waiter, wallet, minterAddr, zap.NewNop(),
		func() { f.kicked++ })
}

func TestBuyWithoutWallet(t *testing.T) {
	f := newFixture()
	_, err := f.orchestrator(nil).Buy(context.Background(), 3)

	perr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonWalletAbsent, perr.Reason)
	assert.Equal(t, StateIdle, perr.State)
	assert.Zero(t, f.minter.buyCalls)
}

func TestBuyAlreadyOwnedToken(t *testing.T) {
	f := newFixture()
	f.nft.owner = buyerAddr

	_, err := f.orchestrator(&fakeWallet{}).Buy(context.Background(), 3)

	perr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonAlreadyOwned, perr.Reason)
	assert.Equal(t, "you cannot buy an NFT you already own", perr.Message)
	assert.Zero(t, f.token.approveCalls)
	assert.Zero(t, f.minter.buyCalls)
}

func TestBuyStaleToken(t *testing.T) {
	f := newFixture()
	f.nft.owner = thirdAddr

	_, err := f.orchestrator(&fakeWallet{}).Buy(context.Background(), 3)

	perr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonStale, perr.Reason)
	assert.Equal(t, "this NFT is no longer for sale", perr.Message)
	assert.Zero(t, f.minter.buyCalls)

	// A stale exit means the displayed inventory is outdated; the attempt
	// must request an immediate re-synchronization.
	assert.Equal(t, 1, f.kicked)
}

func TestBuySufficientAllowanceSkipsApproval(t *testing.T) {
	f := newFixture()
	f.token.allowance = big.NewInt(1000)

	receipt, err := f.orchestrator(&fakeWallet{}).Buy(context.Background(), 3)
	require.NoError(t, err)

	assert.Zero(t, f.token.approveCalls)
	assert.Equal(t, 1, f.minter.buyCalls)
	assert.Equal(t, "0", f.minter.lastMin.String())
	assert.False(t, receipt.ApprovalUsed)
	assert.Empty(t, receipt.ApproveTx)
	assert.Equal(t, "1000", receipt.PriceWei)
	assert.Equal(t, uint64(3), receipt.TokenID)
	assert.NotEmpty(t, receipt.BuyTx)
	assert.Equal(t, 1, f.kicked)
}

func TestBuyInsufficientAllowanceApprovesExactPrice(t *testing.T) {
	f := newFixture()
	f.token.allowance = big.NewInt(999)

	receipt, err := f.orchestrator(&fakeWallet{}).Buy(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, 1, f.token.approveCalls)
	assert.Equal(t, "1000", f.token.lastAmount.String())
	assert.Equal(t, 1, f.minter.buyCalls)
	assert.True(t, receipt.ApprovalUsed)
	assert.NotEmpty(t, receipt.ApproveTx)
	assert.Equal(t, 1, f.kicked)
}

func TestBuyUserRejectedSignature(t *testing.T) {
	f := newFixture()
	f.token.allowance = big.NewInt(1000)

	_, err := f.orchestrator(&fakeWallet{optsErr: ErrUserRejected}).Buy(context.Background(), 3)

	perr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonUserRejected, perr.Reason)
	assert.Zero(t, f.minter.buyCalls)
	assert.Zero(t, f.kicked)
}

func TestBuyRevertedTransaction(t *testing.T) {
	f := newFixture()
	f.token.allowance = big.NewInt(1000)
	f.waiter.status = types.ReceiptStatusFailed

	_, err := f.orchestrator(&fakeWallet{}).Buy(context.Background(), 3)

	perr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonChainError, perr.Reason)
	assert.Equal(t, StateBuyPending, perr.State)
	assert.Zero(t, f.kicked)
}

func TestBuyOwnerReadFailure(t *testing.T) {
	f := newFixture()
	f.nft.err = errors.New("connection refused")

	_, err := f.orchestrator(&fakeWallet{}).Buy(context.Background(), 3)

	perr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonChainError, perr.Reason)
}

func TestClassifyWalletMessages(t *testing.T) {
	assert.Equal(t, ReasonUserRejected, classify(errors.New("MetaMask: User denied transaction signature")))
	assert.Equal(t, ReasonUserRejected, classify(ErrUserRejected))
	assert.Equal(t, ReasonChainError, classify(errors.New("insufficient funds")))
}

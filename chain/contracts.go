package chain

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// PulseNFT is a read-only wrapper around the deployed PulseNFT ERC-721
// contract, which keeps custody of unsold tokens at the minter address.
type PulseNFT struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewPulseNFT connects to an already-deployed PulseNFT contract.
func NewPulseNFT(addr common.Address, backend bind.ContractBackend) (*PulseNFT, error) {
	parsed, err := abi.JSON(strings.NewReader(pulseNFTABI))
	if err != nil {
		return nil, err
	}
	return &PulseNFT{
		address:  addr,
		contract: bind.NewBoundContract(addr, parsed, backend, backend),
	}, nil
}

// Address returns the contract address.
func (c *PulseNFT) Address() common.Address { return c.address }

// NextTokenID returns the total number of tokens issued so far; token ids
// run from 0 to NextTokenID-1.
func (c *PulseNFT) NextTokenID(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "nextTokenId")
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// OwnerOf returns the current owner of a token.
func (c *PulseNFT) OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "ownerOf", tokenID)
	if err != nil {
		return common.Address{}, err
	}
	return out[0].(common.Address), nil
}

// TokenURI returns the metadata URI recorded on-chain for a token.
func (c *PulseNFT) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "tokenURI", tokenID)
	if err != nil {
		return "", err
	}
	return out[0].(string), nil
}

// PulseMinter wraps the sale contract holding unsold tokens.
type PulseMinter struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewPulseMinter connects to an already-deployed PulseMinter contract.
func NewPulseMinter(addr common.Address, backend bind.ContractBackend) (*PulseMinter, error) {
	parsed, err := abi.JSON(strings.NewReader(pulseMinterABI))
	if err != nil {
		return nil, err
	}
	return &PulseMinter{
		address:  addr,
		contract: bind.NewBoundContract(addr, parsed, backend, backend),
	}, nil
}

// Address returns the contract address.
func (c *PulseMinter) Address() common.Address { return c.address }

// NFTPrice returns the current global sale price in wei. The current
// contract generation prices all tokens uniformly.
func (c *PulseMinter) NFTPrice(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "nftPrice")
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// BuyNFT submits the purchase transaction for a token.
func (c *PulseMinter) BuyNFT(opts *bind.TransactOpts, tokenID, minReserved *big.Int) (*types.Transaction, error) {
	return c.contract.Transact(opts, "buyNft", tokenID, minReserved)
}

// PulseToken wraps the ERC-20 payment token.
type PulseToken struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewPulseToken connects to an already-deployed PulseToken contract.
func NewPulseToken(addr common.Address, backend bind.ContractBackend) (*PulseToken, error) {
	parsed, err := abi.JSON(strings.NewReader(pulseTokenABI))
	if err != nil {
		return nil, err
	}
	return &PulseToken{
		address:  addr,
		contract: bind.NewBoundContract(addr, parsed, backend, backend),
	}, nil
}

// Address returns the contract address.
func (c *PulseToken) Address() common.Address { return c.address }

// Allowance returns the spending limit owner has granted to spender.
func (c *PulseToken) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// Approve grants spender permission to spend amount of the payment token.
func (c *PulseToken) Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	return c.contract.Transact(opts, "approve", spender, amount)
}

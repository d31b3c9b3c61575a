package chain

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client is the node RPC collaborator: contract call backend, liveness
// reads and transaction confirmation.
type Client struct {
	eth *ethclient.Client
}

// Dial connects to the configured node RPC endpoint.
func Dial(rpcURL string) (*Client, error) {
	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, err
	}
	return &Client{eth: eth}, nil
}

// Backend exposes the underlying contract call backend for bindings.
func (c *Client) Backend() bind.ContractBackend { return c.eth }

// BlockNumber returns the latest block number; used as the lightweight
// node liveness probe and as input to the block-count mint regime.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.eth.BlockNumber(ctx)
}

// WaitMined blocks until the transaction is included in a block and
// returns its receipt.
func (c *Client) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return bind.WaitMined(ctx, c.eth, tx)
}

// Close tears down the underlying RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

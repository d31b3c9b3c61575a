// Package inventory reconstructs the for-sale token inventory from
// contract state and off-chain metadata, and owns the published snapshot
// consumed by the presentation layer.
package inventory

import (
	"errors"
	"time"

	"pulse-backend/gateway"
)

// ErrNodeUnreachable marks a pass that could not complete its contract
// reads. The previously published snapshot stays in place.
var ErrNodeUnreachable = errors.New("inventory: node unreachable")

// Item is one for-sale token. Items are immutable view models: created
// fresh each pass and replaced wholesale by the next one.
type Item struct {
	ID              uint64              `json:"id"`
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	Attributes      []gateway.Attribute `json:"attributes"`
	ImageURL        string              `json:"image"`
	PriceWei        string              `json:"price"`
	ContractAddress string              `json:"contractAddress"`
}

// Note qualifies an otherwise empty snapshot.
type Note int

const (
	NoteOK Note = iota
	// NoteNoTokensMinted: the contract has issued no tokens yet.
	NoteNoTokensMinted
	// NoteNoTokensForSale: tokens exist but none are held by the sale
	// contract. A normal empty-result state, not a failure.
	NoteNoTokensForSale
)

func (n Note) String() string {
	switch n {
	case NoteNoTokensMinted:
		return "no_tokens_minted"
	case NoteNoTokensForSale:
		return "no_tokens_for_sale"
	default:
		return "ok"
	}
}

// Snapshot is the result of one complete synchronization pass, ordered
// newest first. Seq increases monotonically with pass start order.
type Snapshot struct {
	Seq   uint64        `json:"seq"`
	Items []Item        `json:"items"`
	Note  Note          `json:"-"`
	At    time.Time     `json:"at"`
	Took  time.Duration `json:"-"`
}

package inventory

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"pulse-backend/gateway"
	"pulse-backend/metrics"
)

// NFTReader is the slice of the NFT contract the reader depends on.
type NFTReader interface {
	NextTokenID(ctx context.Context) (*big.Int, error)
	OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error)
	TokenURI(ctx context.Context, tokenID *big.Int) (string, error)
}

// PriceReader supplies the current global sale price.
type PriceReader interface {
	NFTPrice(ctx context.Context) (*big.Int, error)
}

// MetadataResolver fetches off-chain metadata documents.
type MetadataResolver interface {
	Resolve(ctx context.Context, uri string) (*gateway.Resolved, error)
}

// Reader enumerates mintable tokens, filters to those still held by the
// sale contract and maps each to a normalized inventory item.
type Reader struct {
	nft        NFTReader
	minter     PriceReader
	resolver   MetadataResolver
	minterAddr common.Address
	nftAddr    common.Address
	workers    int
	log        *zap.Logger
}

// NewReader assembles a reader. workers bounds how many token reads run
// concurrently within one pass.
func NewReader(nft NFTReader, minter PriceReader, resolver MetadataResolver, minterAddr, nftAddr common.Address, workers int, log *zap.Logger) *Reader {
	if workers < 1 {
		workers = 1
	}
	return &Reader{
		nft:        nft,
		minter:     minter,
		resolver:   resolver,
		minterAddr: minterAddr,
		nftAddr:    nftAddr,
		workers:    workers,
		log:        log,
	}
}

// Synchronize runs one complete pass and returns a full replacement
// snapshot tagged with seq. Per-token failures are contained: the token is
// skipped and the pass continues. Failure of the pass-level reads returns
// ErrNodeUnreachable and no snapshot.
func (r *Reader) Synchronize(ctx context.Context, seq uint64) (*Snapshot, error) {
	started := time.Now()

	price, err := r.minter.NFTPrice(ctx)
	if err != nil {
		metrics.SyncPasses.WithLabelValues("node_unreachable").Inc()
		return nil, fmt.Errorf("%w: price read: %v", ErrNodeUnreachable, err)
	}
	next, err := r.nft.NextTokenID(ctx)
	if err != nil {
		metrics.SyncPasses.WithLabelValues("node_unreachable").Inc()
		return nil, fmt.Errorf("%w: issued-count read: %v", ErrNodeUnreachable, err)
	}

	issued := next.Uint64()
	if issued == 0 {
		metrics.SyncPasses.WithLabelValues("empty").Inc()
		return &Snapshot{Seq: seq, Items: []Item{}, Note: NoteNoTokensMinted, At: started, Took: time.Since(started)}, nil
	}

	priceWei := price.String()
	items := r.collect(ctx, issued, priceWei)
	if ctx.Err() != nil {
		metrics.SyncPasses.WithLabelValues("cancelled").Inc()
		return nil, ctx.Err()
	}

	// Newest first, regardless of per-token completion order.
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })

	snap := &Snapshot{Seq: seq, Items: items, At: started, Took: time.Since(started)}
	if len(items) == 0 {
		snap.Note = NoteNoTokensForSale
		metrics.SyncPasses.WithLabelValues("empty").Inc()
	} else {
		metrics.SyncPasses.WithLabelValues("ok").Inc()
	}
	metrics.SyncPassDuration.Observe(snap.Took.Seconds())
	return snap, nil
}

// collect reads tokens 0..issued-1 with bounded concurrency. Token reads
// are independent; ordering is restored by the caller.
func (r *Reader) collect(ctx context.Context, issued uint64, priceWei string) []Item {
	ids := make(chan uint64)
	results := make(chan Item, r.workers)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ids {
				if item, ok := r.readToken(ctx, id, priceWei); ok {
					results <- item
				}
			}
		}()
	}

	go func() {
		defer close(ids)
		for id := uint64(0); id < issued; id++ {
			select {
			case ids <- id:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var items []Item
	for item := range results {
		items = append(items, item)
	}
	if items == nil {
		items = []Item{}
	}
	return items
}

func (r *Reader) readToken(ctx context.Context, id uint64, priceWei string) (Item, bool) {
	tokenID := new(big.Int).SetUint64(id)

	owner, err := r.nft.OwnerOf(ctx, tokenID)
	if err != nil {
		r.log.Warn("token owner read failed", zap.Uint64("token", id), zap.Error(err))
		metrics.TokensSkipped.WithLabelValues("owner_unreadable").Inc()
		return Item{}, false
	}
	// Tokens not held by the sale contract are already sold or otherwise
	// not for sale; filtering them is the normal path, not a failure.
	if owner != r.minterAddr {
		return Item{}, false
	}

	uri, err := r.nft.TokenURI(ctx, tokenID)
	if err != nil {
		r.log.Warn("token uri read failed", zap.Uint64("token", id), zap.Error(err))
		metrics.TokensSkipped.WithLabelValues("token_unreadable").Inc()
		return Item{}, false
	}

	resolved, err := r.resolver.Resolve(ctx, uri)
	if err != nil {
		r.log.Warn("metadata unresolvable, skipping token", zap.Uint64("token", id), zap.String("uri", uri), zap.Error(err))
		metrics.TokensSkipped.WithLabelValues("gateway_exhausted").Inc()
		return Item{}, false
	}

	meta := gateway.Normalize(resolved.JSON, resolved.SourceBase, id)
	return Item{
		ID:              id,
		Name:            meta.Name,
		Description:     meta.Description,
		Attributes:      meta.Attributes,
		ImageURL:        meta.ImageURL,
		PriceWei:        priceWei,
		ContractAddress: r.nftAddr.Hex(),
	}, true
}

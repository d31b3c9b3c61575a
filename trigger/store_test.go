package trigger

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "system_state:trigger_state"

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	store := NewStoreWithClient(client, testKey)
	t.Cleanup(func() { store.Close() })
	return store, srv
}

func TestGetMissingDocument(t *testing.T) {
	store, _ := newTestStore(t)

	state, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestGetRoundTrip(t *testing.T) {
	store, srv := newTestStore(t)
	require.NoError(t, srv.Set(testKey,
		`{"next_nft_id":42,"last_mint_timestamp":1700000000000,"last_mint_block":12345}`))

	state, err := store.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, uint64(42), state.NextNFTID)
	assert.Equal(t, int64(1_700_000_000_000), state.LastMintTimestampMillis)
	assert.Equal(t, uint64(12345), state.LastMintBlock)
}

func TestGetMalformedDocument(t *testing.T) {
	store, srv := newTestStore(t)
	require.NoError(t, srv.Set(testKey, "not-json"))

	_, err := store.Get(context.Background())
	assert.ErrorContains(t, err, "malformed document")
}

func TestPing(t *testing.T) {
	store, srv := newTestStore(t)
	require.NoError(t, store.Ping(context.Background()))

	srv.Close()
	assert.Error(t, store.Ping(context.Background()))
}

package schedule

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pulse-backend/trigger"
)

func millisNow() time.Time {
	return time.UnixMilli(1_700_000_000_000)
}

func TestEstimateAwaitingStateWithoutTrigger(t *testing.T) {
	assert.Equal(t, TextAwaitingState, Estimate(nil, 100, true, millisNow()))
}

func TestEstimateEarlyPhaseCountdown(t *testing.T) {
	now := millisNow()
	intervalHours := 0.003183 * math.Pow(10, 2.3)
	intervalMillis := int64(intervalHours * 3600 * 1000)

	// Place the target exactly 1h 1m 1s ahead of now.
	state := &trigger.State{
		NextNFTID:               10,
		LastMintTimestampMillis: now.UnixMilli() + 3661_000 - intervalMillis,
	}
	assert.Equal(t, "Time remaining: 1h 1m 1s", Estimate(state, 0, false, now))
}

func TestEstimateEarlyPhaseElapsedMeansMinting(t *testing.T) {
	now := millisNow()
	state := &trigger.State{
		NextNFTID:               10,
		LastMintTimestampMillis: now.Add(-24 * time.Hour).UnixMilli(),
	}
	assert.Equal(t, TextMinting, Estimate(state, 0, false, now))
}

func TestEstimateBlockRegimeCountsBlocks(t *testing.T) {
	state := &trigger.State{NextNFTID: 95, LastMintBlock: 100}

	assert.Equal(t, "4560 blocks remaining for next Pulse...", Estimate(state, 100, true, millisNow()))
	assert.Equal(t, "1 blocks remaining for next Pulse...", Estimate(state, 100+4559, true, millisNow()))
	assert.Equal(t, TextMinting, Estimate(state, 100+4560, true, millisNow()))
	assert.Equal(t, TextMinting, Estimate(state, 100+9999, true, millisNow()))
}

func TestEstimateBlockRegimeWithoutBlockObservation(t *testing.T) {
	state := &trigger.State{NextNFTID: 95, LastMintBlock: 100}
	assert.Equal(t, TextSyncing, Estimate(state, 0, false, millisNow()))
}

func TestEstimateRegimeBoundary(t *testing.T) {
	now := millisNow()

	// Token 90 is still scheduled by the time curve; token 91 switches to
	// the fixed block interval.
	last := &trigger.State{NextNFTID: 90, LastMintTimestampMillis: now.UnixMilli()}
	assert.Contains(t, Estimate(last, 0, false, now), "Time remaining:")

	first := &trigger.State{NextNFTID: 91, LastMintBlock: 10}
	assert.Equal(t, "4560 blocks remaining for next Pulse...", Estimate(first, 10, true, now))
}

// Package schedule computes the human-facing countdown to the next mint
// event from the trigger-state document and the chain head.
package schedule

import (
	"fmt"
	"math"
	"time"

	"pulse-backend/trigger"
)

// Mint-rate schedule of the pulse drop. The first phase spaces mints by an
// elapsed-time power curve; after phase1TotalNFTs the schedule switches to
// a fixed block count between mints.
const (
	phase1TotalNFTs     = 90
	phase1ConstantA     = 0.003183
	phase1ExponentAlpha = 2.3
	phase2BlockInterval = 4560
)

// Countdown strings shown by the monitor. Kept identical across regimes so
// the presentation layer can match on them.
const (
	TextAwaitingState = "Awaiting system state..."
	TextMinting       = "MINTING IN PROGRESS..."
	TextSyncing       = "Syncing with blockchain..."
)

// Estimate derives the countdown text for the next mint event. It is a
// pure function of its inputs; the caller re-invokes it on its own clock.
// state may be nil (no trigger document yet); haveBlock reports whether
// latestBlock holds a real observation.
func Estimate(state *trigger.State, latestBlock uint64, haveBlock bool, now time.Time) string {
	if state == nil {
		return TextAwaitingState
	}

	if state.NextNFTID <= phase1TotalNFTs {
		intervalHours := phase1ConstantA * math.Pow(float64(state.NextNFTID), phase1ExponentAlpha)
		intervalMillis := int64(intervalHours * 3600 * 1000)
		targetMillis := state.LastMintTimestampMillis + intervalMillis
		remaining := time.Duration(targetMillis-now.UnixMilli()) * time.Millisecond
		if remaining <= 0 {
			return TextMinting
		}
		hours := int64(remaining / time.Hour)
		minutes := int64(remaining % time.Hour / time.Minute)
		seconds := int64(remaining % time.Minute / time.Second)
		return fmt.Sprintf("Time remaining: %dh %dm %ds", hours, minutes, seconds)
	}

	if !haveBlock {
		return TextSyncing
	}
	blocksProcessed := int64(latestBlock) - int64(state.LastMintBlock)
	blocksRemaining := int64(phase2BlockInterval) - blocksProcessed
	if blocksRemaining <= 0 {
		return TextMinting
	}
	return fmt.Sprintf("%d blocks remaining for next Pulse...", blocksRemaining)
}

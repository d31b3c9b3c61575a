package schedule

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"pulse-backend/trigger"
)

// TriggerSource supplies trigger-state snapshots.
type TriggerSource interface {
	Get(ctx context.Context) (*trigger.State, error)
}

// BlockSource supplies the latest observed block number.
type BlockSource interface {
	LatestBlock() (uint64, bool)
}

// Ticker recomputes the countdown text on a fixed interval and publishes
// changes through the onChange callback. The estimator itself holds no
// timers; this is the single place that drives it.
type Ticker struct {
	triggers TriggerSource
	blocks   BlockSource
	interval time.Duration
	log      *zap.Logger
	onChange func(string)

	mu      sync.RWMutex
	current string
}

// NewTicker creates a countdown ticker. onChange may be nil.
func NewTicker(triggers TriggerSource, blocks BlockSource, interval time.Duration, log *zap.Logger, onChange func(string)) *Ticker {
	return &Ticker{
		triggers: triggers,
		blocks:   blocks,
		interval: interval,
		log:      log,
		onChange: onChange,
		current:  TextAwaitingState,
	}
}

// Current returns the last computed countdown text.
func (t *Ticker) Current() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Run recomputes until ctx is cancelled.
func (t *Ticker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

func (t *Ticker) tick(ctx context.Context) {
	state, err := t.triggers.Get(ctx)
	if err != nil {
		if ctx.Err() == nil {
			t.log.Warn("trigger state read failed", zap.Error(err))
		}
		// Keep the previous text; a read blip should not flap the display.
		return
	}
	latest, have := t.blocks.LatestBlock()
	text := Estimate(state, latest, have, time.Now())

	t.mu.Lock()
	changed := text != t.current
	t.current = text
	t.mu.Unlock()

	if changed && t.onChange != nil {
		t.onChange(text)
	}
}

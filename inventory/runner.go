package inventory

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Runner drives periodic synchronization passes and publishes their
// snapshots into the cell. A Kick schedules an immediate extra pass, used
// after a confirmed purchase. Passes are tagged with a monotonically
// increasing sequence number taken at pass start; the cell discards
// out-of-order completions.
type Runner struct {
	reader   *Reader
	cell     *Cell
	interval time.Duration
	log      *zap.Logger

	seq  atomic.Uint64
	kick chan struct{}
}

// NewRunner creates a runner publishing into cell every interval.
func NewRunner(reader *Reader, cell *Cell, interval time.Duration, log *zap.Logger) *Runner {
	return &Runner{
		reader:   reader,
		cell:     cell,
		interval: interval,
		log:      log,
		kick:     make(chan struct{}, 1),
	}
}

// Kick requests an immediate re-synchronization. Non-blocking; multiple
// kicks before the next pass coalesce into one.
func (r *Runner) Kick() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

// Run executes passes until ctx is cancelled. The first pass starts
// immediately.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.pass(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.pass(ctx)
		case <-r.kick:
			r.pass(ctx)
		}
	}
}

func (r *Runner) pass(ctx context.Context) {
	seq := r.seq.Add(1)
	snap, err := r.reader.Synchronize(ctx, seq)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		// Pass-level failure: keep the last good snapshot in place rather
		// than publishing an empty one.
		r.log.Error("synchronization pass failed", zap.Uint64("seq", seq), zap.Error(err))
		return
	}
	if !r.cell.Publish(snap) {
		r.log.Warn("discarded superseded pass", zap.Uint64("seq", seq))
		return
	}
	r.log.Info("inventory synchronized",
		zap.Uint64("seq", seq),
		zap.Int("items", len(snap.Items)),
		zap.String("note", snap.Note.String()),
		zap.Duration("took", snap.Took))
}

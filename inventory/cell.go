package inventory

import (
	"sync"
)

// Cell is the single-writer holder of the published inventory snapshot.
// Readers receive immutable snapshots; the sequence-number guard discards
// completions of superseded in-flight passes so a stale pass can never
// overwrite a later one.
type Cell struct {
	mu   sync.RWMutex
	snap *Snapshot
	subs map[int]chan *Snapshot
	next int
}

// NewCell creates an empty cell.
func NewCell() *Cell {
	return &Cell{subs: make(map[int]chan *Snapshot)}
}

// Publish installs snap as the current snapshot unless a snapshot with an
// equal or higher sequence number has already been published. Returns
// whether the snapshot was accepted.
func (c *Cell) Publish(snap *Snapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap != nil && snap.Seq <= c.snap.Seq {
		return false
	}
	c.snap = snap
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			// Slow subscriber: drop; it will catch up via Current.
		}
	}
	return true
}

// Current returns the latest published snapshot, or nil before the first
// pass completes.
func (c *Cell) Current() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Subscribe returns a channel receiving every accepted snapshot and a
// cancel function that releases the subscription and closes the channel.
func (c *Cell) Subscribe() (<-chan *Snapshot, func()) {
	ch := make(chan *Snapshot, 4)
	c.mu.Lock()
	id := c.next
	c.next++
	c.subs[id] = ch
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(ch)
		}
	}
}

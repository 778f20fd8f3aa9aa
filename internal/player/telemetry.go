package player

import (
	"sync"
	"time"
)

// DropRecord is one late-drop occurrence. Drops are expected degradation,
// not errors, but they are never silent.
type DropRecord struct {
	At       time.Time     `json:"at"`
	Tick     int           `json:"tick"`
	Pitch    int           `json:"pitch"`
	Lateness time.Duration `json:"lateness"`
	Core     bool          `json:"core"`
}

// Telemetry accumulates scheduler degradation events. Safe for concurrent
// reads while the session loop writes.
type Telemetry struct {
	mu               sync.Mutex
	droppedOrnaments int
	droppedCore      int
	dispatched       int
	drops            []DropRecord

	// OnDrop, when set before playback, is invoked from the loop goroutine
	// for every drop. Keep it fast.
	OnDrop func(DropRecord)
}

func (t *Telemetry) recordDispatch() {
	t.mu.Lock()
	t.dispatched++
	t.mu.Unlock()
}

func (t *Telemetry) recordDrop(rec DropRecord) {
	t.mu.Lock()
	if rec.Core {
		t.droppedCore++
	} else {
		t.droppedOrnaments++
	}
	t.drops = append(t.drops, rec)
	cb := t.OnDrop
	t.mu.Unlock()
	if cb != nil {
		cb(rec)
	}
}

// Counts returns (dispatched, dropped ornaments, dropped core hits).
func (t *Telemetry) Counts() (dispatched, ornaments, core int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dispatched, t.droppedOrnaments, t.droppedCore
}

// Drops returns a copy of the drop log.
func (t *Telemetry) Drops() []DropRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]DropRecord, len(t.drops))
	copy(out, t.drops)
	return out
}

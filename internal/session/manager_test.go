package session

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/engine"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/note"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/style"
)

func testManager(t *testing.T, collision CollisionPolicy) *Manager {
	t.Helper()
	return NewManager(engine.New(style.Builtin()), Config{
		Root:          t.TempDir(),
		Collision:     collision,
		EngineVersion: "test",
	})
}

func testSubmission(attemptID string) engine.Request {
	return engine.Request{
		Chords:       []string{"Dm7", "G7", "Cmaj7"},
		StyleID:      "swing_basic",
		TempoBPM:     120,
		Meter:        note.Meter{Numerator: 4, Denominator: 4},
		BarsPerChord: 1,
		AttemptID:    attemptID,
	}
}

func TestSubmitProducesBundle(t *testing.T) {
	m := testManager(t, CollisionError)

	bundle, err := m.Submit(context.Background(), "s1", testSubmission("a1"))
	require.NoError(t, err)
	assert.Equal(t, StatusOK, bundle.Status)
	assert.NotEmpty(t, bundle.ClipID)
	assert.NotEmpty(t, bundle.CoachHint)
	assert.Positive(t, bundle.EventCount)

	for _, name := range []string{CombinedFileName, "comp.mid", "bass.mid", TagsFileName, ProvenanceFileName, CoachFileName} {
		_, err := os.Stat(filepath.Join(bundle.Dir, name))
		assert.NoError(t, err, "missing %s", name)
	}

	// no staging residue next to the bundle
	siblings, err := os.ReadDir(filepath.Dir(bundle.Dir))
	require.NoError(t, err)
	for _, entry := range siblings {
		assert.NotContains(t, entry.Name(), ".staging-")
	}
}

func TestSubmitIdempotent(t *testing.T) {
	m := testManager(t, CollisionError)
	ctx := context.Background()

	first, err := m.Submit(ctx, "s1", testSubmission("a1"))
	require.NoError(t, err)
	second, err := m.Submit(ctx, "s1", testSubmission("a1"))
	require.NoError(t, err)

	assert.Equal(t, first.ClipID, second.ClipID)
	assert.Same(t, first, second)

	entries, err := m.Entries("s1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSubmitRacingSameAttempt(t *testing.T) {
	m := testManager(t, CollisionError)
	ctx := context.Background()

	const workers = 8
	bundles := make([]*ClipBundle, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bundles[i], errs[i] = m.Submit(ctx, "s1", testSubmission("a1"))
		}(i)
	}
	wg.Wait()

	for i, b := range bundles {
		require.NoError(t, errs[i])
		assert.Equal(t, bundles[0].ClipID, b.ClipID)
	}
	entries, err := m.Entries("s1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSubmitFailureIsNotRecorded(t *testing.T) {
	m := testManager(t, CollisionError)
	ctx := context.Background()

	bad := testSubmission("a1")
	bad.StyleID = "free_jazz"
	bundle, err := m.Submit(ctx, "s1", bad)
	require.Error(t, err)
	assert.Equal(t, StatusFailed, bundle.Status)
	assert.Equal(t, CodeUnknownStyle, bundle.ErrorCode)
	assert.Empty(t, bundle.ClipID)

	// the attempt id is still free, so a corrected retry succeeds
	good, err := m.Submit(ctx, "s1", testSubmission("a1"))
	require.NoError(t, err)
	assert.Equal(t, StatusOK, good.Status)
}

func TestSubmitErrorCodes(t *testing.T) {
	m := testManager(t, CollisionError)
	ctx := context.Background()

	empty := testSubmission("a1")
	empty.Chords = nil
	bundle, err := m.Submit(ctx, "s1", empty)
	require.Error(t, err)
	assert.Equal(t, CodeEmptyProgression, bundle.ErrorCode)

	unparsable := testSubmission("a2")
	unparsable.Chords = []string{"H7"}
	bundle, err = m.Submit(ctx, "s1", unparsable)
	require.Error(t, err)
	assert.Equal(t, CodeChordParse, bundle.ErrorCode)

	badMode := testSubmission("a3")
	badMode.Reharm = engine.ReharmSpec{Mode: "backwards", Strength: 1}
	bundle, err = m.Submit(ctx, "s1", badMode)
	require.Error(t, err)
	assert.Equal(t, CodeUnknownReharm, bundle.ErrorCode)

	missing := testSubmission("")
	bundle, err = m.Submit(ctx, "s1", missing)
	require.Error(t, err)
	assert.Equal(t, CodeInternal, bundle.ErrorCode)
}

func TestCollisionPolicies(t *testing.T) {
	root := t.TempDir()
	eng := engine.New(style.Builtin())
	ctx := context.Background()

	first := NewManager(eng, Config{Root: root, Collision: CollisionError})
	bundle, err := first.Submit(ctx, "s1", testSubmission("a1"))
	require.NoError(t, err)

	// a fresh manager over the same root has no attempt table, so the same
	// attempt id maps to the same clip id and collides on disk
	second := NewManager(eng, Config{Root: root, Collision: CollisionError})
	collided, err := second.Submit(ctx, "s1", testSubmission("a1"))
	require.Error(t, err)
	assert.Equal(t, StatusFailed, collided.Status)
	assert.Equal(t, CodeBundleExists, collided.ErrorCode)
	assert.Equal(t, bundle.ClipID, collided.ClipID)

	skipper := NewManager(eng, Config{Root: root, Collision: CollisionSkip})
	skipped, err := skipper.Submit(ctx, "s1", testSubmission("a1"))
	require.NoError(t, err)
	assert.Equal(t, StatusOK, skipped.Status)
	assert.Equal(t, bundle.ClipID, skipped.ClipID)

	overwriter := NewManager(eng, Config{Root: root, Collision: CollisionOverwrite})
	replaced, err := overwriter.Submit(ctx, "s1", testSubmission("a1"))
	require.NoError(t, err)
	assert.Equal(t, StatusOK, replaced.Status)
	assert.Equal(t, bundle.ClipID, replaced.ClipID)
}

func TestIndexTimestampsMonotonic(t *testing.T) {
	m := testManager(t, CollisionError)
	ctx := context.Background()

	// a clock that jumps backwards between calls
	times := []time.Time{
		time.Date(2026, 3, 1, 12, 0, 10, 0, time.UTC),
		time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC), // regression
		time.Date(2026, 3, 1, 12, 0, 20, 0, time.UTC),
	}
	calls := 0
	m.clock = func() time.Time {
		t := times[calls%len(times)]
		calls++
		return t
	}

	for _, attempt := range []string{"a1", "a2", "a3", "a4"} {
		_, err := m.Submit(ctx, "s1", testSubmission(attempt))
		require.NoError(t, err)
	}

	entries, err := m.Entries("s1")
	require.NoError(t, err)
	require.Len(t, entries, 4)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].Timestamp.Before(entries[i-1].Timestamp),
			"entry %d timestamp went backwards", i)
	}
}

func TestRecordVerdict(t *testing.T) {
	m := testManager(t, CollisionError)
	ctx := context.Background()

	bundle, err := m.Submit(ctx, "s1", testSubmission("a1"))
	require.NoError(t, err)

	adj, hint, err := m.RecordVerdict(ctx, "s1", bundle.ClipID, VerdictPass, 90)
	require.NoError(t, err)
	assert.Equal(t, 4, adj.TempoDelta)
	assert.Equal(t, 1, adj.DensityDelta) // high score, density starts at medium
	assert.NotEmpty(t, hint)

	d := m.CurrentDifficulty("s1")
	assert.Equal(t, 124, d.TempoBPM) // request tempo 120 + 4
	assert.Equal(t, 2, d.Density)
	assert.Equal(t, "challenge", m.SuggestedPreset("s1"))

	entries, err := m.Entries("s1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, VerdictPass, entries[1].Verdict)
	assert.Equal(t, adj, entries[1].Adjustment)
}

func TestRecordVerdictTrend(t *testing.T) {
	m := testManager(t, CollisionError)
	ctx := context.Background()

	bundle, err := m.Submit(ctx, "s1", testSubmission("a1"))
	require.NoError(t, err)

	// rising scores; the third verdict sees an up trend at a high score
	for _, score := range []int{70, 80} {
		_, _, err := m.RecordVerdict(ctx, "s1", bundle.ClipID, VerdictPass, score)
		require.NoError(t, err)
	}
	adj, _, err := m.RecordVerdict(ctx, "s1", bundle.ClipID, VerdictPass, 90)
	require.NoError(t, err)
	assert.Equal(t, 1, adj.SyncopationDelta)
}

func TestRecordVerdictRejectsUnknownClip(t *testing.T) {
	m := testManager(t, CollisionError)
	ctx := context.Background()

	_, err := m.Submit(ctx, "s1", testSubmission("a1"))
	require.NoError(t, err)

	_, _, err = m.RecordVerdict(ctx, "s1", "no-such-clip", VerdictPass, 80)
	assert.ErrorIs(t, err, ErrUnknownClip)
}

func TestRecordVerdictRejectsInvalidVerdict(t *testing.T) {
	m := testManager(t, CollisionError)
	ctx := context.Background()

	bundle, err := m.Submit(ctx, "s1", testSubmission("a1"))
	require.NoError(t, err)

	_, _, err = m.RecordVerdict(ctx, "s1", bundle.ClipID, Verdict("meh"), 80)
	assert.ErrorIs(t, err, ErrInvalidVerdict)
}

func TestSessionsAreIsolated(t *testing.T) {
	m := testManager(t, CollisionError)
	ctx := context.Background()

	one, err := m.Submit(ctx, "s1", testSubmission("a1"))
	require.NoError(t, err)
	two, err := m.Submit(ctx, "s2", testSubmission("a1"))
	require.NoError(t, err)

	// the same attempt id in different sessions yields different clips
	assert.NotEqual(t, one.ClipID, two.ClipID)

	entries, err := m.Entries("s1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

// Package session wraps generation with exactly-once semantics: attempt
// deduplication, atomic artifact bundles, an append-only session index,
// and deterministic difficulty adaptation.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/engine"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/logger"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/midifile"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/note"
)

// Archive mirrors clips and verdicts into long-term storage. Optional and
// best-effort: the deterministic core never reads it back.
type Archive interface {
	SaveClip(ctx context.Context, clip ArchiveClip) error
	SaveVerdict(ctx context.Context, verdict ArchiveVerdict) error
}

// ArchiveClip is the storage projection of a generated clip.
type ArchiveClip struct {
	SessionID string
	ClipID    string
	AttemptID string
	Chords    []string
	StyleID   string
	TempoBPM  int
	Seed      int64
	Status    string
}

// ArchiveVerdict is the storage projection of a recorded verdict.
type ArchiveVerdict struct {
	SessionID  string
	ClipID     string
	Verdict    string
	Score      int
	CoachHint  string
	Adjustment Adjustment
}

// Config tunes the manager.
type Config struct {
	Root          string
	Collision     CollisionPolicy
	Timeout       time.Duration
	EngineVersion string
}

const (
	DefaultTimeout  = 10 * time.Second
	trendWindowSize = 3
	defaultDensity  = 1
)

// Manager owns the per-session idempotency tables and indexes. All
// mutations within one session serialize through that session's lock, so
// two racing submissions with the same attempt id cannot both win.
type Manager struct {
	engine  *engine.Engine
	cfg     Config
	clock   func() time.Time
	archive Archive

	mu       sync.Mutex
	sessions map[string]*sessionState
}

type sessionState struct {
	mu         sync.Mutex
	id         string
	attempts   map[string]*ClipBundle
	clips      map[string]bool
	index      *Index
	last       time.Time
	difficulty Difficulty
	scores     []int
	lastScore  int
}

// NewManager builds a manager over an engine and a bundle root directory.
func NewManager(eng *engine.Engine, cfg Config) *Manager {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Collision == "" {
		cfg.Collision = CollisionError
	}
	return &Manager{
		engine:   eng,
		cfg:      cfg,
		clock:    time.Now,
		sessions: make(map[string]*sessionState),
	}
}

// SetArchive attaches the optional storage mirror.
func (m *Manager) SetArchive(a Archive) {
	m.archive = a
}

func (m *Manager) session(id string) *sessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[id]
	if !ok {
		st = &sessionState{
			id:       id,
			attempts: make(map[string]*ClipBundle),
			clips:    make(map[string]bool),
			index:    NewIndex(filepath.Join(m.cfg.Root, id, IndexFileName)),
		}
		m.sessions[id] = st
	}
	return st
}

// stamp returns a non-decreasing timestamp for the session index.
func (st *sessionState) stamp(clock func() time.Time) time.Time {
	now := clock()
	if now.Before(st.last) {
		now = st.last
	}
	st.last = now
	return now
}

// clipIDFor derives the stable clip id for an attempt. The same attempt id
// always maps to the same clip id, across retries and process restarts.
func clipIDFor(sessionID, attemptID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(sessionID+"/"+attemptID)).String()
}

type genResult struct {
	events []note.Event
	err    error
}

// Submit runs one generation attempt with idempotency. A repeated attempt
// id returns the previously produced bundle unchanged; failures are
// reported with a stable error code and never consume a clip id.
func (m *Manager) Submit(ctx context.Context, sessionID string, req engine.Request) (*ClipBundle, error) {
	if req.AttemptID == "" {
		return &ClipBundle{Status: StatusFailed, ErrorCode: CodeInternal},
			fmt.Errorf("attempt id is required")
	}

	st := m.session(sessionID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if existing, ok := st.attempts[req.AttemptID]; ok {
		return existing, nil
	}

	if st.difficulty.TempoBPM == 0 {
		st.difficulty = Difficulty{TempoBPM: req.TempoBPM, Density: defaultDensity}
	}

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	resultCh := make(chan genResult, 1)
	go func() {
		events, err := m.engine.Generate(req)
		resultCh <- genResult{events: events, err: err}
	}()

	var events []note.Event
	select {
	case <-ctx.Done():
		return &ClipBundle{AttemptID: req.AttemptID, Status: StatusFailed, ErrorCode: CodeTimeout},
			fmt.Errorf("generation attempt %s: %w", req.AttemptID, ctx.Err())
	case res := <-resultCh:
		if res.err != nil {
			return &ClipBundle{AttemptID: req.AttemptID, Status: StatusFailed, ErrorCode: errorCode(res.err)}, res.err
		}
		events = res.events
	}

	program := req.Program()
	combined, err := midifile.Encode(program, events, program.TrackOrder)
	if err != nil {
		return &ClipBundle{AttemptID: req.AttemptID, Status: StatusFailed, ErrorCode: errorCode(err)}, err
	}
	parts := make(map[note.TrackID][]byte, len(program.TrackOrder))
	for _, track := range program.TrackOrder {
		var trackEvents []note.Event
		for _, ev := range events {
			if ev.Track == track {
				trackEvents = append(trackEvents, ev)
			}
		}
		part, err := midifile.Encode(program, trackEvents, []note.TrackID{track})
		if err != nil {
			return &ClipBundle{AttemptID: req.AttemptID, Status: StatusFailed, ErrorCode: errorCode(err)}, err
		}
		parts[track] = part
	}

	clipID := clipIDFor(sessionID, req.AttemptID)
	dir := filepath.Join(m.cfg.Root, sessionID, clipID)

	if _, statErr := os.Stat(dir); statErr == nil {
		switch m.cfg.Collision {
		case CollisionSkip:
			bundle := &ClipBundle{
				ClipID:     clipID,
				AttemptID:  req.AttemptID,
				Status:     StatusOK,
				Dir:        dir,
				CoachHint:  m.hintLocked(st),
				EventCount: len(events),
			}
			st.attempts[req.AttemptID] = bundle
			st.clips[clipID] = true
			return bundle, nil
		case CollisionOverwrite:
			if err := os.RemoveAll(dir); err != nil {
				return &ClipBundle{AttemptID: req.AttemptID, Status: StatusFailed, ErrorCode: CodeBundleWrite},
					fmt.Errorf("removing colliding bundle: %w", err)
			}
		default:
			return &ClipBundle{ClipID: clipID, AttemptID: req.AttemptID, Status: StatusFailed, ErrorCode: CodeBundleExists},
				fmt.Errorf("bundle %s already exists", dir)
		}
	}

	hint := m.hintLocked(st)
	created := m.clock()
	files := bundleFiles{
		combined: combined,
		parts:    parts,
		tags: Tags{
			ClipID:    clipID,
			CreatedAt: created,
			Chords:    req.Chords,
			TempoBPM:  req.TempoBPM,
			Meter:     req.Meter,
		},
		provenance: Provenance{
			ClipID:        clipID,
			AttemptID:     req.AttemptID,
			Seed:          req.Reharm.Seed,
			EngineVersion: m.cfg.EngineVersion,
			Status:        StatusOK,
		},
		coachHint: hint,
	}
	if err := writeBundle(dir, files); err != nil {
		return &ClipBundle{AttemptID: req.AttemptID, Status: StatusFailed, ErrorCode: CodeBundleWrite}, err
	}

	bundle := &ClipBundle{
		ClipID:     clipID,
		AttemptID:  req.AttemptID,
		Status:     StatusOK,
		Dir:        dir,
		CoachHint:  hint,
		EventCount: len(events),
	}

	if err := st.index.Append(IndexEntry{
		ClipID:    clipID,
		Timestamp: st.stamp(m.clock),
		Verdict:   VerdictNull,
		CoachHint: hint,
	}); err != nil {
		// the bundle is on disk; surface the index failure, keep no mapping
		return &ClipBundle{ClipID: clipID, AttemptID: req.AttemptID, Status: StatusFailed, ErrorCode: CodeBundleWrite}, err
	}

	if m.archive != nil {
		if err := m.archive.SaveClip(ctx, ArchiveClip{
			SessionID: sessionID,
			ClipID:    clipID,
			AttemptID: req.AttemptID,
			Chords:    req.Chords,
			StyleID:   req.StyleID,
			TempoBPM:  req.TempoBPM,
			Seed:      req.Reharm.Seed,
			Status:    StatusOK,
		}); err != nil {
			logger.Warn("clip archive mirror failed", logger.Fields{
				"clip_id": clipID,
				"error":   err.Error(),
			})
			bundle.Status = StatusPartial
		}
	}

	st.attempts[req.AttemptID] = bundle
	st.clips[clipID] = true
	return bundle, nil
}

// hintLocked computes the current coach hint from the session's band and
// trend. Callers hold the session lock.
func (m *Manager) hintLocked(st *sessionState) string {
	return CoachHint(ScoreBand(st.lastScoreOrDefault()), TrendBucket(st.scores))
}

func (st *sessionState) lastScoreOrDefault() int {
	if len(st.scores) == 0 {
		return 70 // solid band until the first verdict arrives
	}
	return st.lastScore
}

// Verdict recording failures.
var (
	ErrUnknownClip    = errors.New("unknown clip")
	ErrInvalidVerdict = errors.New("invalid verdict")
)

// RecordVerdict applies a practice verdict: a deterministic bounded
// difficulty step plus the matrix coach hint, appended to the index.
func (m *Manager) RecordVerdict(ctx context.Context, sessionID, clipID string, verdict Verdict, score int) (Adjustment, string, error) {
	if verdict != VerdictPass && verdict != VerdictStruggle {
		return Adjustment{}, "", fmt.Errorf("%w: must be %q or %q", ErrInvalidVerdict, VerdictPass, VerdictStruggle)
	}

	st := m.session(sessionID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.clips[clipID] {
		return Adjustment{}, "", fmt.Errorf("%w: %s", ErrUnknownClip, clipID)
	}

	window := append(append([]int{}, st.scores...), score)
	if len(window) > trendWindowSize {
		window = window[len(window)-trendWindowSize:]
	}
	trend := TrendBucket(window)
	adj := Adjust(st.difficulty, verdict, score, trend)
	hint := CoachHint(ScoreBand(score), trend)

	if err := st.index.Append(IndexEntry{
		ClipID:     clipID,
		Timestamp:  st.stamp(m.clock),
		Verdict:    verdict,
		CoachHint:  hint,
		Adjustment: adj,
	}); err != nil {
		return Adjustment{}, "", err
	}

	st.difficulty = Apply(st.difficulty, adj)
	st.scores = window
	st.lastScore = score

	if m.archive != nil {
		if err := m.archive.SaveVerdict(ctx, ArchiveVerdict{
			SessionID:  sessionID,
			ClipID:     clipID,
			Verdict:    string(verdict),
			Score:      score,
			CoachHint:  hint,
			Adjustment: adj,
		}); err != nil {
			logger.Warn("verdict archive mirror failed", logger.Fields{
				"clip_id": clipID,
				"error":   err.Error(),
			})
		}
	}

	return adj, hint, nil
}

// Entries returns the session index, oldest first.
func (m *Manager) Entries(sessionID string) ([]IndexEntry, error) {
	st := m.session(sessionID)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.index.Entries()
}

// SuggestedPreset returns the playback preset for the session's next
// attempt, derived from the rolling score window.
func (m *Manager) SuggestedPreset(sessionID string) string {
	st := m.session(sessionID)
	st.mu.Lock()
	defer st.mu.Unlock()
	return SuggestPreset(st.scores)
}

// CurrentDifficulty exposes the adaptive state for the response surface.
func (m *Manager) CurrentDifficulty(sessionID string) Difficulty {
	st := m.session(sessionID)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.difficulty
}

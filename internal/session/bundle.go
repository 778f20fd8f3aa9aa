package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/note"
)

// Bundle statuses.
const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// CollisionPolicy decides what happens when a clip's bundle directory
// already exists on disk.
type CollisionPolicy string

const (
	CollisionError     CollisionPolicy = "error" // conservative default
	CollisionSkip      CollisionPolicy = "skip"
	CollisionOverwrite CollisionPolicy = "overwrite"
)

// ParseCollisionPolicy validates a configured policy name.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch CollisionPolicy(s) {
	case CollisionError, CollisionSkip, CollisionOverwrite:
		return CollisionPolicy(s), nil
	case "":
		return CollisionError, nil
	default:
		return "", fmt.Errorf("unknown collision policy %q", s)
	}
}

// ClipBundle is the artifact set produced for one generation attempt.
// Re-submitting the same attempt id returns the same bundle.
type ClipBundle struct {
	ClipID     string `json:"clip_id"`
	AttemptID  string `json:"attempt_id"`
	Status     string `json:"status"`
	Dir        string `json:"dir,omitempty"`
	CoachHint  string `json:"coach_hint,omitempty"`
	ErrorCode  string `json:"error_code,omitempty"`
	EventCount int    `json:"event_count,omitempty"`
}

// Tags is the per-clip metadata document.
type Tags struct {
	ClipID    string     `json:"clip_id"`
	CreatedAt time.Time  `json:"created_at"`
	Chords    []string   `json:"chords"`
	TempoBPM  int        `json:"tempo_bpm"`
	Meter     note.Meter `json:"meter"`
}

// Provenance is the per-clip run-log document.
type Provenance struct {
	ClipID        string `json:"clip_id"`
	AttemptID     string `json:"attempt_id"`
	Seed          int64  `json:"seed"`
	EngineVersion string `json:"engine_version"`
	Status        string `json:"status"`
}

// Bundle file names.
const (
	CombinedFileName   = "combined.mid"
	TagsFileName       = "tags.json"
	ProvenanceFileName = "provenance.json"
	CoachFileName      = "coach.txt"
)

// PartFileName names a per-part sequence file.
func PartFileName(t note.TrackID) string {
	return t.Name() + ".mid"
}

// bundleFiles is everything written into a clip directory.
type bundleFiles struct {
	combined   []byte
	parts      map[note.TrackID][]byte
	tags       Tags
	provenance Provenance
	coachHint  string
}

// writeBundle persists a bundle atomically: everything lands in a staging
// directory which is renamed into place, so a partial bundle is never
// visible under the final clip id.
func writeBundle(dir string, files bundleFiles) error {
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	staging, err := os.MkdirTemp(parent, ".staging-")
	if err != nil {
		return fmt.Errorf("creating staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := os.WriteFile(filepath.Join(staging, CombinedFileName), files.combined, 0o644); err != nil {
		return fmt.Errorf("writing combined sequence: %w", err)
	}
	for track, data := range files.parts {
		if err := os.WriteFile(filepath.Join(staging, PartFileName(track)), data, 0o644); err != nil {
			return fmt.Errorf("writing %s part: %w", track.Name(), err)
		}
	}
	if err := writeJSON(filepath.Join(staging, TagsFileName), files.tags); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(staging, ProvenanceFileName), files.provenance); err != nil {
		return err
	}
	// the coach document is always written, even when enhancement fails
	if err := os.WriteFile(filepath.Join(staging, CoachFileName), []byte(files.coachHint+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing coach hint: %w", err)
	}

	if err := os.Rename(staging, dir); err != nil {
		return fmt.Errorf("publishing bundle: %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

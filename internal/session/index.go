package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// IndexEntry is one line of the append-only session index. Entries are
// never mutated or reordered after write, and timestamps never decrease
// within a session.
type IndexEntry struct {
	ClipID     string     `json:"clip_id"`
	Timestamp  time.Time  `json:"timestamp"`
	Verdict    Verdict    `json:"verdict,omitempty"`
	CoachHint  string     `json:"coach_hint"`
	Adjustment Adjustment `json:"adjustment"`
}

// IndexFileName is the session index document inside the session root.
const IndexFileName = "session_index.jsonl"

// Index appends entries to the session's JSONL index document.
type Index struct {
	path string
}

// NewIndex points an index at its backing file.
func NewIndex(path string) *Index {
	return &Index{path: path}
}

// Append writes one entry. Each append is flushed before returning so a
// crash never loses acknowledged entries.
func (ix *Index) Append(entry IndexEntry) error {
	f, err := os.OpenFile(ix.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening session index: %w", err)
	}
	defer f.Close()

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding index entry: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("appending index entry: %w", err)
	}
	return f.Sync()
}

// Entries reads the full index back, oldest first.
func (ix *Index) Entries() ([]IndexEntry, error) {
	f, err := os.Open(ix.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening session index: %w", err)
	}
	defer f.Close()

	var entries []IndexEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry IndexEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf("decoding index entry %d: %w", len(entries), err)
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}

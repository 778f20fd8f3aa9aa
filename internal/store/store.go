// Package store mirrors clips and verdicts into Postgres. The mirror is
// best-effort history: the filesystem bundles remain the source of truth
// and nothing in generation reads the database back.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/session"
)

// Clip is one generated clip bundle
type Clip struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	SessionID string         `gorm:"not null;index" json:"session_id"`
	ClipID    string         `gorm:"uniqueIndex;not null" json:"clip_id"`
	AttemptID string         `gorm:"not null" json:"attempt_id"`
	Chords    string         `gorm:"not null" json:"chords"` // space-joined progression
	StyleID   string         `gorm:"not null" json:"style_id"`
	TempoBPM  int            `gorm:"not null" json:"tempo_bpm"`
	Seed      int64          `json:"seed"`
	Status    string         `gorm:"not null" json:"status"`
}

// Verdict is one recorded practice outcome for a clip
type Verdict struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	SessionID        string    `gorm:"not null;index" json:"session_id"`
	ClipID           string    `gorm:"not null;index" json:"clip_id"`
	Verdict          string    `gorm:"not null" json:"verdict"`
	Score            int       `gorm:"not null" json:"score"`
	CoachHint        string    `json:"coach_hint"`
	TempoDelta       int       `json:"tempo_delta"`
	DensityDelta     int       `json:"density_delta"`
	SyncopationDelta int       `json:"syncopation_delta"`
}

// Store implements the session archive on top of gorm
type Store struct {
	db *gorm.DB
}

// Connect opens the Postgres connection and runs migrations
func Connect(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := db.AutoMigrate(&Clip{}, &Verdict{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// SaveClip records a generated clip
func (s *Store) SaveClip(ctx context.Context, clip session.ArchiveClip) error {
	row := Clip{
		SessionID: clip.SessionID,
		ClipID:    clip.ClipID,
		AttemptID: clip.AttemptID,
		Chords:    strings.Join(clip.Chords, " "),
		StyleID:   clip.StyleID,
		TempoBPM:  clip.TempoBPM,
		Seed:      clip.Seed,
		Status:    clip.Status,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// SaveVerdict records a practice verdict
func (s *Store) SaveVerdict(ctx context.Context, v session.ArchiveVerdict) error {
	row := Verdict{
		SessionID:        v.SessionID,
		ClipID:           v.ClipID,
		Verdict:          v.Verdict,
		Score:            v.Score,
		CoachHint:        v.CoachHint,
		TempoDelta:       v.Adjustment.TempoDelta,
		DensityDelta:     v.Adjustment.DensityDelta,
		SyncopationDelta: v.Adjustment.SyncopationDelta,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// SessionClips returns a session's archived clips, newest first
func (s *Store) SessionClips(ctx context.Context, sessionID string, limit int) ([]Clip, error) {
	if limit <= 0 {
		limit = 50
	}
	var clips []Clip
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&clips).Error
	return clips, err
}

// Package prefs stores per-owner merge preferences, falling back to the
// daemon configuration for owners who never saved any.
package prefs

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"dubber/internal/config"
	"dubber/internal/merge"
)

//go:embed schema.sql
var schemaSQL string

// Preferences carries everything an owner can customize.
type Preferences struct {
	OwnerID           string
	AudioDir          string
	VideoDir          string
	OutputDir         string
	Merge             merge.Config
	MaxConcurrentJobs int
}

// Validate rejects unusable preference values.
func (p Preferences) Validate() error {
	if p.OwnerID == "" {
		return errors.New("owner id is required")
	}
	if p.MaxConcurrentJobs < 1 {
		return fmt.Errorf("max concurrent jobs must be at least 1, got %d", p.MaxConcurrentJobs)
	}
	return p.Merge.Normalized().Validate()
}

// Store persists preferences on the shared sqlite database.
type Store struct {
	db       *sql.DB
	defaults Preferences
}

// New wires a preferences store onto an already-open database, typically
// the one backing the job store. Defaults come from cfg.
func New(db *sql.DB, cfg *config.Config) (*Store, error) {
	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, fmt.Errorf("apply preferences schema: %w", err)
	}
	return &Store{
		db: db,
		defaults: Preferences{
			Merge:             merge.FromDefaults(cfg.Merge).Normalized(),
			MaxConcurrentJobs: cfg.Jobs.MaxConcurrentPerOwner,
		},
	}, nil
}

// Defaults returns the configuration-derived preferences for an owner
// with no saved row.
func (s *Store) Defaults(ownerID string) Preferences {
	out := s.defaults
	out.OwnerID = ownerID
	return out
}

// Get returns the owner's saved preferences, or the defaults when the
// owner never saved any.
func (s *Store) Get(ctx context.Context, ownerID string) (Preferences, error) {
	row := s.db.QueryRowContext(ctx, `SELECT
        owner_id, audio_dir, video_dir, output_dir,
        replace_audio, keep_original, normalize_audio,
        audio_codec, video_codec, output_format,
        social_media, social_width, social_height, social_format,
        max_concurrent_jobs
    FROM user_preferences WHERE owner_id = ?`, ownerID)

	var p Preferences
	err := row.Scan(
		&p.OwnerID, &p.AudioDir, &p.VideoDir, &p.OutputDir,
		&p.Merge.ReplaceAudio, &p.Merge.KeepOriginal, &p.Merge.NormalizeAudio,
		&p.Merge.AudioCodec, &p.Merge.VideoCodec, &p.Merge.OutputFormat,
		&p.Merge.SocialMedia, &p.Merge.SocialWidth, &p.Merge.SocialHeight, &p.Merge.SocialFormat,
		&p.MaxConcurrentJobs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return s.Defaults(ownerID), nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("get preferences for %s: %w", ownerID, err)
	}
	return p, nil
}

// Set saves the owner's preferences, replacing any earlier row.
func (s *Store) Set(ctx context.Context, p Preferences) error {
	p.Merge = p.Merge.Normalized()
	if err := p.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO user_preferences (
        owner_id, audio_dir, video_dir, output_dir,
        replace_audio, keep_original, normalize_audio,
        audio_codec, video_codec, output_format,
        social_media, social_width, social_height, social_format,
        max_concurrent_jobs, updated_at
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    ON CONFLICT(owner_id) DO UPDATE SET
        audio_dir = excluded.audio_dir,
        video_dir = excluded.video_dir,
        output_dir = excluded.output_dir,
        replace_audio = excluded.replace_audio,
        keep_original = excluded.keep_original,
        normalize_audio = excluded.normalize_audio,
        audio_codec = excluded.audio_codec,
        video_codec = excluded.video_codec,
        output_format = excluded.output_format,
        social_media = excluded.social_media,
        social_width = excluded.social_width,
        social_height = excluded.social_height,
        social_format = excluded.social_format,
        max_concurrent_jobs = excluded.max_concurrent_jobs,
        updated_at = excluded.updated_at`,
		p.OwnerID, p.AudioDir, p.VideoDir, p.OutputDir,
		p.Merge.ReplaceAudio, p.Merge.KeepOriginal, p.Merge.NormalizeAudio,
		p.Merge.AudioCodec, p.Merge.VideoCodec, p.Merge.OutputFormat,
		p.Merge.SocialMedia, p.Merge.SocialWidth, p.Merge.SocialHeight, p.Merge.SocialFormat,
		p.MaxConcurrentJobs, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save preferences for %s: %w", p.OwnerID, err)
	}
	return nil
}

// Package profiles persists named overlay layouts.
package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/aimguide/internal/models"
	"github.com/playmatatu/aimguide/internal/overlay"
)

var (
	ErrNotFound    = errors.New("profile not found")
	ErrInvalidName = errors.New("invalid profile name")
)

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// ValidName reports whether name can be used as a profile key.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Repository is the storage used by the HTTP and WebSocket layers.
type Repository interface {
	List(ctx context.Context) ([]models.ProfileSummary, error)
	Get(ctx context.Context, name string) (overlay.Settings, error)
	Save(ctx context.Context, name string, s overlay.Settings) error
	Delete(ctx context.Context, name string) error
}

// Reset overwrites a profile with the default settings.
func Reset(ctx context.Context, repo Repository, name string) (overlay.Settings, error) {
	s := overlay.DefaultSettings()
	if err := repo.Save(ctx, name, s); err != nil {
		return s, err
	}
	return s, nil
}

// EnsureDefault creates the named profile with default settings if it does
// not exist yet.
func EnsureDefault(ctx context.Context, repo Repository, name string) error {
	_, err := repo.Get(ctx, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	log.Printf("[PROFILES] creating default profile %q", name)
	_, err = Reset(ctx, repo, name)
	return err
}

// Store keeps profiles in PostgreSQL.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) List(ctx context.Context) ([]models.ProfileSummary, error) {
	profiles := []models.ProfileSummary{}
	err := s.db.SelectContext(ctx, &profiles, `SELECT name, updated_at FROM overlay_profiles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

func (s *Store) Get(ctx context.Context, name string) (overlay.Settings, error) {
	var p models.OverlayProfile
	err := s.db.GetContext(ctx, &p, `SELECT id, name, settings, created_at, updated_at FROM overlay_profiles WHERE name=$1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return overlay.DefaultSettings(), ErrNotFound
	}
	if err != nil {
		return overlay.DefaultSettings(), fmt.Errorf("failed to load profile %s: %w", name, err)
	}

	settings, err := overlay.Merge(p.Settings)
	if err != nil {
		// A corrupt document should not lock the user out; fall back to defaults.
		log.Printf("[PROFILES] profile %s has unreadable settings, using defaults: %v", name, err)
	}
	return settings, nil
}

func (s *Store) Save(ctx context.Context, name string, settings overlay.Settings) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	raw, err := json.Marshal(settings.Validate())
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO overlay_profiles (name, settings, created_at, updated_at)
		VALUES ($1, $2::jsonb, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE SET
			settings = EXCLUDED.settings,
			updated_at = NOW()
	`, name, string(raw))
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", name, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM overlay_profiles WHERE name=$1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

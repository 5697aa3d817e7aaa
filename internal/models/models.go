package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// OverlayProfile is a named, persisted overlay layout. Settings holds the raw
// JSON document; decode it with overlay.Merge so missing keys get defaults.
type OverlayProfile struct {
	ID        int             `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Settings  json.RawMessage `db:"settings" json:"settings"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// ProfileSummary is the listing view of a profile.
type ProfileSummary struct {
	Name      string    `db:"name" json:"name"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AdminAccount may edit profiles.
type AdminAccount struct {
	Username    string         `db:"username" json:"username"`
	DisplayName string         `db:"display_name" json:"display_name"`
	TokenHash   string         `db:"token_hash" json:"-"`
	Roles       pq.StringArray `db:"roles" json:"roles"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// ProfileEvent is published on the overlay events channel whenever a profile
// changes, so every server instance can refresh its live sessions.
type ProfileEvent struct {
	Type    string `json:"type"`
	Profile string `json:"profile"`
	Origin  string `json:"origin,omitempty"`
}

const (
	ProfileEventUpdated = "profile_updated"
	ProfileEventDeleted = "profile_deleted"
)

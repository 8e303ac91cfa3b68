package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const narrativeCacheTTL = 24 * time.Hour

// GetNarrative returns a user's cached portfolio narrative when it is
// younger than 24 hours.
func (s *Store) GetNarrative(ctx context.Context, uid string) (string, bool) {
	if !s.Enabled() || uid == "" {
		return "", false
	}

	var analysis string
	var updatedAt time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT analysis, updated_at FROM narrative_cache WHERE uid = $1`, uid).
		Scan(&analysis, &updatedAt)
	if err != nil {
		return "", false
	}
	if time.Since(updatedAt) > narrativeCacheTTL {
		return "", false
	}
	return analysis, true
}

// PutNarrative upserts a user's portfolio narrative.
func (s *Store) PutNarrative(ctx context.Context, uid, analysis string) {
	if !s.Enabled() || uid == "" {
		return
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO narrative_cache (id, uid, analysis, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (uid)
		DO UPDATE SET analysis = EXCLUDED.analysis, updated_at = EXCLUDED.updated_at`,
		uuid.New().String(), uid, analysis, time.Now().UTC())
	if err != nil {
		s.log.Warn().Str("uid", uid).Err(err).Msg("write narrative cache")
	}
}

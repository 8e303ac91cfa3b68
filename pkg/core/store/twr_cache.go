package store

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// InputHash fingerprints a request body so a cached TWR result is only
// reused for the exact same transaction set.
func InputHash(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:])
}

// GetTWR returns a user's cached TWR payload when it was computed
// today (UTC) from the same inputs. Prices move daily, so freshness is
// calendar-day based rather than a rolling TTL.
func (s *Store) GetTWR(ctx context.Context, uid, inputHash string) (json.RawMessage, bool) {
	if !s.Enabled() || uid == "" || inputHash == "" {
		return nil, false
	}

	var raw []byte
	var storedHash string
	var updatedAt time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT payload, input_hash, updated_at FROM twr_cache WHERE uid = $1`, uid).
		Scan(&raw, &storedHash, &updatedAt)
	if err != nil {
		return nil, false
	}

	now := time.Now().UTC()
	sameDay := updatedAt.UTC().Year() == now.Year() && updatedAt.UTC().YearDay() == now.YearDay()
	if !sameDay || storedHash != inputHash {
		return nil, false
	}
	return raw, true
}

// PutTWR upserts a user's TWR payload with its input fingerprint.
func (s *Store) PutTWR(ctx context.Context, uid, inputHash string, payload interface{}) {
	if !s.Enabled() || uid == "" {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn().Str("uid", uid).Err(err).Msg("marshal twr payload")
		return
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO twr_cache (id, uid, input_hash, payload, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (uid)
		DO UPDATE SET input_hash = EXCLUDED.input_hash, payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		uuid.New().String(), uid, inputHash, raw, time.Now().UTC())
	if err != nil {
		s.log.Warn().Str("uid", uid).Err(err).Msg("write twr cache")
	}
}

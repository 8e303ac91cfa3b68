package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const stockCacheTTL = 24 * time.Hour

// GetStockPayload returns the cached payload for a ticker when it is
// younger than 24 hours. Any error is logged and treated as a miss.
func (s *Store) GetStockPayload(ctx context.Context, ticker string) (map[string]interface{}, bool) {
	if !s.Enabled() {
		return nil, false
	}

	var raw []byte
	var updatedAt time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT payload, updated_at FROM stock_cache WHERE ticker = $1`, ticker).
		Scan(&raw, &updatedAt)
	if err != nil {
		return nil, false
	}
	if time.Since(updatedAt) > stockCacheTTL {
		return nil, false
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.log.Warn().Str("ticker", ticker).Err(err).Msg("corrupt stock cache entry")
		return nil, false
	}
	return payload, true
}

// PutStockPayload upserts the payload for a ticker. Failures are
// logged, not surfaced; the response was already computed.
func (s *Store) PutStockPayload(ctx context.Context, ticker string, payload map[string]interface{}) {
	if !s.Enabled() {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn().Str("ticker", ticker).Err(err).Msg("marshal stock payload")
		return
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO stock_cache (id, ticker, payload, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ticker)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		uuid.New().String(), ticker, raw, time.Now().UTC())
	if err != nil {
		s.log.Warn().Str("ticker", ticker).Err(err).Msg("write stock cache")
	}
}

// Package postgres persists match results, avatars and try-on outcomes.
// Structured payloads (matches, measurements, settings) live in jsonb
// columns; the scalar columns carry whatever the read paths filter on.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wyoiwyget/ai-services/internal/domain"
)

// Store implements domain.MatchRepository on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database and ensures the schema exists.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Println("[DB] connected")
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS match_results (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		source_url  TEXT NOT NULL,
		payload     JSONB NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_match_results_user ON match_results (user_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS products (
		id       TEXT PRIMARY KEY,
		payload  JSONB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS price_history (
		product_id   TEXT NOT NULL,
		platform     TEXT NOT NULL,
		price        DOUBLE PRECISION NOT NULL,
		currency     TEXT NOT NULL DEFAULT 'USD',
		availability TEXT NOT NULL DEFAULT '',
		tracked_at   TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_price_history_product ON price_history (product_id, platform, tracked_at);

	CREATE TABLE IF NOT EXISTS avatars (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL,
		avatar_url   TEXT NOT NULL,
		measurements JSONB NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_avatars_user ON avatars (user_id);

	CREATE TABLE IF NOT EXISTS tryon_results (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		avatar_id  TEXT NOT NULL,
		product_id TEXT NOT NULL,
		result_url TEXT NOT NULL,
		settings   JSONB,
		status     TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tryon_results_user ON tryon_results (user_id, created_at DESC);`

	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// SaveMatchResult stores a match result. The full result rides in the
// jsonb payload so history reads return it verbatim.
func (s *Store) SaveMatchResult(ctx context.Context, result *domain.MatchResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode match result: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO match_results (id, user_id, source_url, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		result.ID, result.UserID, result.SourceURL, payload, result.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert match result: %w", err)
	}

	if result.SourceProduct != nil {
		if err := s.upsertProduct(ctx, result.SourceProduct); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) upsertProduct(ctx context.Context, product *domain.ProductRecord) error {
	id := string(product.Platform) + ":" + product.ProductID
	payload, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO products (id, payload) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload`,
		id, payload)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

// GetProductByID loads a stored product record.
func (s *Store) GetProductByID(ctx context.Context, id string) (*domain.ProductRecord, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM products WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}

	var product domain.ProductRecord
	if err := json.Unmarshal(payload, &product); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	return &product, nil
}

// GetMatchHistory returns a user's match results, newest first.
func (s *Store) GetMatchHistory(ctx context.Context, userID string, limit int) ([]*domain.MatchResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT payload FROM match_results WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query match history: %w", err)
	}
	defer rows.Close()

	var results []*domain.MatchResult
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan match result: %w", err)
		}
		var result domain.MatchResult
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, fmt.Errorf("decode match result: %w", err)
		}
		results = append(results, &result)
	}
	return results, rows.Err()
}

// GetPriceHistory returns a product's tracked prices on one platform
// since the given time, oldest first.
func (s *Store) GetPriceHistory(ctx context.Context, productID string, platform domain.Platform, since time.Time) ([]domain.PricePoint, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT price, currency, availability, tracked_at
		 FROM price_history
		 WHERE product_id = $1 AND platform = $2 AND tracked_at >= $3
		 ORDER BY tracked_at ASC`,
		productID, platform, since)
	if err != nil {
		return nil, fmt.Errorf("query price history: %w", err)
	}
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.Price, &p.Currency, &p.Availability, &p.TrackedAt); err != nil {
			return nil, fmt.Errorf("scan price point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// TrackPrice appends one observed price point for later history reads.
func (s *Store) TrackPrice(ctx context.Context, productID string, platform domain.Platform, info domain.PriceInfo) error {
	if info.Price == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO price_history (product_id, platform, price, currency, availability, tracked_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		productID, platform, *info.Price, info.Currency, info.Availability, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert price point: %w", err)
	}
	return nil
}

// SaveAvatar stores a completed avatar.
func (s *Store) SaveAvatar(ctx context.Context, avatar *domain.Avatar) error {
	measurements, err := json.Marshal(avatar.Measurements)
	if err != nil {
		return fmt.Errorf("encode measurements: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO avatars (id, user_id, avatar_url, measurements, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET avatar_url = EXCLUDED.avatar_url, measurements = EXCLUDED.measurements`,
		avatar.ID, avatar.UserID, avatar.AvatarURL, measurements, avatar.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert avatar: %w", err)
	}
	return nil
}

// GetAvatar loads one of the user's avatars. Another user's avatar id
// behaves exactly like a missing one.
func (s *Store) GetAvatar(ctx context.Context, avatarID, userID string) (*domain.Avatar, error) {
	avatar := &domain.Avatar{}
	var measurements []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, avatar_url, measurements, created_at
		 FROM avatars WHERE id = $1 AND user_id = $2`,
		avatarID, userID).
		Scan(&avatar.ID, &avatar.UserID, &avatar.AvatarURL, &measurements, &avatar.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query avatar: %w", err)
	}

	if err := json.Unmarshal(measurements, &avatar.Measurements); err != nil {
		return nil, fmt.Errorf("decode measurements: %w", err)
	}
	return avatar, nil
}

// ListAvatars returns all of a user's avatars, newest first.
func (s *Store) ListAvatars(ctx context.Context, userID string) ([]*domain.Avatar, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, avatar_url, measurements, created_at
		 FROM avatars WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query avatars: %w", err)
	}
	defer rows.Close()

	var avatars []*domain.Avatar
	for rows.Next() {
		avatar := &domain.Avatar{}
		var measurements []byte
		if err := rows.Scan(&avatar.ID, &avatar.UserID, &avatar.AvatarURL, &measurements, &avatar.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan avatar: %w", err)
		}
		if err := json.Unmarshal(measurements, &avatar.Measurements); err != nil {
			return nil, fmt.Errorf("decode measurements: %w", err)
		}
		avatars = append(avatars, avatar)
	}
	return avatars, rows.Err()
}

// DeleteAvatar removes one of the user's avatars.
func (s *Store) DeleteAvatar(ctx context.Context, avatarID, userID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM avatars WHERE id = $1 AND user_id = $2`, avatarID, userID)
	if err != nil {
		return fmt.Errorf("delete avatar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// SaveTryOnResult stores a try-on outcome.
func (s *Store) SaveTryOnResult(ctx context.Context, result *domain.TryOnResult) error {
	settings, err := json.Marshal(result.Settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO tryon_results (id, user_id, avatar_id, product_id, result_url, settings, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET result_url = EXCLUDED.result_url, status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`,
		result.ID, result.UserID, result.AvatarID, result.ProductID, result.ResultURL,
		settings, result.Status, result.CreatedAt, result.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert tryon result: %w", err)
	}
	return nil
}

// GetTryOnHistory returns a user's try-on outcomes, newest first.
func (s *Store) GetTryOnHistory(ctx context.Context, userID string, limit int) ([]*domain.TryOnResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, avatar_id, product_id, result_url, settings, status, created_at, updated_at
		 FROM tryon_results WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query tryon history: %w", err)
	}
	defer rows.Close()

	var results []*domain.TryOnResult
	for rows.Next() {
		result := &domain.TryOnResult{}
		var settings []byte
		if err := rows.Scan(&result.ID, &result.UserID, &result.AvatarID, &result.ProductID,
			&result.ResultURL, &settings, &result.Status, &result.CreatedAt, &result.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tryon result: %w", err)
		}
		if len(settings) > 0 {
			if err := json.Unmarshal(settings, &result.Settings); err != nil {
				return nil, fmt.Errorf("decode settings: %w", err)
			}
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

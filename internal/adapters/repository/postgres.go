package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/crux/internal/domain/model"
	"github.com/okian/crux/pkg/metrics"
)

// PostgresStore is the durable Store implementation on pgx. The moment
// insert and the summary merge run inside one transaction, and the merge
// is a single atomic upsert, so concurrent appends for the same event
// cannot lose updates.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// schema creates the persisted tables. Timestamps are timestamptz so
// ordering is monotonic and comparable across sessions.
const schema = `
CREATE TABLE IF NOT EXISTS moments (
	id                  UUID PRIMARY KEY,
	event_id            TEXT NOT NULL,
	subject_id          TEXT NOT NULL,
	kind                TEXT NOT NULL,
	composite           DOUBLE PRECISION NOT NULL,
	band                TEXT NOT NULL,
	leverage            DOUBLE PRECISION NOT NULL,
	pressure            DOUBLE PRECISION NOT NULL,
	fatigue             DOUBLE PRECISION NOT NULL,
	execution           DOUBLE PRECISION NOT NULL,
	bio                 DOUBLE PRECISION NOT NULL,
	situation_json      JSONB NOT NULL,
	calibration_version TEXT NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_moments_event ON moments (event_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_moments_subject ON moments (subject_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_moments_top ON moments (created_at, composite DESC);

CREATE TABLE IF NOT EXISTS event_summary (
	event_id       TEXT PRIMARY KEY,
	count          BIGINT NOT NULL,
	max_composite  DOUBLE PRECISION NOT NULL,
	mean_composite DOUBLE PRECISION NOT NULL,
	elite_count    BIGINT NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS calibration (
	component_name TEXT UNIQUE NOT NULL,
	mean           DOUBLE PRECISION NOT NULL,
	stddev         DOUBLE PRECISION NOT NULL,
	version        TEXT NOT NULL,
	calibrated_at  TIMESTAMPTZ NOT NULL
);
`

// NewPostgresStore creates a store over an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Connect builds a pgx pool, verifies connectivity and ensures the schema.
func Connect(ctx context.Context, databaseURL string, minConns, maxConns int) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if minConns > 0 {
		cfg.MinConns = int32(minConns)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the tables and indexes if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Append inserts the moment and merges the summary in one transaction.
// The upsert recomputes mean/max/count from the stored row in a single
// statement, so two racing appends serialize on the summary row instead
// of overwriting each other.
func (s *PostgresStore) Append(ctx context.Context, m model.Moment) error {
	situation, err := json.Marshal(m.Situation)
	if err != nil {
		return fmt.Errorf("marshal situation: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO moments (
			id, event_id, subject_id, kind, composite, band,
			leverage, pressure, fatigue, execution, bio,
			situation_json, calibration_version, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		m.ID, m.EventID, m.SubjectID, m.Kind, m.Composite, string(m.Band),
		m.Components.Leverage, m.Components.Pressure, m.Components.Fatigue,
		m.Components.Execution, m.Components.Bio,
		situation, m.CalibrationVersion, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert moment: %w", err)
	}

	elite := 0
	if m.Composite >= model.EliteThreshold {
		elite = 1
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO event_summary (event_id, count, max_composite, mean_composite, elite_count, updated_at)
		VALUES ($1, 1, $2, $2, $3, now())
		ON CONFLICT (event_id) DO UPDATE SET
			count          = event_summary.count + 1,
			max_composite  = GREATEST(event_summary.max_composite, EXCLUDED.max_composite),
			mean_composite = event_summary.mean_composite
				+ (EXCLUDED.mean_composite - event_summary.mean_composite) / (event_summary.count + 1),
			elite_count    = event_summary.elite_count + EXCLUDED.elite_count,
			updated_at     = now()`,
		m.EventID, m.Composite, elite,
	)
	if err != nil {
		return fmt.Errorf("merge summary: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}

	metrics.RecordMomentAppend()
	return nil
}

const momentColumns = `
	id, event_id, subject_id, kind, composite, band,
	leverage, pressure, fatigue, execution, bio,
	situation_json, calibration_version, created_at`

// Latest returns the most recent moment for an event.
func (s *PostgresStore) Latest(ctx context.Context, eventID string) (model.Moment, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+momentColumns+`
		FROM moments WHERE event_id = $1
		ORDER BY created_at DESC LIMIT 1`, eventID)
	m, err := scanMoment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Moment{}, ErrNotFound
	}
	return m, err
}

// History returns the subject's most recent moments, newest first.
func (s *PostgresStore) History(ctx context.Context, subjectID string, limit int) ([]model.Moment, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	start := time.Now()
	rows, err := s.pool.Query(ctx, `
		SELECT `+momentColumns+`
		FROM moments WHERE subject_id = $1
		ORDER BY created_at DESC LIMIT $2`, subjectID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	defer metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	return collectMoments(rows)
}

// TopMoments returns the highest-composite moments within the window.
func (s *PostgresStore) TopMoments(ctx context.Context, window time.Duration, limit int) ([]model.Moment, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	start := time.Now()
	cutoff := time.Now().UTC().Add(-window)
	rows, err := s.pool.Query(ctx, `
		SELECT `+momentColumns+`
		FROM moments WHERE created_at >= $1
		ORDER BY composite DESC, created_at DESC LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("query top moments: %w", err)
	}
	defer rows.Close()
	defer metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	return collectMoments(rows)
}

// Summary returns the incrementally maintained aggregate for an event.
func (s *PostgresStore) Summary(ctx context.Context, eventID string) (model.EventSummary, error) {
	var sum model.EventSummary
	err := s.pool.QueryRow(ctx, `
		SELECT event_id, count, max_composite, mean_composite, elite_count, updated_at
		FROM event_summary WHERE event_id = $1`, eventID).
		Scan(&sum.EventID, &sum.Count, &sum.MaxComposite, &sum.MeanComposite, &sum.EliteCount, &sum.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.EventSummary{}, ErrNotFound
	}
	if err != nil {
		return model.EventSummary{}, fmt.Errorf("query summary: %w", err)
	}
	return sum, nil
}

// RecomputeSummary rebuilds the aggregate from the moment log.
func (s *PostgresStore) RecomputeSummary(ctx context.Context, eventID string) (model.EventSummary, error) {
	var sum model.EventSummary
	err := s.pool.QueryRow(ctx, `
		SELECT $1::text, COUNT(*), COALESCE(MAX(composite), 0), COALESCE(AVG(composite), 0),
			COUNT(*) FILTER (WHERE composite >= $2), now()
		FROM moments WHERE event_id = $1`, eventID, model.EliteThreshold).
		Scan(&sum.EventID, &sum.Count, &sum.MaxComposite, &sum.MeanComposite, &sum.EliteCount, &sum.UpdatedAt)
	if err != nil {
		return model.EventSummary{}, fmt.Errorf("recompute summary: %w", err)
	}
	if sum.Count == 0 {
		return model.EventSummary{}, ErrNotFound
	}
	return sum, nil
}

// Count returns the total number of stored moments.
func (s *PostgresStore) Count(ctx context.Context) int {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM moments`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// scanMoment reads one moment row.
func scanMoment(row pgx.Row) (model.Moment, error) {
	var m model.Moment
	var band string
	var situation []byte
	err := row.Scan(
		&m.ID, &m.EventID, &m.SubjectID, &m.Kind, &m.Composite, &band,
		&m.Components.Leverage, &m.Components.Pressure, &m.Components.Fatigue,
		&m.Components.Execution, &m.Components.Bio,
		&situation, &m.CalibrationVersion, &m.CreatedAt,
	)
	if err != nil {
		return model.Moment{}, err
	}
	m.Band = model.Band(band)
	if err := json.Unmarshal(situation, &m.Situation); err != nil {
		return model.Moment{}, fmt.Errorf("unmarshal situation: %w", err)
	}
	return m, nil
}

func collectMoments(rows pgx.Rows) ([]model.Moment, error) {
	var out []model.Moment
	for rows.Next() {
		m, err := scanMoment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan moment: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moments: %w", err)
	}
	return out, nil
}

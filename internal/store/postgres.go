package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/Alloy/internal/selection"
)

const schema = `
CREATE TABLE IF NOT EXISTS steel_grades (
	id             INTEGER PRIMARY KEY,
	grade          TEXT NOT NULL DEFAULT '',
	yield_strength DOUBLE PRECISION NOT NULL,
	uts            DOUBLE PRECISION NOT NULL,
	density        DOUBLE PRECISION,
	attributes     JSONB
)`

var _ GradeStore = (*PostgresStore)(nil)

type PostgresStore struct {
	pool           *pgxpool.Pool
	defaultDensity float64
}

func NewPostgresStore(ctx context.Context, databaseURL string, defaultDensity float64) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if defaultDensity <= 0 {
		defaultDensity = selection.DefaultDensity
	}
	return &PostgresStore{pool: pool, defaultDensity: defaultDensity}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// EnsureSchema creates the steel_grades table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Load satisfies dataset.Source.
func (s *PostgresStore) Load(ctx context.Context) ([]selection.Record, error) {
	return s.ListGrades(ctx)
}

func (s *PostgresStore) ListGrades(ctx context.Context) ([]selection.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, grade, yield_strength, uts, density, attributes
		FROM steel_grades ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []selection.Record
	for rows.Next() {
		var g GradeRow
		var attrsJSON []byte
		if err := rows.Scan(&g.ID, &g.Grade, &g.YieldStrength, &g.UTS, &g.Density, &attrsJSON); err != nil {
			return nil, err
		}
		if attrsJSON != nil {
			if err := json.Unmarshal(attrsJSON, &g.Attributes); err != nil {
				return nil, fmt.Errorf("decode attributes for grade %d: %w", g.ID, err)
			}
		}
		records = append(records, g.ToRecord(s.defaultDensity))
	}
	return records, rows.Err()
}

// ReplaceGrades swaps the whole dataset in one transaction, so readers see
// either the old set or the new one.
func (s *PostgresStore) ReplaceGrades(ctx context.Context, records []selection.Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM steel_grades`); err != nil {
		return fmt.Errorf("clear grades: %w", err)
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		g := FromRecord(r)
		var attrsJSON []byte
		if len(g.Attributes) > 0 {
			attrsJSON, _ = json.Marshal(g.Attributes)
		}
		batch.Queue(`
			INSERT INTO steel_grades (id, grade, yield_strength, uts, density, attributes)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			g.ID, g.Grade, g.YieldStrength, g.UTS, g.Density, attrsJSON,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert grades: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) CountGrades(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM steel_grades`).Scan(&n)
	return n, err
}

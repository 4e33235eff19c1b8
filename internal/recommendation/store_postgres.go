package recommendation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"carepath/pkg/platform/sentinel"
)

// PostgresStore persists recommendations in PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE recommendations (
//	    id             TEXT PRIMARY KEY,
//	    seq            BIGSERIAL,
//	    patient_id     BIGINT NOT NULL REFERENCES patients (id) ON DELETE CASCADE,
//	    recommendation TEXT NOT NULL,
//	    created_at     TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX recommendations_patient_day ON recommendations (patient_id, created_at);
//
// seq preserves insertion order within a single evaluation so same-day reads
// return labels in the order the rules produced them.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed recommendation store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, rec *Recommendation) error {
	query := `
		INSERT INTO recommendations (id, patient_id, recommendation, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query, rec.ID, rec.PatientID, rec.Label, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert recommendation: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Recommendation, error) {
	query := `
		SELECT id, patient_id, recommendation, created_at
		FROM recommendations
		WHERE id = $1
	`
	var rec Recommendation
	err := s.db.QueryRowContext(ctx, query, id).Scan(&rec.ID, &rec.PatientID, &rec.Label, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recommendation %q: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find recommendation: %w", err)
	}
	return &rec, nil
}

func (s *PostgresStore) ListByPatientBetween(ctx context.Context, patientID int64, from, to time.Time) ([]*Recommendation, error) {
	query := `
		SELECT id, patient_id, recommendation, created_at
		FROM recommendations
		WHERE patient_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query, patientID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list recommendations by patient: %w", err)
	}
	defer rows.Close()
	return scanRecommendations(rows)
}

func (s *PostgresStore) List(ctx context.Context) ([]*Recommendation, error) {
	query := `
		SELECT id, patient_id, recommendation, created_at
		FROM recommendations
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	defer rows.Close()
	return scanRecommendations(rows)
}

func scanRecommendations(rows *sql.Rows) ([]*Recommendation, error) {
	var recs []*Recommendation
	for rows.Next() {
		var rec Recommendation
		if err := rows.Scan(&rec.ID, &rec.PatientID, &rec.Label, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recommendations: %w", err)
	}
	return recs, nil
}

package patient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"carepath/pkg/platform/sentinel"
)

// PostgresStore persists patients in PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE patients (
//	    id             BIGSERIAL PRIMARY KEY,
//	    first_name     TEXT NOT NULL,
//	    last_name      TEXT NOT NULL,
//	    age            INTEGER NOT NULL,
//	    bmi            DOUBLE PRECISION NOT NULL,
//	    chronic_pain   BOOLEAN NOT NULL,
//	    recent_surgery BOOLEAN NOT NULL,
//	    UNIQUE (first_name, last_name)
//	);
//
// The unique constraint enforces the one-record-per-identity invariant at the
// store layer. Patient deletion is an administrative action outside this
// service; the recommendations FK cascades on it.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed patient store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByName(ctx context.Context, firstName, lastName string) (*Patient, error) {
	query := `
		SELECT id, first_name, last_name, age, bmi, chronic_pain, recent_surgery
		FROM patients
		WHERE first_name = $1 AND last_name = $2
	`
	var p Patient
	err := s.db.QueryRowContext(ctx, query, firstName, lastName).Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Age, &p.BMI, &p.ChronicPain, &p.RecentSurgery,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("patient %q %q: %w", firstName, lastName, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find patient: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) Create(ctx context.Context, p *Patient) error {
	query := `
		INSERT INTO patients (first_name, last_name, age, bmi, chronic_pain, recent_surgery)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		p.FirstName, p.LastName, p.Age, p.BMI, p.ChronicPain, p.RecentSurgery,
	).Scan(&p.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("patient %q %q: %w", p.FirstName, p.LastName, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, p *Patient) error {
	query := `
		UPDATE patients
		SET age = $1, bmi = $2, chronic_pain = $3, recent_surgery = $4
		WHERE id = $5
	`
	result, err := s.db.ExecContext(ctx, query, p.Age, p.BMI, p.ChronicPain, p.RecentSurgery, p.ID)
	if err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update patient rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("patient id %d: %w", p.ID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Patient, error) {
	query := `
		SELECT id, first_name, last_name, age, bmi, chronic_pain, recent_surgery
		FROM patients
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Age, &p.BMI, &p.ChronicPain, &p.RecentSurgery); err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		patients = append(patients, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patients: %w", err)
	}
	return patients, nil
}

package recommendation

import (
	"context"
	"time"
)

// Store is interface-driven so the orchestrator can be tested against the
// in-memory implementation and deployed against PostgreSQL.
//
// Error contract:
// - FindByID returns sentinel.ErrNotFound (wrapped) for unknown identifiers
// - infrastructure failures are returned wrapped with context
type Store interface {
	Save(ctx context.Context, rec *Recommendation) error
	FindByID(ctx context.Context, id string) (*Recommendation, error)
	// ListByPatientBetween returns recommendations for the patient whose
	// CreatedAt falls in [from, to). The orchestrator passes the current UTC
	// calendar day to implement same-day dedup.
	ListByPatientBetween(ctx context.Context, patientID int64, from, to time.Time) ([]*Recommendation, error)
	List(ctx context.Context) ([]*Recommendation, error)
}

// DayWindow returns the UTC calendar day bounds [start, end) containing t.
func DayWindow(t time.Time) (time.Time, time.Time) {
	utc := t.UTC()
	start := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

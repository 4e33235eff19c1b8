package patient

import "context"

// Store is interface-driven to keep the orchestrator testable and to allow
// swapping in-memory and PostgreSQL persistence without rewiring business
// code.
//
// Error contract:
// - FindByName returns sentinel.ErrNotFound (wrapped) for unknown identities
// - Create returns sentinel.ErrConflict (wrapped) when the identity exists
// - infrastructure failures are returned wrapped with context
type Store interface {
	FindByName(ctx context.Context, firstName, lastName string) (*Patient, error)
	Create(ctx context.Context, p *Patient) error
	Update(ctx context.Context, p *Patient) error
	List(ctx context.Context) ([]*Patient, error)
}

package unitofwork

import "context"

// RepositoryFactory mints a unit of work per request or pipeline run.
// Callers that never Begin get plain repositories on the shared pool.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

package correction

import (
	"context"
	"time"
)

// Repository persists correction requests. Every lookup is scoped to a company.
type Repository interface {
	// Create inserts a pending request. A second pending request for the same
	// attendance record fails with ErrAlreadyPending.
	Create(ctx context.Context, req Request) (Request, error)

	GetByID(ctx context.Context, id string, companyID string) (Request, error)

	// GetByIDForUpdate locks the request row until the surrounding transaction ends
	GetByIDForUpdate(ctx context.Context, id string, companyID string) (Request, error)

	// FindPendingForRecord returns nil when the record has no pending request
	FindPendingForRecord(ctx context.Context, attendanceID string, companyID string) (*Request, error)

	Update(ctx context.Context, req Request) error

	List(ctx context.Context, filter CorrectionFilter, companyID string) ([]Request, int64, error)

	// ListPendingOlderThan spans all companies; used by the reminder job
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]Request, error)
}

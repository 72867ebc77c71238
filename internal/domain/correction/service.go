package correction

import "context"

// CorrectionService drives the correction request lifecycle
type CorrectionService interface {
	// Create files a correction for one of the caller's attendance records and freezes the record
	Create(ctx context.Context, req CreateCorrectionRequest) (CorrectionResponse, error)

	// Approve applies the proposed values to the record and recomputes its minutes
	Approve(ctx context.Context, req ApproveCorrectionRequest) (CorrectionResponse, error)

	// Reject discards the proposal and restores the record status
	Reject(ctx context.Context, req RejectCorrectionRequest) (CorrectionResponse, error)

	// CanPropose reports whether a correction may be filed against the record
	CanPropose(ctx context.Context, attendanceID string) (CanProposeResponse, error)

	Get(ctx context.Context, id string) (CorrectionResponse, error)

	// ListMine lists the caller's own requests
	ListMine(ctx context.Context, filter CorrectionFilter) (ListCorrectionResponse, error)

	// List lists requests across the company (approvers)
	List(ctx context.Context, filter CorrectionFilter) (ListCorrectionResponse, error)

	// ListApprovers lists who the caller may assign a correction to
	ListApprovers(ctx context.Context) ([]ApproverResponse, error)
}

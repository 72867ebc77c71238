package user

import (
	"context"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)

	// ListApprovers returns the managers and owners of a company
	ListApprovers(ctx context.Context, companyID string) ([]User, error)
}

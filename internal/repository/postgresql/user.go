package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepositoryImpl struct {
	db *database.DB
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT u.id, u.company_id, u.email, u.role, u.created_at, u.updated_at,
			   e.id, e.full_name
		FROM users u
		LEFT JOIN employees e ON e.user_id = u.id
		WHERE u.id = $1
		LIMIT 1
	`

	var u user.User
	err := q.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.CompanyID,
		&u.Email,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.EmployeeID,
		&u.EmployeeName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return u, nil
}

// ListApprovers implements user.UserRepository.
func (r *userRepositoryImpl) ListApprovers(ctx context.Context, companyID string) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT u.id, u.company_id, u.email, u.role, u.created_at, u.updated_at,
			   e.id, e.full_name
		FROM users u
		LEFT JOIN employees e ON e.user_id = u.id
		WHERE u.company_id = $1 AND u.role IN ($2, $3)
		ORDER BY u.email
	`

	rows, err := q.Query(ctx, query, companyID, user.RoleOwner, user.RoleManager)
	if err != nil {
		return nil, fmt.Errorf("failed to list approvers: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(
			&u.ID,
			&u.CompanyID,
			&u.Email,
			&u.Role,
			&u.CreatedAt,
			&u.UpdatedAt,
			&u.EmployeeID,
			&u.EmployeeName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan approver: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

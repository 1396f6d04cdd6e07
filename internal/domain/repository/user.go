package repository

import (
	"context"

	"github.com/polkiloo/homecare/internal/domain/model"
)

// UserRepository describes persistence operations for users.
// Create stores the approval status model.InitialApproval gives the role.
type UserRepository interface {
	Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error)
	GetByLogin(ctx context.Context, login string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, filter model.UserFilter) ([]model.User, error)
	SetApproval(ctx context.Context, id string, status model.ApprovalStatus) error
	Update(ctx context.Context, id string, update model.UserUpdate) (*model.User, error)
}

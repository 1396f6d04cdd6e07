package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/homecare/internal/domain/errors"
	"github.com/polkiloo/homecare/internal/domain/model"
)

const userColumns = `id, login, password_hash, role, approval, created_at`

type userRepository struct {
	storage *Storage
}

func (r *userRepository) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	const query = `INSERT INTO users (id, login, password_hash, role, approval) VALUES ($1, $2, $3, $4, $5) RETURNING created_at`
	u := model.User{ID: uuid.NewString(), Login: login, PasswordHash: passwordHash, Role: role, Approval: model.InitialApproval(role)}
	if err := r.storage.pool.QueryRow(ctx, query, u.ID, login, passwordHash, role, u.Approval).Scan(&u.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login=$1`
	return scanUser(r.storage.pool.QueryRow(ctx, query, login))
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.storage.pool.QueryRow(ctx, query, id))
}

// List returns users matching the filter, oldest first.
func (r *userRepository) List(ctx context.Context, filter model.UserFilter) ([]model.User, error) {
	var (
		where []string
		args  []any
	)
	if filter.Role != "" {
		args = append(args, filter.Role)
		where = append(where, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Approval != "" {
		args = append(args, filter.Approval)
		where = append(where, fmt.Sprintf("approval=$%d", len(args)))
	}
	query := `SELECT ` + userColumns + ` FROM users`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *userRepository) SetApproval(ctx context.Context, id string, status model.ApprovalStatus) error {
	const query = `UPDATE users SET approval=$1 WHERE id=$2`
	tag, err := r.storage.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// Update applies the non-empty fields of the update and returns the stored user.
func (r *userRepository) Update(ctx context.Context, id string, update model.UserUpdate) (*model.User, error) {
	query := `UPDATE users SET login=COALESCE(NULLIF($1, ''), login),
                               role=COALESCE(NULLIF($2, ''), role),
                               approval=COALESCE(NULLIF($3, ''), approval)
              WHERE id=$4
              RETURNING ` + userColumns
	u, err := scanUser(r.storage.pool.QueryRow(ctx, query, update.Login, string(update.Role), string(update.Approval), id))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return u, nil
}

func scanUser(row scanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.Approval, &u.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zhemu6/AlterEgo/internal/domain"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

var _ domain.UserRepository = (*UserRepo)(nil)

const userColumns = "id, user_account, user_password, email, user_role, created_at, updated_at"

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Account, &u.PasswordHash, &u.Email, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM sys_user WHERE id = $1", userID)
	return scanUser(row)
}

func (r *UserRepo) GetByAccount(ctx context.Context, account string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM sys_user WHERE user_account = $1", account)
	return scanUser(row)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM sys_user WHERE email = $1", email)
	return scanUser(row)
}

func (r *UserRepo) Create(ctx context.Context, account, passwordHash, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO sys_user (user_account, user_password, email, user_role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		account, passwordHash, email, string(domain.RoleUser))

	user, err := scanUser(row)
	switch violatedConstraint(err) {
	case "sys_user_user_account_key":
		return nil, domain.ErrAccountExists
	case "sys_user_email_key":
		return nil, domain.ErrEmailExists
	}
	return user, err
}

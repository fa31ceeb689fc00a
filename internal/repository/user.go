package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/swjin-lab/purchases-tracker/internal/common"
	"github.com/swjin-lab/purchases-tracker/internal/entity"
)

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type userRepository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewUserRepository(db *sqlx.DB, logger *slog.Logger) UserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &userRepository{db: db, logger: logger}
}

type userRow struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Name         string `db:"name"`
	CreatedAt    string `db:"created_at"`
}

func (r *userRepository) Create(ctx context.Context, u *entity.User) error {
	q := r.db.Rebind(`INSERT INTO users (id, email, password_hash, name, created_at)
		VALUES (?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, q,
		u.ID.String(), u.Email, u.PasswordHash, u.Name, u.CreatedAt.Format(time.RFC3339))
	if err != nil {
		r.logger.Warn("create user failed", "email", u.Email, "error", err)
		return common.NewAppError("USER_CREATE", "email already registered?", common.ErrConflict)
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var row userRow
	q := r.db.Rebind(`SELECT id, email, password_hash, name, created_at FROM users WHERE email = ?`)
	if err := r.db.GetContext(ctx, &row, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return toUser(row)
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var row userRow
	q := r.db.Rebind(`SELECT id, email, password_hash, name, created_at FROM users WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, q, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return toUser(row)
}

func toUser(row userRow) (*entity.User, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, err
	}
	createdAt, _ := time.Parse(time.RFC3339, row.CreatedAt)
	return &entity.User{
		ID:           id,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Name:         row.Name,
		CreatedAt:    createdAt,
	}, nil
}

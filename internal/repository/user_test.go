package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/swjin-lab/purchases-tracker/internal/common"
	"github.com/swjin-lab/purchases-tracker/internal/entity"
)

func TestUserCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testDB(t), nil)

	u := &entity.User{
		ID:           uuid.New(),
		Email:        "jin@example.com",
		PasswordHash: "$2a$10$fakehash",
		Name:         "수진",
		CreatedAt:    time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	byEmail, err := repo.GetByEmail(ctx, "jin@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != u.ID || byEmail.Name != "수진" || byEmail.PasswordHash != u.PasswordHash {
		t.Fatalf("user mismatch: %+v", byEmail)
	}

	byID, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.Email != u.Email {
		t.Fatalf("user mismatch: %+v", byID)
	}
}

func TestUserDuplicateEmailConflicts(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testDB(t), nil)

	first := &entity.User{ID: uuid.New(), Email: "dup@example.com", PasswordHash: "x", CreatedAt: time.Now().UTC()}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}
	second := &entity.User{ID: uuid.New(), Email: "dup@example.com", PasswordHash: "y", CreatedAt: time.Now().UTC()}
	if err := repo.Create(ctx, second); !errors.Is(err, common.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUserNotFound(t *testing.T) {
	repo := NewUserRepository(testDB(t), nil)
	if _, err := repo.GetByEmail(context.Background(), "ghost@example.com"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByID(context.Background(), uuid.New()); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

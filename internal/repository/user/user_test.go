package user

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"sweetshop/internal/domain"
	"sweetshop/internal/migrate"
)

func TestMemory(t *testing.T) {
	runRepositoryTests(t, func(t *testing.T) Repository { return NewMemory() })
}

func TestPostgres(t *testing.T) {
	ctx := context.Background()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	runRepositoryTests(t, func(t *testing.T) Repository {
		if err := migrate.Reset(ctx, pool); err != nil {
			t.Fatalf("reset migrations: %v", err)
		}
		return NewPostgres(pool, nil)
	})
}

func runRepositoryTests(t *testing.T, setup func(t *testing.T) Repository) {
	t.Run("CreateAndLookup", func(t *testing.T) {
		ctx := context.Background()
		repo := setup(t)

		u, err := repo.Create(ctx, domain.User{Username: "ann", Email: "Ann@Example.com", PasswordHash: "hash"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if u.ID == "" || u.Role != domain.RoleUser || u.Email != "ann@example.com" {
			t.Fatalf("unexpected user %+v", u)
		}

		byEmail, err := repo.GetByEmail(ctx, "ANN@example.com")
		if err != nil {
			t.Fatalf("GetByEmail: %v", err)
		}
		if byEmail.ID != u.ID || byEmail.PasswordHash != "hash" {
			t.Fatalf("unexpected user by email %+v", byEmail)
		}

		byID, err := repo.GetByID(ctx, u.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if byID.Username != "ann" {
			t.Fatalf("unexpected user by id %+v", byID)
		}
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		ctx := context.Background()
		repo := setup(t)
		if _, err := repo.Create(ctx, domain.User{Username: "a", Email: "dup@example.com", PasswordHash: "h"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
		_, err := repo.Create(ctx, domain.User{Username: "b", Email: "DUP@example.com", PasswordHash: "h"})
		if !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("AdminRoleKept", func(t *testing.T) {
		repo := setup(t)
		u, err := repo.Create(context.Background(), domain.User{Username: "root", Email: "root@example.com", PasswordHash: "h", Role: domain.RoleAdmin})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if u.Role != domain.RoleAdmin {
			t.Fatalf("expected admin role, got %q", u.Role)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		ctx := context.Background()
		repo := setup(t)
		if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound by email, got %v", err)
		}
		if _, err := repo.GetByID(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound by id, got %v", err)
		}
	})
}

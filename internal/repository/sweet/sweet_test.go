package sweet

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"sweetshop/internal/domain"
	"sweetshop/internal/migrate"
)

func TestMemory(t *testing.T) {
	runRepositoryTests(t, func(t *testing.T) (Repository, string) {
		return NewMemory(), "11111111-1111-1111-1111-111111111111"
	})
}

func TestPostgres(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	runRepositoryTests(t, func(t *testing.T) (Repository, string) {
		if err := migrate.Reset(ctx, pool); err != nil {
			t.Fatalf("reset migrations: %v", err)
		}
		var userID string
		err := pool.QueryRow(ctx, `
			INSERT INTO users (username, email, password_hash)
			VALUES ('buyer', 'buyer@example.com', 'x')
			RETURNING id::text
		`).Scan(&userID)
		if err != nil {
			t.Fatalf("insert user: %v", err)
		}
		return NewPostgres(pool, nil), userID
	})
}

func runRepositoryTests(t *testing.T, setup func(t *testing.T) (Repository, string)) {
	t.Run("CreateListGet", func(t *testing.T) {
		ctx := context.Background()
		repo, _ := setup(t)

		toffee := mustCreate(t, repo, "Toffee", "Candy", "1.25", 3)
		mustCreate(t, repo, "apple pie", "Pastry", "4.00", 1)

		list, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(list) != 2 || list[0].Name != "apple pie" || list[1].Name != "Toffee" {
			t.Fatalf("expected case-insensitive name order, got %+v", list)
		}

		got, err := repo.GetByID(ctx, toffee.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if !got.Price.Equal(decimal.RequireFromString("1.25")) || got.Quantity != 3 {
			t.Fatalf("unexpected sweet %+v", got)
		}

		if _, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DuplicateName", func(t *testing.T) {
		repo, _ := setup(t)
		mustCreate(t, repo, "Fudge", "Candy", "2.00", 1)
		_, err := repo.Create(context.Background(), domain.SweetInput{Name: "FUDGE", Category: "Candy", Price: decimal.NewFromInt(1)})
		if !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("Search", func(t *testing.T) {
		ctx := context.Background()
		repo, _ := setup(t)
		mustCreate(t, repo, "Dark Chocolate", "Chocolate", "3.50", 1)
		mustCreate(t, repo, "Milk Chocolate", "Chocolate", "2.50", 1)
		mustCreate(t, repo, "Lollipop", "Candy", "0.75", 1)

		got, err := repo.Search(ctx, domain.SearchFilter{
			Name:     "chocolate",
			MaxPrice: decimal.NewNullDecimal(decimal.RequireFromString("3.00")),
		})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(got) != 1 || got[0].Name != "Milk Chocolate" {
			t.Fatalf("unexpected search result %+v", got)
		}

		got, err = repo.Search(ctx, domain.SearchFilter{Category: "CANDY"})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(got) != 1 || got[0].Name != "Lollipop" {
			t.Fatalf("unexpected category search result %+v", got)
		}
	})

	t.Run("UpdateRestockDelete", func(t *testing.T) {
		ctx := context.Background()
		repo, _ := setup(t)
		s := mustCreate(t, repo, "Nougat", "Candy", "1.00", 0)

		updated, err := repo.Update(ctx, s.ID, domain.SweetInput{Name: "Nougat", Category: "Chewy", Price: decimal.RequireFromString("1.10"), Quantity: 2})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.Category != "Chewy" || updated.Quantity != 2 {
			t.Fatalf("unexpected updated sweet %+v", updated)
		}

		restocked, err := repo.Restock(ctx, s.ID, 5)
		if err != nil {
			t.Fatalf("Restock: %v", err)
		}
		if restocked.Quantity != 7 {
			t.Fatalf("expected quantity 7, got %d", restocked.Quantity)
		}

		if err := repo.Delete(ctx, s.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if err := repo.Delete(ctx, s.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("UpsertByName", func(t *testing.T) {
		ctx := context.Background()
		repo, _ := setup(t)
		first, err := repo.UpsertByName(ctx, domain.SweetInput{Name: "Brittle", Category: "Candy", Price: decimal.NewFromInt(2), Quantity: 1})
		if err != nil {
			t.Fatalf("UpsertByName insert: %v", err)
		}
		second, err := repo.UpsertByName(ctx, domain.SweetInput{Name: "brittle", Category: "Nut", Price: decimal.NewFromInt(3), Quantity: 9})
		if err != nil {
			t.Fatalf("UpsertByName update: %v", err)
		}
		if second.ID != first.ID || second.Category != "Nut" || second.Quantity != 9 {
			t.Fatalf("expected update in place, got %+v (first %+v)", second, first)
		}
	})

	t.Run("PurchaseDrainsStock", func(t *testing.T) {
		ctx := context.Background()
		repo, userID := setup(t)
		s := mustCreate(t, repo, "Truffle", "Chocolate", "5.00", 2)

		for i := 0; i < 2; i++ {
			p, err := repo.Purchase(ctx, userID, s.ID)
			if err != nil {
				t.Fatalf("Purchase #%d: %v", i+1, err)
			}
			if p.SweetName != "Truffle" || !p.Price.Equal(decimal.NewFromInt(5)) || p.PurchasedAt.IsZero() {
				t.Fatalf("unexpected purchase %+v", p)
			}
		}
		if _, err := repo.Purchase(ctx, userID, s.ID); !errors.Is(err, domain.ErrOutOfStock) {
			t.Fatalf("expected ErrOutOfStock, got %v", err)
		}
		if _, err := repo.Purchase(ctx, userID, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}

		got, err := repo.GetByID(ctx, s.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Quantity != 0 {
			t.Fatalf("expected empty shelf, got %d", got.Quantity)
		}

		history, err := repo.ListPurchases(ctx, userID)
		if err != nil {
			t.Fatalf("ListPurchases: %v", err)
		}
		if len(history) != 2 {
			t.Fatalf("expected 2 purchases, got %d", len(history))
		}
		if history[0].PurchasedAt.Before(history[1].PurchasedAt) {
			t.Fatalf("expected newest first, got %+v", history)
		}
	})

	t.Run("ConcurrentPurchasesNeverOversell", func(t *testing.T) {
		ctx := context.Background()
		repo, userID := setup(t)
		s := mustCreate(t, repo, "Macaron", "Pastry", "1.50", 3)

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			ok, sold int
		)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Purchase(ctx, userID, s.ID)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case errors.Is(err, domain.ErrOutOfStock):
					sold++
				default:
					t.Errorf("Purchase: %v", err)
				}
			}()
		}
		wg.Wait()
		if ok != 3 || sold != 7 {
			t.Fatalf("expected 3 purchases and 7 sold-out, got %d and %d", ok, sold)
		}
	})

	t.Run("ListPurchasesUnknownUser", func(t *testing.T) {
		repo, _ := setup(t)
		got, err := repo.ListPurchases(context.Background(), "22222222-2222-2222-2222-222222222222")
		if err != nil {
			t.Fatalf("ListPurchases: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil slice, got %#v", got)
		}
	})
}

func mustCreate(t *testing.T, repo Repository, name, category, price string, qty int) *domain.Sweet {
	t.Helper()
	s, err := repo.Create(context.Background(), domain.SweetInput{
		Name:     name,
		Category: category,
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
	})
	if err != nil {
		t.Fatalf("Create %s: %v", name, err)
	}
	return s
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

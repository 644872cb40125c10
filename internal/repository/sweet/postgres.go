package sweet

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"sweetshop/internal/domain"
	"sweetshop/internal/logging"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger logrus.FieldLogger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger logrus.FieldLogger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrDiscard(logger)}
}

const sweetColumns = `id::text, name, category, price_cents, quantity, description`

func scanSweet(row pgx.Row) (*domain.Sweet, error) {
	var (
		s     domain.Sweet
		cents int64
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Category, &cents, &s.Quantity, &s.Description); err != nil {
		return nil, err
	}
	s.Price = domain.PriceFromCents(cents)
	return &s, nil
}

// mapErr turns driver errors into domain sentinels.
func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return domain.ErrAlreadyExists
		case "22P02":
			// malformed uuid
			return domain.ErrNotFound
		}
	}
	return err
}

func (r *postgresRepo) query(ctx context.Context, q string, args ...any) ([]domain.Sweet, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Sweet{}
	for rows.Next() {
		s, err := scanSweet(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Sweet, error) {
	result, err := r.query(ctx, `SELECT `+sweetColumns+` FROM sweets ORDER BY lower(name)`)
	if err != nil {
		r.logger.Errorf("sweet repo: list error=%v", err)
		return nil, err
	}
	r.logger.Debugf("sweet repo: list count=%d", len(result))
	return result, nil
}

func (r *postgresRepo) Search(ctx context.Context, f domain.SearchFilter) ([]domain.Sweet, error) {
	const q = `
SELECT ` + sweetColumns + `
FROM sweets
WHERE ($1 = '' OR strpos(lower(name), lower($1)) > 0)
  AND ($2 = '' OR strpos(lower(category), lower($2)) > 0)
  AND ($3::bigint IS NULL OR price_cents >= $3)
  AND ($4::bigint IS NULL OR price_cents <= $4)
ORDER BY lower(name)
`
	var minCents, maxCents *int64
	if f.MinPrice.Valid {
		v := domain.PriceCents(f.MinPrice.Decimal)
		minCents = &v
	}
	if f.MaxPrice.Valid {
		v := domain.PriceCents(f.MaxPrice.Decimal)
		maxCents = &v
	}
	result, err := r.query(ctx, q, strings.TrimSpace(f.Name), strings.TrimSpace(f.Category), minCents, maxCents)
	if err != nil {
		r.logger.Errorf("sweet repo: search name=%q category=%q error=%v", f.Name, f.Category, err)
		return nil, err
	}
	r.logger.Debugf("sweet repo: search name=%q category=%q count=%d", f.Name, f.Category, len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Sweet, error) {
	s, err := scanSweet(r.pool.QueryRow(ctx, `SELECT `+sweetColumns+` FROM sweets WHERE id = $1`, id))
	if err != nil {
		err = mapErr(err)
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Debugf("sweet repo: get id=%s not found", id)
		} else {
			r.logger.Errorf("sweet repo: get id=%s error=%v", id, err)
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) Create(ctx context.Context, in domain.SweetInput) (*domain.Sweet, error) {
	const q = `
INSERT INTO sweets (name, category, price_cents, quantity, description)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + sweetColumns
	s, err := scanSweet(r.pool.QueryRow(ctx, q, in.Name, in.Category, domain.PriceCents(in.Price), in.Quantity, in.Description))
	if err != nil {
		r.logger.Warnf("sweet repo: create name=%q error=%v", in.Name, err)
		return nil, mapErr(err)
	}
	r.logger.Infof("sweet repo: created name=%q id=%s", s.Name, s.ID)
	return s, nil
}

func (r *postgresRepo) Update(ctx context.Context, id string, in domain.SweetInput) (*domain.Sweet, error) {
	const q = `
UPDATE sweets
SET name = $2, category = $3, price_cents = $4, quantity = $5, description = $6, updated_at = now()
WHERE id = $1
RETURNING ` + sweetColumns
	s, err := scanSweet(r.pool.QueryRow(ctx, q, id, in.Name, in.Category, domain.PriceCents(in.Price), in.Quantity, in.Description))
	if err != nil {
		r.logger.Warnf("sweet repo: update id=%s error=%v", id, err)
		return nil, mapErr(err)
	}
	r.logger.Infof("sweet repo: updated id=%s", id)
	return s, nil
}

func (r *postgresRepo) UpsertByName(ctx context.Context, in domain.SweetInput) (*domain.Sweet, error) {
	const q = `
INSERT INTO sweets (name, category, price_cents, quantity, description)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (lower(name)) DO UPDATE SET
    category = EXCLUDED.category,
    price_cents = EXCLUDED.price_cents,
    quantity = EXCLUDED.quantity,
    description = EXCLUDED.description,
    updated_at = now()
RETURNING ` + sweetColumns
	s, err := scanSweet(r.pool.QueryRow(ctx, q, in.Name, in.Category, domain.PriceCents(in.Price), in.Quantity, in.Description))
	if err != nil {
		r.logger.Errorf("sweet repo: upsert name=%q error=%v", in.Name, err)
		return nil, mapErr(err)
	}
	r.logger.Infof("sweet repo: upserted name=%q id=%s", s.Name, s.ID)
	return s, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM sweets WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Infof("sweet repo: deleted id=%s", id)
	return nil
}

func (r *postgresRepo) Restock(ctx context.Context, id string, amount int) (*domain.Sweet, error) {
	const q = `
UPDATE sweets SET quantity = quantity + $2, updated_at = now()
WHERE id = $1
RETURNING ` + sweetColumns
	s, err := scanSweet(r.pool.QueryRow(ctx, q, id, amount))
	if err != nil {
		return nil, mapErr(err)
	}
	r.logger.Infof("sweet repo: restocked id=%s amount=%d quantity=%d", id, amount, s.Quantity)
	return s, nil
}

func (r *postgresRepo) Purchase(ctx context.Context, userID, sweetID string) (*domain.Purchase, error) {
	p, err := withTx(ctx, r.pool, func(tx pgx.Tx) (*domain.Purchase, error) {
		const take = `
UPDATE sweets SET quantity = quantity - 1, updated_at = now()
WHERE id = $1 AND quantity > 0
RETURNING name, category, price_cents
`
		p := domain.Purchase{UserID: userID, SweetID: sweetID}
		var cents int64
		err := tx.QueryRow(ctx, take, sweetID).Scan(&p.SweetName, &p.Category, &cents)
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sweets WHERE id = $1)`, sweetID).Scan(&exists); err != nil {
				return nil, mapErr(err)
			}
			if !exists {
				return nil, domain.ErrNotFound
			}
			return nil, domain.ErrOutOfStock
		}
		if err != nil {
			return nil, mapErr(err)
		}
		p.Price = domain.PriceFromCents(cents)

		const record = `
INSERT INTO purchases (user_id, sweet_id, sweet_name, category, price_cents)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text, purchased_at
`
		if err := tx.QueryRow(ctx, record, userID, sweetID, p.SweetName, p.Category, cents).Scan(&p.ID, &p.PurchasedAt); err != nil {
			return nil, mapErr(err)
		}
		return &p, nil
	})
	if err != nil {
		r.logger.Warnf("sweet repo: purchase user_id=%s sweet_id=%s error=%v", userID, sweetID, err)
		return nil, err
	}
	r.logger.Infof("sweet repo: purchase user_id=%s sweet_id=%s id=%s", userID, sweetID, p.ID)
	return p, nil
}

func (r *postgresRepo) ListPurchases(ctx context.Context, userID string) ([]domain.Purchase, error) {
	const q = `
SELECT id::text, user_id::text, COALESCE(sweet_id::text, ''), sweet_name, category, price_cents, purchased_at
FROM purchases
WHERE user_id = $1
ORDER BY purchased_at DESC, id
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	result := []domain.Purchase{}
	for rows.Next() {
		var (
			p     domain.Purchase
			cents int64
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.SweetID, &p.SweetName, &p.Category, &cents, &p.PurchasedAt); err != nil {
			return nil, err
		}
		p.Price = domain.PriceFromCents(cents)
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Errorf("sweet repo: list purchases user_id=%s error=%v", userID, err)
		return nil, err
	}
	r.logger.Debugf("sweet repo: list purchases user_id=%s count=%d", userID, len(result))
	return result, nil
}

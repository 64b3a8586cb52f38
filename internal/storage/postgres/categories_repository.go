package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kimbia-events/server/internal/domain/categories"
	"github.com/kimbia-events/server/internal/domain/payments"
)

var (
	_ categories.Repository     = (*CategoryRepository)(nil)
	_ payments.CategoryResolver = (*CategoryRepository)(nil)
)

const categorySelect = `
SELECT c.id, c.name, c.price, c.currency, c.marathon_id, m.organizer_id
  FROM categories c
  JOIN marathons m ON m.id = c.marathon_id`

func (r *CategoryRepository) Create(ctx context.Context, params categories.CreateParams) (*categories.Category, error) {
	q := pick(r.pool, r.tx)

	var id uuid.UUID
	err := q.QueryRow(ctx, `
INSERT INTO categories (name, price, currency, marathon_id)
VALUES ($1, $2, $3, $4)
RETURNING id`, string(params.Name), params.Price, string(params.Currency), params.MarathonID).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return getCategory(ctx, q, id)
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*categories.Category, error) {
	return getCategory(ctx, pick(r.pool, r.tx), id)
}

func (r *CategoryRepository) List(ctx context.Context, filters categories.Filters) ([]categories.Category, error) {
	query := categorySelect
	var args []any
	if filters.ID != nil {
		query += " WHERE c.id = $1"
		args = append(args, *filters.ID)
	}
	query += " ORDER BY c.created_at DESC, c.id DESC"

	rows, err := pick(r.pool, r.tx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []categories.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *category)
	}
	return items, rows.Err()
}

func (r *CategoryRepository) Update(ctx context.Context, id uuid.UUID, params categories.UpdateParams) (*categories.Category, error) {
	q := pick(r.pool, r.tx)

	tag, err := q.Exec(ctx, `
UPDATE categories SET
  name     = COALESCE($2, name),
  price    = COALESCE($3, price),
  currency = COALESCE($4, currency)
WHERE id = $1`, id, nameParam(params.Name), params.Price, currencyParam(params.Currency))
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, categories.ErrNotFound
	}
	return getCategory(ctx, q, id)
}

func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := pick(r.pool, r.tx).Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return categories.ErrNotFound
	}
	return nil
}

// MarathonID resolves which marathon a category belongs to, for the payment
// cross-field check.
func (r *CategoryRepository) MarathonID(ctx context.Context, categoryID uuid.UUID) (uuid.UUID, error) {
	var marathonID uuid.UUID
	err := pick(r.pool, r.tx).QueryRow(ctx, `SELECT marathon_id FROM categories WHERE id = $1`, categoryID).Scan(&marathonID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, payments.ErrCategoryNotFound
		}
		return uuid.Nil, fmt.Errorf("get category marathon: %w", err)
	}
	return marathonID, nil
}

func getCategory(ctx context.Context, q queryer, id uuid.UUID) (*categories.Category, error) {
	category, err := scanCategory(q.QueryRow(ctx, categorySelect+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, categories.ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

func scanCategory(row pgx.Row) (*categories.Category, error) {
	var category categories.Category
	var name, currency string
	if err := row.Scan(&category.ID, &name, &category.Price, &currency, &category.MarathonID, &category.OrganizerID); err != nil {
		return nil, err
	}
	category.Name = categories.Name(name)
	category.Currency = categories.Currency(currency)
	return &category, nil
}

func nameParam(name *categories.Name) *string {
	if name == nil {
		return nil
	}
	value := string(*name)
	return &value
}

func currencyParam(currency *categories.Currency) *string {
	if currency == nil {
		return nil
	}
	value := string(*currency)
	return &value
}

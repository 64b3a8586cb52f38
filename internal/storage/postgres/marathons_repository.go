package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kimbia-events/server/internal/domain/categories"
	"github.com/kimbia-events/server/internal/domain/marathons"
	"github.com/kimbia-events/server/internal/domain/sponsors"
)

var _ marathons.Repository = (*MarathonRepository)(nil)

// errMarathonMissing satisfies the marathon-not-found sentinel of every
// package that resolves marathons through this repository.
var errMarathonMissing = errors.Join(
	marathons.ErrNotFound,
	categories.ErrMarathonNotFound,
	sponsors.ErrMarathonNotFound,
)

// Create inserts the marathon and its nested categories and sponsors in one
// transaction.
func (r *MarathonRepository) Create(ctx context.Context, params marathons.CreateParams) (*marathons.Marathon, error) {
	run := func(q queryer) (*marathons.Marathon, error) {
		var id uuid.UUID
		err := q.QueryRow(ctx, `
INSERT INTO marathons (name, theme, organizer_id, start_date, end_date)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`, params.Name, params.Theme, params.OrganizerID, params.StartDate, params.EndDate).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("insert marathon: %w", err)
		}

		for _, category := range params.Categories {
			_, err := q.Exec(ctx, `
INSERT INTO categories (name, price, currency, marathon_id)
VALUES ($1, $2, $3, $4)`, string(category.Name), category.Price, string(category.Currency), id)
			if err != nil {
				return nil, fmt.Errorf("insert category: %w", err)
			}
		}
		for _, sponsor := range params.Sponsors {
			_, err := q.Exec(ctx, `
INSERT INTO sponsors (name, marathon_id) VALUES ($1, $2)`, sponsor.Name, id)
			if err != nil {
				return nil, fmt.Errorf("insert sponsor: %w", err)
			}
		}

		return getMarathon(ctx, q, id)
	}

	if r.tx != nil {
		return run(r.tx)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	created, err := run(tx)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return created, nil
}

func (r *MarathonRepository) GetByID(ctx context.Context, id uuid.UUID) (*marathons.Marathon, error) {
	return getMarathon(ctx, pick(r.pool, r.tx), id)
}

func (r *MarathonRepository) List(ctx context.Context, filters marathons.Filters) ([]marathons.Marathon, error) {
	q := pick(r.pool, r.tx)

	query := `
SELECT m.id, m.name, m.theme, m.organizer_id, m.start_date, m.end_date, u.username, u.full_name
  FROM marathons m
  JOIN users u ON u.id = m.organizer_id`
	var args []any
	if filters.ID != nil {
		query += " WHERE m.id = $1"
		args = append(args, *filters.ID)
	}
	query += " ORDER BY m.created_at DESC, m.id DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list marathons: %w", err)
	}
	defer rows.Close()

	var items []marathons.Marathon
	for rows.Next() {
		marathon, err := scanMarathon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan marathon: %w", err)
		}
		items = append(items, *marathon)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := attachChildren(ctx, q, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MarathonRepository) Update(ctx context.Context, id uuid.UUID, params marathons.UpdateParams) (*marathons.Marathon, error) {
	q := pick(r.pool, r.tx)

	tag, err := q.Exec(ctx, `
UPDATE marathons SET
  name       = COALESCE($2, name),
  theme      = COALESCE($3, theme),
  start_date = COALESCE($4, start_date),
  end_date   = COALESCE($5, end_date)
WHERE id = $1`, id, params.Name, params.Theme, params.StartDate, params.EndDate)
	if err != nil {
		return nil, fmt.Errorf("update marathon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, marathons.ErrNotFound
	}
	return getMarathon(ctx, q, id)
}

// Delete removes the marathon; the schema cascades to categories, sponsors
// and payments.
func (r *MarathonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := pick(r.pool, r.tx).Exec(ctx, `DELETE FROM marathons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete marathon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return marathons.ErrNotFound
	}
	return nil
}

func (r *MarathonRepository) OrganizerID(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var organizerID uuid.UUID
	err := pick(r.pool, r.tx).QueryRow(ctx, `SELECT organizer_id FROM marathons WHERE id = $1`, id).Scan(&organizerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, errMarathonMissing
		}
		return uuid.Nil, fmt.Errorf("get marathon organizer: %w", err)
	}
	return organizerID, nil
}

func getMarathon(ctx context.Context, q queryer, id uuid.UUID) (*marathons.Marathon, error) {
	row := q.QueryRow(ctx, `
SELECT m.id, m.name, m.theme, m.organizer_id, m.start_date, m.end_date, u.username, u.full_name
  FROM marathons m
  JOIN users u ON u.id = m.organizer_id
 WHERE m.id = $1`, id)

	marathon, err := scanMarathon(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, marathons.ErrNotFound
		}
		return nil, fmt.Errorf("get marathon: %w", err)
	}

	items := []marathons.Marathon{*marathon}
	if err := attachChildren(ctx, q, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func scanMarathon(row pgx.Row) (*marathons.Marathon, error) {
	var marathon marathons.Marathon
	if err := row.Scan(
		&marathon.ID,
		&marathon.Name,
		&marathon.Theme,
		&marathon.OrganizerID,
		&marathon.StartDate,
		&marathon.EndDate,
		&marathon.Organizer.Username,
		&marathon.Organizer.FullName,
	); err != nil {
		return nil, err
	}
	marathon.Organizer.ID = marathon.OrganizerID
	return &marathon, nil
}

// attachChildren loads categories and sponsors for the given marathons in two
// queries and groups them in memory.
func attachChildren(ctx context.Context, q queryer, items []marathons.Marathon) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	index := make(map[uuid.UUID]int, len(items))
	for i := range items {
		ids = append(ids, items[i].ID)
		index[items[i].ID] = i
		items[i].Categories = []categories.Category{}
		items[i].Sponsors = []sponsors.Sponsor{}
	}

	rows, err := q.Query(ctx, `
SELECT id, name, price, currency, marathon_id FROM categories
 WHERE marathon_id = ANY($1) ORDER BY name, id`, ids)
	if err != nil {
		return fmt.Errorf("list marathon categories: %w", err)
	}
	for rows.Next() {
		var category categories.Category
		var name, currency string
		if err := rows.Scan(&category.ID, &name, &category.Price, &currency, &category.MarathonID); err != nil {
			rows.Close()
			return fmt.Errorf("scan category: %w", err)
		}
		category.Name = categories.Name(name)
		category.Currency = categories.Currency(currency)
		if i, ok := index[category.MarathonID]; ok {
			category.OrganizerID = items[i].OrganizerID
			items[i].Categories = append(items[i].Categories, category)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = q.Query(ctx, `
SELECT id, name, marathon_id FROM sponsors
 WHERE marathon_id = ANY($1) ORDER BY name, id`, ids)
	if err != nil {
		return fmt.Errorf("list marathon sponsors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sponsor sponsors.Sponsor
		if err := rows.Scan(&sponsor.ID, &sponsor.Name, &sponsor.MarathonID); err != nil {
			return fmt.Errorf("scan sponsor: %w", err)
		}
		if i, ok := index[sponsor.MarathonID]; ok {
			sponsor.OrganizerID = items[i].OrganizerID
			items[i].Sponsors = append(items[i].Sponsors, sponsor)
		}
	}
	return rows.Err()
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kimbia-events/server/internal/domain/sponsors"
)

var _ sponsors.Repository = (*SponsorRepository)(nil)

const sponsorSelect = `
SELECT s.id, s.name, s.marathon_id, m.organizer_id
  FROM sponsors s
  JOIN marathons m ON m.id = s.marathon_id`

func (r *SponsorRepository) Create(ctx context.Context, params sponsors.CreateParams) (*sponsors.Sponsor, error) {
	q := pick(r.pool, r.tx)

	var id uuid.UUID
	err := q.QueryRow(ctx, `
INSERT INTO sponsors (name, marathon_id) VALUES ($1, $2)
RETURNING id`, params.Name, params.MarathonID).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create sponsor: %w", err)
	}
	return getSponsor(ctx, q, id)
}

func (r *SponsorRepository) GetByID(ctx context.Context, id uuid.UUID) (*sponsors.Sponsor, error) {
	return getSponsor(ctx, pick(r.pool, r.tx), id)
}

func (r *SponsorRepository) List(ctx context.Context, filters sponsors.Filters) ([]sponsors.Sponsor, error) {
	query := sponsorSelect
	var args []any
	if filters.ID != nil {
		query += " WHERE s.id = $1"
		args = append(args, *filters.ID)
	}
	query += " ORDER BY s.created_at DESC, s.id DESC"

	rows, err := pick(r.pool, r.tx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sponsors: %w", err)
	}
	defer rows.Close()

	var items []sponsors.Sponsor
	for rows.Next() {
		sponsor, err := scanSponsor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sponsor: %w", err)
		}
		items = append(items, *sponsor)
	}
	return items, rows.Err()
}

func (r *SponsorRepository) Update(ctx context.Context, id uuid.UUID, params sponsors.UpdateParams) (*sponsors.Sponsor, error) {
	q := pick(r.pool, r.tx)

	tag, err := q.Exec(ctx, `
UPDATE sponsors SET name = COALESCE($2, name) WHERE id = $1`, id, params.Name)
	if err != nil {
		return nil, fmt.Errorf("update sponsor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, sponsors.ErrNotFound
	}
	return getSponsor(ctx, q, id)
}

func (r *SponsorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := pick(r.pool, r.tx).Exec(ctx, `DELETE FROM sponsors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sponsor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sponsors.ErrNotFound
	}
	return nil
}

func getSponsor(ctx context.Context, q queryer, id uuid.UUID) (*sponsors.Sponsor, error) {
	sponsor, err := scanSponsor(q.QueryRow(ctx, sponsorSelect+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sponsors.ErrNotFound
		}
		return nil, fmt.Errorf("get sponsor: %w", err)
	}
	return sponsor, nil
}

func scanSponsor(row pgx.Row) (*sponsors.Sponsor, error) {
	var sponsor sponsors.Sponsor
	if err := row.Scan(&sponsor.ID, &sponsor.Name, &sponsor.MarathonID, &sponsor.OrganizerID); err != nil {
		return nil, err
	}
	return &sponsor, nil
}

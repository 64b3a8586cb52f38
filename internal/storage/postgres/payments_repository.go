package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kimbia-events/server/internal/domain/payments"
)

var _ payments.Repository = (*PaymentRepository)(nil)

const paymentSelect = `
SELECT p.id, p.marathon_id, p.category_id, p.user_id, p.status, p.validation_date,
       m.organizer_id, p.created_at, p.updated_at
  FROM payments p
  JOIN marathons m ON m.id = p.marathon_id`

func (r *PaymentRepository) Create(ctx context.Context, params payments.CreateParams) (*payments.Payment, error) {
	q := pick(r.pool, r.tx)

	var id uuid.UUID
	err := q.QueryRow(ctx, `
INSERT INTO payments (marathon_id, category_id, user_id, status)
VALUES ($1, $2, $3, $4)
RETURNING id`, params.MarathonID, params.CategoryID, params.UserID, string(params.Status)).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return getPayment(ctx, q, id)
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payments.Payment, error) {
	return getPayment(ctx, pick(r.pool, r.tx), id)
}

func (r *PaymentRepository) List(ctx context.Context, filters payments.Filters) ([]payments.Payment, error) {
	return r.list(ctx, "", nil, filters)
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID uuid.UUID, filters payments.Filters) ([]payments.Payment, error) {
	return r.list(ctx, "p.user_id", &userID, filters)
}

func (r *PaymentRepository) ListByOrganizer(ctx context.Context, organizerID uuid.UUID, filters payments.Filters) ([]payments.Payment, error) {
	return r.list(ctx, "m.organizer_id", &organizerID, filters)
}

func (r *PaymentRepository) list(ctx context.Context, scopeColumn string, scopeID *uuid.UUID, filters payments.Filters) ([]payments.Payment, error) {
	query := paymentSelect
	var conds []string
	var args []any

	if scopeColumn != "" && scopeID != nil {
		args = append(args, *scopeID)
		conds = append(conds, fmt.Sprintf("%s = $%d", scopeColumn, len(args)))
	}
	if filters.ID != nil {
		args = append(args, *filters.ID)
		conds = append(conds, fmt.Sprintf("p.id = $%d", len(args)))
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY p.created_at DESC, p.id DESC"

	rows, err := pick(r.pool, r.tx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var items []payments.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		items = append(items, *payment)
	}
	return items, rows.Err()
}

func (r *PaymentRepository) Update(ctx context.Context, id uuid.UUID, params payments.UpdateParams) (*payments.Payment, error) {
	q := pick(r.pool, r.tx)

	tag, err := q.Exec(ctx, `
UPDATE payments SET
  status          = COALESCE($2, status),
  validation_date = COALESCE($3, validation_date),
  updated_at      = now()
WHERE id = $1`, id, statusParam(params.Status), params.ValidationDate)
	if err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, payments.ErrNotFound
	}
	return getPayment(ctx, q, id)
}

// Delete refuses PAID payments. The conditional delete and the follow-up
// status read keep the guard race-safe without an explicit lock.
func (r *PaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	q := pick(r.pool, r.tx)

	tag, err := q.Exec(ctx, `DELETE FROM payments WHERE id = $1 AND status <> 'PAID'`, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var status string
	err = q.QueryRow(ctx, `SELECT status FROM payments WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payments.ErrNotFound
		}
		return fmt.Errorf("delete payment: %w", err)
	}
	return payments.ErrProtected
}

func getPayment(ctx context.Context, q queryer, id uuid.UUID) (*payments.Payment, error) {
	payment, err := scanPayment(q.QueryRow(ctx, paymentSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payments.ErrNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return payment, nil
}

func scanPayment(row pgx.Row) (*payments.Payment, error) {
	var payment payments.Payment
	var status string
	if err := row.Scan(
		&payment.ID,
		&payment.MarathonID,
		&payment.CategoryID,
		&payment.UserID,
		&status,
		&payment.ValidationDate,
		&payment.OrganizerID,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	payment.Status = payments.Status(status)
	return &payment, nil
}

func statusParam(status *payments.Status) *string {
	if status == nil {
		return nil
	}
	value := string(*status)
	return &value
}

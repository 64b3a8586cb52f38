package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository bundles the per-entity repositories over one pool. When tx is
// set, every repository it hands out runs inside that transaction.
type Repository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Users() *UserRepository {
	return &UserRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Tokens() *TokenRepository {
	return &TokenRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Marathons() *MarathonRepository {
	return &MarathonRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Categories() *CategoryRepository {
	return &CategoryRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Sponsors() *SponsorRepository {
	return &SponsorRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Payments() *PaymentRepository {
	return &PaymentRepository{pool: r.pool, tx: r.tx}
}

// WithTx runs fn against a transactional view of the repository. Nested calls
// reuse the outer transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, *Repository) error) error {
	if r.tx != nil {
		return fn(ctx, r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	wrapped := &Repository{pool: r.pool, tx: tx}
	if err := fn(ctx, wrapped); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type UserRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

type TokenRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

type MarathonRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

type CategoryRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

type SponsorRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

type PaymentRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func pick(pool *pgxpool.Pool, tx pgx.Tx) queryer {
	if tx != nil {
		return tx
	}
	return pool
}

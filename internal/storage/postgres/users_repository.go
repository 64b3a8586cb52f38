package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kimbia-events/server/internal/auth"
	"github.com/kimbia-events/server/internal/domain/users"
)

var _ users.Repository = (*UserRepository)(nil)

const userColumns = `id, username, email, password_hash, role, is_staff, full_name, phone, gender, is_active, date_joined`

func (r *UserRepository) Create(ctx context.Context, params users.CreateParams) (*users.User, error) {
	row := pick(r.pool, r.tx).QueryRow(ctx, `
INSERT INTO users (username, email, password_hash, role, is_staff, full_name, phone, gender)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+userColumns, params.Username, params.Email, params.PasswordHash, string(params.Role),
		params.IsStaff, params.FullName, params.Phone, genderParam(params.Gender))

	user, err := scanUser(row)
	if err != nil {
		if taken := uniqueViolation(err); taken != nil {
			return nil, taken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	return r.getBy(ctx, "username = $1", username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.getBy(ctx, "email = $1", email)
}

func (r *UserRepository) getBy(ctx context.Context, where string, arg any) (*users.User, error) {
	row := pick(r.pool, r.tx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context, filters users.Filters) ([]users.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var conds []string
	var args []any

	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.ID != nil {
		conds = append(conds, "id = "+arg(*filters.ID))
	}
	if filters.Email != "" {
		conds = append(conds, "email = "+arg(filters.Email))
	} else if filters.EmailContains != "" {
		conds = append(conds, "email ILIKE "+arg(containsPattern(filters.EmailContains)))
	}
	if filters.Username != "" {
		conds = append(conds, "username = "+arg(filters.Username))
	} else if filters.UsernameContains != "" {
		conds = append(conds, "username ILIKE "+arg(containsPattern(filters.UsernameContains)))
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date_joined DESC, id DESC"

	rows, err := pick(r.pool, r.tx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var items []users.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		items = append(items, *user)
	}
	return items, rows.Err()
}

// containsPattern builds an ILIKE substring pattern, escaping the LIKE
// metacharacters so a literal % or _ in the filter matches itself.
func containsPattern(needle string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(needle)
	return "%" + escaped + "%"
}

// Update leaves nil fields unchanged.
func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, params users.UpdateParams) (*users.User, error) {
	row := pick(r.pool, r.tx).QueryRow(ctx, `
UPDATE users SET
  username      = COALESCE($2, username),
  email         = COALESCE($3, email),
  password_hash = COALESCE($4, password_hash),
  full_name     = COALESCE($5, full_name),
  phone         = COALESCE($6, phone),
  gender        = COALESCE($7, gender),
  is_active     = COALESCE($8, is_active)
WHERE id = $1
RETURNING `+userColumns, id, params.Username, params.Email, params.PasswordHash,
		params.FullName, params.Phone, genderParam(params.Gender), params.IsActive)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		if taken := uniqueViolation(err); taken != nil {
			return nil, taken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := pick(r.pool, r.tx).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*users.User, error) {
	var user users.User
	var role string
	var gender *string
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.IsStaff,
		&user.FullName,
		&user.Phone,
		&gender,
		&user.IsActive,
		&user.DateJoined,
	); err != nil {
		return nil, err
	}
	user.Role = auth.Role(role)
	if gender != nil {
		value := users.Gender(*gender)
		user.Gender = &value
	}
	return &user, nil
}

func genderParam(gender *users.Gender) *string {
	if gender == nil {
		return nil
	}
	value := string(*gender)
	return &value
}

// uniqueViolation maps a 23505 on the users table to the matching domain
// sentinel, nil when err is something else.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "email"):
		return users.ErrEmailTaken
	case strings.Contains(pgErr.ConstraintName, "username"):
		return users.ErrUsernameTaken
	default:
		return nil
	}
}

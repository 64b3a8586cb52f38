package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kimbia-events/server/internal/auth"
	"github.com/kimbia-events/server/internal/sanitize"
	"github.com/rs/zerolog"
)

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filters Filters) ([]User, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TokenRepository persists bearer tokens. GetOrCreate must be idempotent per
// user; the unique constraint on user_id arbitrates concurrent logins.
type TokenRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID, key string) (*Token, error)
	GetByKey(ctx context.Context, key string) (*Token, error)
	TouchLastUsed(ctx context.Context, id uuid.UUID) error
}

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ErrAdminRoleNotAllowed rejects self-elevation: only an authenticated admin
// may register another admin.
var ErrAdminRoleNotAllowed = FieldError{
	Field:   "role",
	Message: "cannot assign the admin role unless logged in as an admin",
}

type Service struct {
	repo        Repository
	tokens      TokenRepository
	tokenLength int
	bcryptCost  int
	logger      zerolog.Logger
}

func NewService(repo Repository, tokens TokenRepository, tokenLength, bcryptCost int, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		tokens:      tokens,
		tokenLength: tokenLength,
		bcryptCost:  bcryptCost,
		logger:      logger.With().Str("component", "users").Logger(),
	}
}

type CreateParams struct {
	Username     string
	Email        string
	PasswordHash string
	Role         auth.Role
	IsStaff      bool
	FullName     string
	Phone        *string
	Gender       *Gender
}

type RegisterParams struct {
	Username string
	Email    string
	Password string
	Role     auth.Role
	FullName string
	Phone    *string
	Gender   *Gender
}

// UpdateParams is the repository-facing patch; nil fields are left unchanged.
type UpdateParams struct {
	Username     *string
	Email        *string
	PasswordHash *string
	FullName     *string
	Phone        *string
	Gender       *Gender
	IsActive     *bool
}

// UpdateInput is the caller-facing patch; the service hashes Password and
// sanitizes free-text fields before handing off to the repository.
type UpdateInput struct {
	Username *string
	Email    *string
	Password *string
	FullName *string
	Phone    *string
	Gender   *Gender
	IsActive *bool
}

// Register creates a user and issues its bearer token as an explicit step of
// the workflow. actor is the authenticated requester, nil for anonymous
// registration.
func (s *Service) Register(ctx context.Context, actor *User, params RegisterParams) (*User, *Token, error) {
	if params.Role == auth.RoleAdmin && !actor.IsAdmin() {
		return nil, nil, ErrAdminRoleNotAllowed
	}

	if existing, err := s.repo.GetByUsername(ctx, params.Username); err == nil && existing != nil {
		return nil, nil, ErrUsernameTaken
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, nil, fmt.Errorf("check username: %w", err)
	}
	if params.Email != "" {
		if existing, err := s.repo.GetByEmail(ctx, params.Email); err == nil && existing != nil {
			return nil, nil, ErrEmailTaken
		} else if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, nil, fmt.Errorf("check email: %w", err)
		}
	}

	hash, err := auth.HashPassword(params.Password, s.bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, CreateParams{
		Username:     sanitize.Text(params.Username),
		Email:        params.Email,
		PasswordHash: hash,
		Role:         params.Role,
		FullName:     sanitize.Text(params.FullName),
		Phone:        params.Phone,
		Gender:       params.Gender,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("role", string(user.Role)).
		Msg("user registered")
	return user, token, nil
}

// Login validates credentials and returns the user's persistent token,
// issuing one on first login.
func (s *Service) Login(ctx context.Context, username, password string) (*User, *Token, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, auth.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("fetch user: %w", err)
	}
	if !user.IsActive {
		return nil, nil, auth.ErrInvalidCredentials
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, nil, auth.ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

// AuthenticateToken resolves a bearer key to its active user.
func (s *Service) AuthenticateToken(ctx context.Context, key string) (*User, error) {
	token, err := s.tokens.GetByKey(ctx, key)
	if err != nil || token == nil {
		return nil, auth.ErrInvalidToken
	}
	user, err := s.repo.GetByID(ctx, token.UserID)
	if err != nil || user == nil || !user.IsActive {
		return nil, auth.ErrInvalidToken
	}
	_ = s.tokens.TouchLastUsed(ctx, token.ID)
	return user, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filters Filters) ([]User, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*User, error) {
	params := UpdateParams{
		Username: sanitize.TextPtr(input.Username),
		Email:    input.Email,
		FullName: sanitize.TextPtr(input.FullName),
		Phone:    input.Phone,
		Gender:   input.Gender,
		IsActive: input.IsActive,
	}
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		params.PasswordHash = &hash
	}
	return s.repo.Update(ctx, id, params)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) issueToken(ctx context.Context, userID uuid.UUID) (*Token, error) {
	key, err := auth.GenerateTokenKey(s.tokenLength)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.GetOrCreate(ctx, userID, key)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

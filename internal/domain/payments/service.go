package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kimbia-events/server/internal/domain/users"
	"github.com/rs/zerolog"
)

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	List(ctx context.Context, filters Filters) ([]Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filters Filters) ([]Payment, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID, filters Filters) ([]Payment, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Payment, error)
	// Delete refuses with ErrProtected when the payment is PAID.
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryResolver resolves which marathon a category belongs to, for the
// cross-field check at creation.
type CategoryResolver interface {
	MarathonID(ctx context.Context, categoryID uuid.UUID) (uuid.UUID, error)
}

type Service struct {
	repo       Repository
	categories CategoryResolver
	logger     zerolog.Logger
}

func NewService(repo Repository, categories CategoryResolver, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		logger:     logger.With().Str("component", "payments").Logger(),
	}
}

type CreateParams struct {
	MarathonID uuid.UUID
	CategoryID uuid.UUID
	UserID     uuid.UUID
	Status     Status
}

type UpdateParams struct {
	Status         *Status
	ValidationDate *time.Time
}

type CreateInput struct {
	MarathonID uuid.UUID
	CategoryID uuid.UUID
}

// Create records a pending payment by the requester. Status is always forced
// to UNPAID and the payer is always the actor, regardless of the payload.
// The category must belong to the marathon being paid for.
func (s *Service) Create(ctx context.Context, actor *users.User, input CreateInput) (*Payment, error) {
	if actor == nil {
		return nil, fmt.Errorf("create payment: no requester")
	}

	marathonID, err := s.categories.MarathonID(ctx, input.CategoryID)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return nil, FieldError{Field: "category", Message: "no such category"}
		}
		return nil, fmt.Errorf("resolve category: %w", err)
	}
	if marathonID != input.MarathonID {
		return nil, FieldError{
			Field:   "category",
			Message: fmt.Sprintf("such marathon does not have a category with id=%s", input.CategoryID),
		}
	}

	created, err := s.repo.Create(ctx, CreateParams{
		MarathonID: input.MarathonID,
		CategoryID: input.CategoryID,
		UserID:     actor.ID,
		Status:     StatusUnpaid,
	})
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.logger.Info().
		Str("payment_id", created.ID.String()).
		Str("marathon_id", created.MarathonID.String()).
		Str("user_id", created.UserID.String()).
		Msg("payment recorded")
	return created, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return s.repo.GetByID(ctx, id)
}

// List narrows visibility by role: admins see every payment, organizers see
// payments under marathons they organize, clients see their own.
func (s *Service) List(ctx context.Context, actor *users.User, filters Filters) ([]Payment, error) {
	switch {
	case actor == nil:
		return nil, nil
	case actor.IsAdmin():
		return s.repo.List(ctx, filters)
	case actor.IsOrganizer():
		return s.repo.ListByOrganizer(ctx, actor.ID, filters)
	default:
		return s.repo.ListByUser(ctx, actor.ID, filters)
	}
}

// Update is the admin-only hook the external settlement process drives.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Payment, error) {
	return s.repo.Update(ctx, id, params)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

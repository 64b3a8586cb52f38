package marathons

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kimbia-events/server/internal/domain/categories"
	"github.com/kimbia-events/server/internal/domain/users"
	"github.com/kimbia-events/server/internal/sanitize"
)

type Repository interface {
	// Create persists the marathon together with its nested categories and
	// sponsors in one transaction.
	Create(ctx context.Context, params CreateParams) (*Marathon, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Marathon, error)
	List(ctx context.Context, filters Filters) ([]Marathon, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Marathon, error)
	// Delete removes the marathon; categories, sponsors and payments under
	// it go with it.
	Delete(ctx context.Context, id uuid.UUID) error
	OrganizerID(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CategoryInput struct {
	Name     categories.Name
	Price    float64
	Currency categories.Currency
}

type SponsorInput struct {
	Name string
}

type CreateParams struct {
	Name        string
	Theme       *string
	OrganizerID uuid.UUID
	StartDate   time.Time
	EndDate     time.Time
	Categories  []CategoryInput
	Sponsors    []SponsorInput
}

type UpdateParams struct {
	Name      *string
	Theme     *string
	StartDate *time.Time
	EndDate   *time.Time
}

// Create stores a marathon owned by the requester. The organizer field is
// always the actor, regardless of the payload.
func (s *Service) Create(ctx context.Context, actor *users.User, params CreateParams) (*Marathon, error) {
	if actor == nil {
		return nil, fmt.Errorf("create marathon: no requester")
	}
	params.OrganizerID = actor.ID
	params.Name = sanitize.Text(params.Name)
	params.Theme = sanitize.TextPtr(params.Theme)

	if params.Name == "" {
		return nil, FieldError{Field: "name", Message: "must not be empty"}
	}
	if !params.EndDate.After(params.StartDate) {
		return nil, FieldError{Field: "end_date", Message: "must be after start_date"}
	}
	if len(params.Categories) == 0 {
		return nil, FieldError{Field: "categories", Message: "at least one category is required"}
	}
	for _, category := range params.Categories {
		if category.Price < 0 {
			return nil, FieldError{Field: "categories", Message: "price must not be negative"}
		}
	}
	for i, sponsor := range params.Sponsors {
		params.Sponsors[i].Name = sanitize.Text(sponsor.Name)
		if params.Sponsors[i].Name == "" {
			return nil, FieldError{Field: "sponsors", Message: "sponsor name must not be empty"}
		}
	}

	created, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create marathon: %w", err)
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Marathon, error) {
	return s.repo.GetByID(ctx, id)
}

// List is unfiltered by ownership: any authorized role sees all marathons.
func (s *Service) List(ctx context.Context, filters Filters) ([]Marathon, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Marathon, error) {
	params.Name = sanitize.TextPtr(params.Name)
	params.Theme = sanitize.TextPtr(params.Theme)
	if params.Name != nil && *params.Name == "" {
		return nil, FieldError{Field: "name", Message: "must not be empty"}
	}
	if params.StartDate != nil && params.EndDate != nil && !params.EndDate.After(*params.StartDate) {
		return nil, FieldError{Field: "end_date", Message: "must be after start_date"}
	}
	return s.repo.Update(ctx, id, params)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

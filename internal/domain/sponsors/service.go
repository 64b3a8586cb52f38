package sponsors

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kimbia-events/server/internal/domain/users"
	"github.com/kimbia-events/server/internal/sanitize"
)

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Sponsor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Sponsor, error)
	List(ctx context.Context, filters Filters) ([]Sponsor, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Sponsor, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type MarathonResolver interface {
	OrganizerID(ctx context.Context, marathonID uuid.UUID) (uuid.UUID, error)
}

type Service struct {
	repo      Repository
	marathons MarathonResolver
}

func NewService(repo Repository, marathons MarathonResolver) *Service {
	return &Service{repo: repo, marathons: marathons}
}

type CreateParams struct {
	Name       string
	MarathonID uuid.UUID
}

type UpdateParams struct {
	Name *string
}

func (s *Service) Create(ctx context.Context, actor *users.User, params CreateParams) (*Sponsor, error) {
	params.Name = sanitize.Text(params.Name)
	if params.Name == "" {
		return nil, FieldError{Field: "name", Message: "must not be empty"}
	}

	organizerID, err := s.marathons.OrganizerID(ctx, params.MarathonID)
	if err != nil {
		if errors.Is(err, ErrMarathonNotFound) {
			return nil, FieldError{Field: "marathon", Message: "no such marathon"}
		}
		return nil, fmt.Errorf("resolve marathon: %w", err)
	}
	if !actor.IsAdmin() && (actor == nil || organizerID != actor.ID) {
		return nil, FieldError{Field: "marathon", Message: "cannot use a marathon which you do not organize"}
	}

	created, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create sponsor: %w", err)
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Sponsor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filters Filters) ([]Sponsor, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Sponsor, error) {
	if params.Name != nil {
		params.Name = sanitize.TextPtr(params.Name)
		if *params.Name == "" {
			return nil, FieldError{Field: "name", Message: "must not be empty"}
		}
	}
	return s.repo.Update(ctx, id, params)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kimbia-events/server/internal/domain/users"
)

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	List(ctx context.Context, filters Filters) ([]Category, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MarathonResolver looks up the organizer of a marathon so creation can
// reject marathons the requester does not organize.
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
	Name       Name
	Price      float64
	Currency   Currency
	MarathonID uuid.UUID
}

type UpdateParams struct {
	Name     *Name
	Price    *float64
	Currency *Currency
}

func (s *Service) Create(ctx context.Context, actor *users.User, params CreateParams) (*Category, error) {
	if params.Price < 0 {
		return nil, FieldError{Field: "price", Message: "must not be negative"}
	}
	if err := s.checkMarathon(ctx, actor, params.MarathonID); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Category, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filters Filters) ([]Category, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Category, error) {
	if params.Price != nil && *params.Price < 0 {
		return nil, FieldError{Field: "price", Message: "must not be negative"}
	}
	return s.repo.Update(ctx, id, params)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) checkMarathon(ctx context.Context, actor *users.User, marathonID uuid.UUID) error {
	organizerID, err := s.marathons.OrganizerID(ctx, marathonID)
	if err != nil {
		if errors.Is(err, ErrMarathonNotFound) {
			return FieldError{Field: "marathon", Message: "no such marathon"}
		}
		return fmt.Errorf("resolve marathon: %w", err)
	}
	if actor.IsAdmin() {
		return nil
	}
	if actor == nil || organizerID != actor.ID {
		return FieldError{Field: "marathon", Message: "cannot use a marathon which you do not organize"}
	}
	return nil
}

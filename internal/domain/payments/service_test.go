package payments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/kimbia-events/server/internal/auth"
	"github.com/kimbia-events/server/internal/domain/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubPaymentRepo struct {
	createFn          func(params CreateParams) (*Payment, error)
	getByIDFn         func(id uuid.UUID) (*Payment, error)
	listFn            func(filters Filters) ([]Payment, error)
	listByUserFn      func(userID uuid.UUID, filters Filters) ([]Payment, error)
	listByOrganizerFn func(organizerID uuid.UUID, filters Filters) ([]Payment, error)
	updateFn          func(id uuid.UUID, params UpdateParams) (*Payment, error)
	deleteFn          func(id uuid.UUID) error
}

func (s stubPaymentRepo) Create(_ context.Context, params CreateParams) (*Payment, error) {
	return s.createFn(params)
}

func (s stubPaymentRepo) GetByID(_ context.Context, id uuid.UUID) (*Payment, error) {
	return s.getByIDFn(id)
}

func (s stubPaymentRepo) List(_ context.Context, filters Filters) ([]Payment, error) {
	return s.listFn(filters)
}

func (s stubPaymentRepo) ListByUser(_ context.Context, userID uuid.UUID, filters Filters) ([]Payment, error) {
	return s.listByUserFn(userID, filters)
}

func (s stubPaymentRepo) ListByOrganizer(_ context.Context, organizerID uuid.UUID, filters Filters) ([]Payment, error) {
	return s.listByOrganizerFn(organizerID, filters)
}

func (s stubPaymentRepo) Update(_ context.Context, id uuid.UUID, params UpdateParams) (*Payment, error) {
	return s.updateFn(id, params)
}

func (s stubPaymentRepo) Delete(_ context.Context, id uuid.UUID) error {
	return s.deleteFn(id)
}

type stubCategoryResolver func(categoryID uuid.UUID) (uuid.UUID, error)

func (s stubCategoryResolver) MarathonID(_ context.Context, categoryID uuid.UUID) (uuid.UUID, error) {
	return s(categoryID)
}

func TestCreateForcesUnpaidAndActor(t *testing.T) {
	marathonID := uuid.New()
	categoryID := uuid.New()
	actor := &users.User{ID: uuid.New(), Role: auth.RoleClient}

	repo := stubPaymentRepo{
		createFn: func(params CreateParams) (*Payment, error) {
			require.Equal(t, StatusUnpaid, params.Status)
			require.Equal(t, actor.ID, params.UserID)
			return &Payment{
				ID: uuid.New(), MarathonID: params.MarathonID, CategoryID: params.CategoryID,
				UserID: params.UserID, Status: params.Status,
			}, nil
		},
	}
	resolver := stubCategoryResolver(func(uuid.UUID) (uuid.UUID, error) { return marathonID, nil })

	svc := NewService(repo, resolver, zerolog.Nop())
	created, err := svc.Create(context.Background(), actor, CreateInput{MarathonID: marathonID, CategoryID: categoryID})
	require.NoError(t, err)
	require.Equal(t, StatusUnpaid, created.Status)
	require.Equal(t, actor.ID, created.UserID)
	require.Nil(t, created.ValidationDate)
}

func TestCreateRejectsCategoryFromOtherMarathon(t *testing.T) {
	actor := &users.User{ID: uuid.New(), Role: auth.RoleClient}
	resolver := stubCategoryResolver(func(uuid.UUID) (uuid.UUID, error) { return uuid.New(), nil })

	svc := NewService(stubPaymentRepo{}, resolver, zerolog.Nop())
	_, err := svc.Create(context.Background(), actor, CreateInput{MarathonID: uuid.New(), CategoryID: uuid.New()})

	var fieldErr FieldError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "category", fieldErr.Field)
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	actor := &users.User{ID: uuid.New(), Role: auth.RoleClient}
	resolver := stubCategoryResolver(func(uuid.UUID) (uuid.UUID, error) { return uuid.Nil, ErrCategoryNotFound })

	svc := NewService(stubPaymentRepo{}, resolver, zerolog.Nop())
	_, err := svc.Create(context.Background(), actor, CreateInput{MarathonID: uuid.New(), CategoryID: uuid.New()})

	var fieldErr FieldError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "category", fieldErr.Field)
}

func TestListNarrowsByRole(t *testing.T) {
	all := []Payment{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}
	var byUserCalled, byOrganizerCalled uuid.UUID

	repo := stubPaymentRepo{
		listFn: func(Filters) ([]Payment, error) { return all, nil },
		listByUserFn: func(userID uuid.UUID, _ Filters) ([]Payment, error) {
			byUserCalled = userID
			return all[:1], nil
		},
		listByOrganizerFn: func(organizerID uuid.UUID, _ Filters) ([]Payment, error) {
			byOrganizerCalled = organizerID
			return all[:2], nil
		},
	}
	svc := NewService(repo, stubCategoryResolver(func(uuid.UUID) (uuid.UUID, error) { return uuid.Nil, nil }), zerolog.Nop())

	admin := &users.User{ID: uuid.New(), Role: auth.RoleAdmin}
	items, err := svc.List(context.Background(), admin, Filters{})
	require.NoError(t, err)
	require.Len(t, items, 3)

	organizer := &users.User{ID: uuid.New(), Role: auth.RoleOrganizer}
	items, err = svc.List(context.Background(), organizer, Filters{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, organizer.ID, byOrganizerCalled)

	client := &users.User{ID: uuid.New(), Role: auth.RoleClient}
	items, err = svc.List(context.Background(), client, Filters{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, client.ID, byUserCalled)

	items, err = svc.List(context.Background(), nil, Filters{})
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestDeletePropagatesProtected(t *testing.T) {
	repo := stubPaymentRepo{
		deleteFn: func(uuid.UUID) error { return ErrProtected },
	}
	svc := NewService(repo, stubCategoryResolver(func(uuid.UUID) (uuid.UUID, error) { return uuid.Nil, nil }), zerolog.Nop())

	err := svc.Delete(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrProtected)
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("paid")
	require.NoError(t, err)
	require.Equal(t, StatusPaid, status)

	_, err = ParseStatus("SETTLED")
	var fieldErr FieldError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "status", fieldErr.Field)
}

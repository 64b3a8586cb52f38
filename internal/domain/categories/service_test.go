package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/kimbia-events/server/internal/auth"
	"github.com/kimbia-events/server/internal/domain/users"
	"github.com/stretchr/testify/require"
)

type stubCategoryRepo struct {
	createFn  func(params CreateParams) (*Category, error)
	getByIDFn func(id uuid.UUID) (*Category, error)
	listFn    func(filters Filters) ([]Category, error)
	updateFn  func(id uuid.UUID, params UpdateParams) (*Category, error)
	deleteFn  func(id uuid.UUID) error
}

func (s stubCategoryRepo) Create(_ context.Context, params CreateParams) (*Category, error) {
	return s.createFn(params)
}

func (s stubCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*Category, error) {
	return s.getByIDFn(id)
}

func (s stubCategoryRepo) List(_ context.Context, filters Filters) ([]Category, error) {
	return s.listFn(filters)
}

func (s stubCategoryRepo) Update(_ context.Context, id uuid.UUID, params UpdateParams) (*Category, error) {
	return s.updateFn(id, params)
}

func (s stubCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	return s.deleteFn(id)
}

type stubMarathonResolver func(marathonID uuid.UUID) (uuid.UUID, error)

func (s stubMarathonResolver) OrganizerID(_ context.Context, marathonID uuid.UUID) (uuid.UUID, error) {
	return s(marathonID)
}

func TestCreateRequiresOrganizingTheMarathon(t *testing.T) {
	organizerID := uuid.New()
	resolver := stubMarathonResolver(func(uuid.UUID) (uuid.UUID, error) { return organizerID, nil })
	repo := stubCategoryRepo{
		createFn: func(params CreateParams) (*Category, error) {
			return &Category{ID: uuid.New(), Name: params.Name, MarathonID: params.MarathonID}, nil
		},
	}
	svc := NewService(repo, resolver)

	params := CreateParams{Name: NameFull, Price: 25, Currency: CurrencyTZS, MarathonID: uuid.New()}

	owner := &users.User{ID: organizerID, Role: auth.RoleOrganizer}
	_, err := svc.Create(context.Background(), owner, params)
	require.NoError(t, err)

	other := &users.User{ID: uuid.New(), Role: auth.RoleOrganizer}
	_, err = svc.Create(context.Background(), other, params)
	var fieldErr FieldError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "marathon", fieldErr.Field)

	// Admins may attach categories to any marathon.
	admin := &users.User{ID: uuid.New(), Role: auth.RoleAdmin}
	_, err = svc.Create(context.Background(), admin, params)
	require.NoError(t, err)
}

func TestCreateRejectsUnknownMarathon(t *testing.T) {
	resolver := stubMarathonResolver(func(uuid.UUID) (uuid.UUID, error) { return uuid.Nil, ErrMarathonNotFound })
	svc := NewService(stubCategoryRepo{}, resolver)

	actor := &users.User{ID: uuid.New(), Role: auth.RoleOrganizer}
	_, err := svc.Create(context.Background(), actor, CreateParams{Name: NameHalf, Price: 10, Currency: CurrencyUSD, MarathonID: uuid.New()})

	var fieldErr FieldError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "marathon", fieldErr.Field)
}

func TestCreateRejectsNegativePrice(t *testing.T) {
	svc := NewService(stubCategoryRepo{}, stubMarathonResolver(func(uuid.UUID) (uuid.UUID, error) { return uuid.Nil, nil }))

	actor := &users.User{ID: uuid.New(), Role: auth.RoleOrganizer}
	_, err := svc.Create(context.Background(), actor, CreateParams{Name: NameFull, Price: -5, Currency: CurrencyUSD, MarathonID: uuid.New()})

	var fieldErr FieldError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "price", fieldErr.Field)
}

func TestParseNameAndCurrency(t *testing.T) {
	name, err := ParseName("full")
	require.NoError(t, err)
	require.Equal(t, NameFull, name)

	_, err = ParseName("10K")
	require.Error(t, err)

	currency, err := ParseCurrency(" tzs ")
	require.NoError(t, err)
	require.Equal(t, CurrencyTZS, currency)

	_, err = ParseCurrency("EUR")
	require.Error(t, err)
}

package postgres

import (
	"context"
	"testing"

	"github.com/kimbia-events/server/internal/domain/sponsors"
	"github.com/stretchr/testify/require"
)

func TestSponsorRepositoryCRUD(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	repo, err := NewRepository(pool)
	require.NoError(t, err)

	organizerID := insertUser(t, ctx, pool, "organizer", "organizer")
	marathonID := insertMarathon(t, ctx, pool, "Kili", organizerID)

	created, err := repo.Sponsors().Create(ctx, sponsors.CreateParams{
		Name:       "Kili Water",
		MarathonID: marathonID,
	})
	require.NoError(t, err)
	require.Equal(t, "Kili Water", created.Name)
	require.Equal(t, organizerID, created.OrganizerID)

	name := "Kili Water Ltd"
	updated, err := repo.Sponsors().Update(ctx, created.ID, sponsors.UpdateParams{Name: &name})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)

	items, err := repo.Sponsors().List(ctx, sponsors.Filters{})
	require.NoError(t, err)
	require.Len(t, items, 1)

	filtered, err := repo.Sponsors().List(ctx, sponsors.Filters{ID: &created.ID})
	require.NoError(t, err)
	require.Len(t, filtered, 1)

	require.NoError(t, repo.Sponsors().Delete(ctx, created.ID))
	_, err = repo.Sponsors().GetByID(ctx, created.ID)
	require.ErrorIs(t, err, sponsors.ErrNotFound)
	require.ErrorIs(t, repo.Sponsors().Delete(ctx, created.ID), sponsors.ErrNotFound)
}

func TestRepositoryWithTxRollsBack(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	repo, err := NewRepository(pool)
	require.NoError(t, err)

	organizerID := insertUser(t, ctx, pool, "organizer", "organizer")
	marathonID := insertMarathon(t, ctx, pool, "Kili", organizerID)

	boom := sponsors.FieldError{Field: "name", Message: "boom"}
	err = repo.WithTx(ctx, func(ctx context.Context, tx *Repository) error {
		if _, err := tx.Sponsors().Create(ctx, sponsors.CreateParams{Name: "Ghost", MarathonID: marathonID}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	items, err := repo.Sponsors().List(ctx, sponsors.Filters{})
	require.NoError(t, err)
	require.Empty(t, items)
}

package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfrancke/seatly/internal/models"
	"github.com/mfrancke/seatly/internal/repositories"
)

func seedReservation(t *testing.T, repo *repositories.ReservationRepository, name, status string) *models.Reservation {
	t.Helper()
	created, err := repo.Create(context.Background(), &models.Reservation{
		CustomerName:    name,
		CustomerEmail:   "guest@example.com",
		CustomerPhone:   "555-0100",
		ReservationDate: "2025-07-04",
		ReservationTime: "19:30",
		PartySize:       4,
		Status:          status,
	})
	require.NoError(t, err)
	return created
}

func TestReservationRepository_CreateAndGet(t *testing.T) {
	db := requireDB(t)
	cleanupTables(t)

	repo := repositories.NewReservationRepository(db)
	created := seedReservation(t, repo, "Jane Smith", models.ReservationPending)

	got, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", got.CustomerName)
	assert.Equal(t, "2025-07-04", got.ReservationDate)
	assert.Equal(t, "19:30", got.ReservationTime)
	assert.Equal(t, models.ReservationPending, got.Status)
}

func TestReservationRepository_ListFiltersByStatus(t *testing.T) {
	db := requireDB(t)
	cleanupTables(t)

	repo := repositories.NewReservationRepository(db)
	seedReservation(t, repo, "Jane", models.ReservationPending)
	seedReservation(t, repo, "John", models.ReservationConfirmed)
	seedReservation(t, repo, "Mary", models.ReservationConfirmed)

	all, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	confirmed, err := repo.List(context.Background(), models.ReservationConfirmed)
	require.NoError(t, err)
	assert.Len(t, confirmed, 2)
}

func TestReservationRepository_Update(t *testing.T) {
	db := requireDB(t)
	cleanupTables(t)
	ctx := context.Background()

	repo := repositories.NewReservationRepository(db)
	created := seedReservation(t, repo, "Jane Smith", models.ReservationPending)

	created.Status = models.ReservationSeated
	created.PartySize = 6
	updated, err := repo.Update(ctx, created.ID, created)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationSeated, updated.Status)
	assert.Equal(t, 6, updated.PartySize)

	_, err = repo.Update(ctx, "00000000-0000-0000-0000-000000000000", created)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestReservationRepository_Delete(t *testing.T) {
	db := requireDB(t)
	cleanupTables(t)
	ctx := context.Background()

	repo := repositories.NewReservationRepository(db)
	created := seedReservation(t, repo, "Jane Smith", models.ReservationPending)

	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err := repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, created.ID), models.ErrNotFound)
}

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyreserve/airline-reservation/internal/database"
	"github.com/skyreserve/airline-reservation/internal/model"
)

func customerFixture(t *testing.T) (*CustomerRepo, *FlightRepo, *ReservationRepo) {
	t.Helper()
	db, d := newTestDB(t)
	seedAirline(t, db, "Skyways")
	seedAirplane(t, db, "Skyways", 1, 3)
	flights := NewFlightRepo(db, d)
	seedFlight(t, flights, "Skyways", 400)
	return NewCustomerRepo(db, d), flights, NewReservationRepo(db, d)
}

func TestCustomerCreateGetConflict(t *testing.T) {
	repo, _, _ := customerFixture(t)
	ctx := context.Background()

	c := &model.Customer{
		Email: "Alice@Example.com", Name: "Alice", PasswordHash: "h",
		BuildingNumber: "12", Street: "Main St", City: "Springfield", State: "IL",
	}
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.GetByEmail(ctx, " ALICE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "Alice", got.Name)

	assert.ErrorIs(t, repo.Create(ctx, c), ErrConflict)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerProfileAddress(t *testing.T) {
	repo, _, _ := customerFixture(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &model.Customer{
		Email: "alice@example.com", Name: "Alice", PasswordHash: "h",
		BuildingNumber: "12", Street: "Main St", City: "Springfield", State: "IL",
	}))

	profile, err := repo.Profile(ctx, "alice@example.com")
	require.NoError(t, err)
	// address is assembled in SQL via the dialect's concat fragment
	assert.Equal(t, "12 Main St, Springfield, IL", profile["address"])

	_, err = repo.Profile(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerSpending(t *testing.T) {
	repo, _, reservations := customerFixture(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &model.Customer{Email: "alice@example.com", PasswordHash: "h"}))

	_, err := reservations.Reserve(ctx, "Skyways", 400, "alice@example.com", nil)
	require.NoError(t, err)
	_, err = reservations.Reserve(ctx, "Skyways", 400, "alice@example.com", nil)
	require.NoError(t, err)

	total, err := repo.TotalSpentSince(ctx, "alice@example.com", 1, database.Years)
	require.NoError(t, err)
	assert.InDelta(t, 500.0, total, 0.01)

	months, err := repo.SpendingByMonthSince(ctx, "alice@example.com", 6, database.Months)
	require.NoError(t, err)
	require.Len(t, months, 1)
	assert.InDelta(t, 500.0, months[0]["total_spent"].(float64), 0.01)

	// a customer with no purchases spends zero
	require.NoError(t, repo.Create(ctx, &model.Customer{Email: "bob@example.com", PasswordHash: "h"}))
	total, err = repo.TotalSpentSince(ctx, "bob@example.com", 1, database.Years)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCustomerFlightsByStatus(t *testing.T) {
	repo, flights, reservations := customerFixture(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &model.Customer{Email: "alice@example.com", PasswordHash: "h"}))
	_, err := reservations.Reserve(ctx, "Skyways", 400, "alice@example.com", nil)
	require.NoError(t, err)

	upcoming, err := repo.FlightsByStatus(ctx, "alice@example.com", true)
	require.NoError(t, err)
	assert.Len(t, upcoming, 1)
	past, err := repo.FlightsByStatus(ctx, "alice@example.com", false)
	require.NoError(t, err)
	assert.Empty(t, past)

	require.NoError(t, flights.UpdateStatus(ctx, "Skyways", 400, model.FlightCompleted))
	upcoming, err = repo.FlightsByStatus(ctx, "alice@example.com", true)
	require.NoError(t, err)
	assert.Empty(t, upcoming)
	past, err = repo.FlightsByStatus(ctx, "alice@example.com", false)
	require.NoError(t, err)
	assert.Len(t, past, 1)
}

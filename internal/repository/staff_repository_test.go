package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyreserve/airline-reservation/internal/database"
	"github.com/skyreserve/airline-reservation/internal/model"
)

func staffFixture(t *testing.T) (*StaffRepo, *FlightRepo, *ReservationRepo) {
	t.Helper()
	db, d := newTestDB(t)
	seedAirline(t, db, "Skyways")
	seedAirplane(t, db, "Skyways", 1, 3)
	flights := NewFlightRepo(db, d)
	seedFlight(t, flights, "Skyways", 300)
	seedCustomer(t, db, "alice@example.com")
	seedAgent(t, db, "agent@example.com", 7, "Skyways")
	return NewStaffRepo(db, d), flights, NewReservationRepo(db, d)
}

func TestStaffCreateAndGet(t *testing.T) {
	repo, _, _ := staffFixture(t)
	ctx := context.Background()

	s := &model.AirlineStaff{
		Username: "Ops@Skyways.example", PasswordHash: "h",
		FirstName: "Ada", LastName: "Ops", DateOfBirth: "1990-01-01", AirlineName: "Skyways",
	}
	require.NoError(t, repo.Create(ctx, s))
	// username is normalized on write and lookup
	got, err := repo.GetByUsername(ctx, "  OPS@skyways.example ")
	require.NoError(t, err)
	assert.Equal(t, "ops@skyways.example", got.Username)
	assert.Equal(t, "Skyways", got.AirlineName)

	assert.ErrorIs(t, repo.Create(ctx, s), ErrConflict)

	_, err = repo.GetByUsername(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGrantPermission(t *testing.T) {
	repo, _, _ := staffFixture(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &model.AirlineStaff{
		Username: "ops@skyways.example", PasswordHash: "h", AirlineName: "Skyways",
	}))

	ok, err := repo.HasPermission(ctx, "ops@skyways.example", model.PermissionOperator)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.GrantPermission(ctx, "ops@skyways.example", model.PermissionOperator))
	ok, err = repo.HasPermission(ctx, "ops@skyways.example", model.PermissionOperator)
	require.NoError(t, err)
	assert.True(t, ok)

	// double grant and unknown grantee
	assert.ErrorIs(t, repo.GrantPermission(ctx, "ops@skyways.example", model.PermissionOperator), ErrConflict)
	assert.ErrorIs(t, repo.GrantPermission(ctx, "ghost@skyways.example", model.PermissionAdmin), ErrNotFound)

	// Operator does not imply Admin
	ok, err = repo.HasPermission(ctx, "ops@skyways.example", model.PermissionAdmin)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSalesAndRevenueReports(t *testing.T) {
	repo, _, reservations := staffFixture(t)
	ctx := context.Background()

	// two direct sales, one via agent 7
	_, err := reservations.Reserve(ctx, "Skyways", 300, "alice@example.com", nil)
	require.NoError(t, err)
	_, err = reservations.Reserve(ctx, "Skyways", 300, "alice@example.com", nil)
	require.NoError(t, err)
	agentID := int64(7)
	_, err = reservations.Reserve(ctx, "Skyways", 300, "alice@example.com", &agentID)
	require.NoError(t, err)

	total, err := repo.TicketsSoldSince(ctx, "Skyways", 1, database.Years)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	months, err := repo.MonthWiseSalesSince(ctx, "Skyways", 1, database.Years)
	require.NoError(t, err)
	require.Len(t, months, 1)
	assert.Equal(t, int64(3), months[0]["tickets_sold"])

	direct, err := repo.RevenueSince(ctx, "Skyways", false, 1, database.Months)
	require.NoError(t, err)
	assert.InDelta(t, 500.0, direct, 0.01) // 2 x 250

	viaAgent, err := repo.RevenueSince(ctx, "Skyways", true, 1, database.Months)
	require.NoError(t, err)
	assert.InDelta(t, 250.0, viaAgent, 0.01)

	agents, err := repo.TopAgentsBySales(ctx, 1, database.Months, 5)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "agent@example.com", agents[0]["email"])
	assert.Equal(t, int64(1), agents[0]["tickets_sold"])

	commissions, err := repo.TopAgentsByCommission(ctx, 1, database.Years, 5)
	require.NoError(t, err)
	require.Len(t, commissions, 1)
	assert.InDelta(t, 12.5, commissions[0]["commission_received"], 0.01) // 5% of 250

	frequent, err := repo.FrequentCustomers(ctx, "Skyways", 1, database.Years, 10)
	require.NoError(t, err)
	require.Len(t, frequent, 1)
	assert.Equal(t, "alice@example.com", frequent[0]["email"])
	assert.Equal(t, int64(3), frequent[0]["num_tickets"])
}

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyreserve/airline-reservation/internal/database"
)

func agentFixture(t *testing.T) (*AgentRepo, *ReservationRepo) {
	t.Helper()
	db, d := newTestDB(t)
	seedAirline(t, db, "Skyways")
	seedAirplane(t, db, "Skyways", 1, 4)
	flights := NewFlightRepo(db, d)
	seedFlight(t, flights, "Skyways", 500)
	seedCustomer(t, db, "alice@example.com")
	seedCustomer(t, db, "bob@example.com")
	seedAgent(t, db, "agent@example.com", 7, "Skyways")
	return NewAgentRepo(db, d), NewReservationRepo(db, d)
}

func TestAgentAirlineFor(t *testing.T) {
	repo, _ := agentFixture(t)
	ctx := context.Background()

	airline, err := repo.AirlineFor(ctx, "agent@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Skyways", airline)

	_, err = repo.AirlineFor(ctx, "loner@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAgentCommission(t *testing.T) {
	repo, reservations := agentFixture(t)
	ctx := context.Background()
	agentID := int64(7)

	for _, email := range []string{"alice@example.com", "alice@example.com", "bob@example.com"} {
		_, err := reservations.Reserve(ctx, "Skyways", 500, email, &agentID)
		require.NoError(t, err)
	}
	// direct sale does not count toward commission
	_, err := reservations.Reserve(ctx, "Skyways", 500, "alice@example.com", nil)
	require.NoError(t, err)

	summary, err := repo.CommissionSince(ctx, agentID, 30, database.Days)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary["total_tickets_sold"])
	assert.InDelta(t, 37.5, summary["total_commission"].(float64), 0.01)       // 3 x 250 x 5%
	assert.InDelta(t, 12.5, summary["avg_commission_per_ticket"].(float64), 0.01)

	top, err := repo.TopCustomersByTickets(ctx, agentID, 6, database.Months, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "alice@example.com", top[0]["customer_email"])
	assert.Equal(t, int64(2), top[0]["tickets_bought"])
}

package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyreserve/airline-reservation/internal/database"
)

func reservationFixture(t *testing.T, seats int) (*ReservationRepo, *FlightRepo) {
	t.Helper()
	db, d := newTestDB(t)
	seedAirline(t, db, "Skyways")
	seedAirplane(t, db, "Skyways", 1, seats)
	flights := NewFlightRepo(db, d)
	seedFlight(t, flights, "Skyways", 101)
	seedCustomer(t, db, "alice@example.com")
	seedCustomer(t, db, "bob@example.com")
	seedCustomer(t, db, "carol@example.com")
	return NewReservationRepo(db, d), flights
}

func TestReserveUntilSoldOut(t *testing.T) {
	repo, _ := reservationFixture(t, 2)
	ctx := context.Background()

	first, err := repo.Reserve(ctx, "Skyways", 101, "alice@example.com", nil)
	require.NoError(t, err)
	second, err := repo.Reserve(ctx, "Skyways", 101, "bob@example.com", nil)
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "distinct purchases must get distinct tickets")

	// lowest free ticket id is always picked first
	assert.Less(t, first, second)

	_, err = repo.Reserve(ctx, "Skyways", 101, "carol@example.com", nil)
	assert.ErrorIs(t, err, ErrNoInventory)

	free, err := repo.FreeTickets(ctx, "Skyways", 101)
	require.NoError(t, err)
	assert.Equal(t, 0, free)
}

func TestReserveRecordsAgentChannel(t *testing.T) {
	repo, _ := reservationFixture(t, 2)
	ctx := context.Background()

	direct, err := repo.Reserve(ctx, "Skyways", 101, "alice@example.com", nil)
	require.NoError(t, err)
	agentID := int64(7)
	mediated, err := repo.Reserve(ctx, "Skyways", 101, "bob@example.com", &agentID)
	require.NoError(t, err)

	email, agent, date, err := repo.GetPurchase(ctx, direct)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)
	assert.Nil(t, agent)
	assert.NotEmpty(t, date)

	email, agent, _, err = repo.GetPurchase(ctx, mediated)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", email)
	require.NotNil(t, agent)
	assert.Equal(t, int64(7), *agent)
}

func TestReserveUnknownFlight(t *testing.T) {
	repo, _ := reservationFixture(t, 1)
	_, err := repo.Reserve(context.Background(), "Skyways", 999, "alice@example.com", nil)
	assert.ErrorIs(t, err, ErrNoInventory)
}

// K concurrent attempts against M free tickets: exactly M succeed with
// distinct ticket ids, the other K-M see the sold-out error, and the
// flight is never oversold.
func TestReserveConcurrent(t *testing.T) {
	const attempts, seats = 8, 5
	repo, _ := reservationFixture(t, seats)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make(chan int64, attempts)
	failures := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := repo.Reserve(ctx, "Skyways", 101, "alice@example.com", nil)
			if err != nil {
				failures <- err
				return
			}
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)
	close(failures)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "ticket %d allocated twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, seats)

	var soldOut int
	for err := range failures {
		require.ErrorIs(t, err, ErrNoInventory)
		soldOut++
	}
	assert.Equal(t, attempts-seats, soldOut)

	free, err := repo.FreeTickets(ctx, "Skyways", 101)
	require.NoError(t, err)
	assert.Equal(t, 0, free)
}

func TestGetPurchaseNotFound(t *testing.T) {
	repo, _ := reservationFixture(t, 1)
	_, _, _, err := repo.GetPurchase(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Purchases never span flights: reserving on one flight must not touch
// another flight's inventory.
func TestReserveScopedToFlight(t *testing.T) {
	repo, flights := reservationFixture(t, 2)
	seedFlight(t, flights, "Skyways", 102)
	ctx := context.Background()

	_, err := repo.Reserve(ctx, "Skyways", 101, "alice@example.com", nil)
	require.NoError(t, err)

	free, err := repo.FreeTickets(ctx, "Skyways", 102)
	require.NoError(t, err)
	assert.Equal(t, 2, free)

	rows, err := database.QueryMaps(ctx, flights.DB(), `SELECT ticket_id FROM purchases`)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

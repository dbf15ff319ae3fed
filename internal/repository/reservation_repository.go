package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/skyreserve/airline-reservation/internal/database"
)

// ReservationRepo implements the ticket reservation protocol: find one
// unsold ticket of a flight and atomically record its purchase.  The
// ticket/purchase pair is the only shared mutable state in the system,
// so every mutation here runs inside a single transaction boundary.
type ReservationRepo struct {
	db *sql.DB
	d  database.Dialect
}

// NewReservationRepo returns a ReservationRepo bound to the given
// database handle and dialect.
func NewReservationRepo(db *sql.DB, d database.Dialect) *ReservationRepo {
	return &ReservationRepo{db: db, d: d}
}

// pickAttempts bounds how many times a lost insert race is re-picked
// against a different free ticket before giving up with ErrConflict.
const pickAttempts = 3

// errLostRace signals that another transaction purchased the picked
// ticket between our select and insert.
var errLostRace = errors.New("ticket taken by concurrent purchase")

// Reserve allocates one unsold ticket of the flight to customerEmail
// and returns its id.  agentID is nil for direct customer purchases
// and non-nil for agent-mediated ones.  Within one transaction it
// selects a free ticket (anti-join on purchases, lowest id first) and
// inserts the purchase row with the current date.
//
// Two concurrent calls can never allocate the same ticket: on MySQL
// the select holds a row lock until commit; on SQLite writers are
// serialized by the engine.  Should a race slip through anyway, the
// primary key on purchases.ticket_id rejects the second insert and the
// reservation is re-picked against a different free ticket, a bounded
// number of times.
//
// Returns ErrNoInventory when the flight has no free ticket left and
// ErrConflict when every re-pick lost its race.
func (r *ReservationRepo) Reserve(ctx context.Context, airline string, flightNum int64, customerEmail string, agentID *int64) (int64, error) {
	for attempt := 0; attempt < pickAttempts; attempt++ {
		ticketID, err := r.reserveOnce(ctx, airline, flightNum, customerEmail, agentID)
		if errors.Is(err, errLostRace) {
			continue
		}
		return ticketID, err
	}
	return 0, ErrConflict
}

// reserveOnce runs one select-then-insert attempt in its own
// transaction boundary.
func (r *ReservationRepo) reserveOnce(ctx context.Context, airline string, flightNum int64, customerEmail string, agentID *int64) (int64, error) {
	var ticketID int64
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		sel := r.d.Translate(`SELECT t.ticket_id
		        FROM ticket t
		        LEFT JOIN purchases p ON t.ticket_id = p.ticket_id
		        WHERE t.airline_name = ? AND t.flight_num = ? AND p.ticket_id IS NULL
		        ORDER BY t.ticket_id
		        LIMIT 1`) + r.d.LockSuffix()
		if err := tx.QueryRowContext(ctx, sel, airline, flightNum).Scan(&ticketID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNoInventory
			}
			return err
		}

		ins := r.d.Translate(fmt.Sprintf(`INSERT INTO purchases (ticket_id, customer_email, booking_agent_id, purchase_date)
		        VALUES (?, ?, ?, %s)`, r.d.NowDate()))
		if _, err := tx.ExecContext(ctx, ins, ticketID, customerEmail, agentID); err != nil {
			if isDuplicateKey(err) {
				return errLostRace
			}
			return err
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return ticketID, nil
}

// FreeTickets returns how many unsold tickets remain on a flight.
func (r *ReservationRepo) FreeTickets(ctx context.Context, airline string, flightNum int64) (int, error) {
	q := r.d.Translate(`SELECT COUNT(*)
	        FROM ticket t
	        LEFT JOIN purchases p ON t.ticket_id = p.ticket_id
	        WHERE t.airline_name = ? AND t.flight_num = ? AND p.ticket_id IS NULL`)
	var n int
	if err := r.db.QueryRowContext(ctx, q, airline, flightNum).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// GetPurchase returns the purchase row for a ticket id, or ErrNotFound.
func (r *ReservationRepo) GetPurchase(ctx context.Context, ticketID int64) (customerEmail string, agentID *int64, purchaseDate string, err error) {
	q := r.d.Translate(`SELECT customer_email, booking_agent_id, purchase_date
	        FROM purchases WHERE ticket_id = ?`)
	var agent sql.NullInt64
	err = r.db.QueryRowContext(ctx, q, ticketID).Scan(&customerEmail, &agent, &purchaseDate)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, "", ErrNotFound
	}
	if err != nil {
		return "", nil, "", err
	}
	if agent.Valid {
		a := agent.Int64
		agentID = &a
	}
	return customerEmail, agentID, purchaseDate, nil
}

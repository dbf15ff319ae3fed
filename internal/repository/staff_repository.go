package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/skyreserve/airline-reservation/internal/database"
	"github.com/skyreserve/airline-reservation/internal/model"
)

// StaffRepo provides data access for airline staff accounts, their
// Admin/Operator permissions, and the airline-wide sales and revenue
// reports staff can view.
type StaffRepo struct {
	db *sql.DB
	d  database.Dialect
}

// NewStaffRepo returns a StaffRepo bound to the given database.
func NewStaffRepo(db *sql.DB, d database.Dialect) *StaffRepo {
	return &StaffRepo{db: db, d: d}
}

// GetByUsername fetches a staff member by username (their email).
func (r *StaffRepo) GetByUsername(ctx context.Context, username string) (*model.AirlineStaff, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	q := r.d.Translate(`SELECT username, password, first_name, last_name, date_of_birth, airline_name
	        FROM airline_staff WHERE username = ?`)
	var s model.AirlineStaff
	err := r.db.QueryRowContext(ctx, q, username).Scan(
		&s.Username, &s.PasswordHash, &s.FirstName, &s.LastName, &s.DateOfBirth, &s.AirlineName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new staff member.  The airline must already exist;
// a duplicate username yields ErrConflict.
func (r *StaffRepo) Create(ctx context.Context, s *model.AirlineStaff) error {
	q := r.d.Translate(`INSERT INTO airline_staff (username, password, first_name, last_name, airline_name, date_of_birth)
	        VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, q,
		strings.ToLower(strings.TrimSpace(s.Username)), s.PasswordHash,
		s.FirstName, s.LastName, s.AirlineName, s.DateOfBirth)
	if isDuplicateKey(err) {
		return ErrConflict
	}
	return err
}

// HasPermission reports whether the staff member holds the given
// permission type (Admin or Operator).
func (r *StaffRepo) HasPermission(ctx context.Context, username, permission string) (bool, error) {
	q := r.d.Translate(`SELECT 1 FROM permission WHERE username = ? AND permission_type = ?`)
	var one int
	err := r.db.QueryRowContext(ctx, q, username, permission).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// GrantPermission gives a staff member an additional permission.  The
// grantee must exist (ErrNotFound) and must not already hold the
// permission (ErrConflict).
func (r *StaffRepo) GrantPermission(ctx context.Context, username, permission string) error {
	if _, err := r.GetByUsername(ctx, username); err != nil {
		return err
	}
	already, err := r.HasPermission(ctx, username, permission)
	if err != nil {
		return err
	}
	if already {
		return ErrConflict
	}
	q := r.d.Translate(`INSERT INTO permission (username, permission_type) VALUES (?, ?)`)
	if _, err := r.db.ExecContext(ctx, q, username, permission); err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// ListByAirline lists the staff members of an airline, for the
// permission-granting page.
func (r *StaffRepo) ListByAirline(ctx context.Context, airline string) ([]database.Row, error) {
	q := r.d.Translate(`SELECT username, first_name, last_name FROM airline_staff WHERE airline_name = ?`)
	return database.QueryMaps(ctx, r.db, q, airline)
}

// ---- airline-wide reports ----

// TicketsSoldSince counts tickets sold for the airline over the past n
// units.
func (r *StaffRepo) TicketsSoldSince(ctx context.Context, airline string, n int, unit database.Interval) (int, error) {
	q := fmt.Sprintf(`SELECT COUNT(p.ticket_id)
	        FROM purchases p
	        JOIN ticket t ON p.ticket_id = t.ticket_id AND t.airline_name = ?
	        WHERE p.purchase_date >= %s`, r.d.DateAgo(n, unit))
	var total int
	err := r.db.QueryRowContext(ctx, r.d.Translate(q), airline).Scan(&total)
	return total, err
}

// TicketsSoldBetween counts tickets sold for the airline in a date range.
func (r *StaffRepo) TicketsSoldBetween(ctx context.Context, airline, start, end string) (int, error) {
	q := r.d.Translate(`SELECT COUNT(p.ticket_id)
	        FROM purchases p
	        JOIN ticket t ON p.ticket_id = t.ticket_id AND t.airline_name = ?
	        WHERE p.purchase_date BETWEEN ? AND ?`)
	var total int
	err := r.db.QueryRowContext(ctx, q, airline, start, end).Scan(&total)
	return total, err
}

// MonthWiseSalesSince buckets the airline's ticket sales by month over
// the past n units.
func (r *StaffRepo) MonthWiseSalesSince(ctx context.Context, airline string, n int, unit database.Interval) ([]database.Row, error) {
	q := fmt.Sprintf(`SELECT %s AS month, COUNT(p.ticket_id) AS tickets_sold
	        FROM purchases p
	        JOIN ticket t ON p.ticket_id = t.ticket_id AND t.airline_name = ?
	        WHERE p.purchase_date >= %s
	        GROUP BY month
	        ORDER BY month`, r.d.MonthBucket("p.purchase_date"), r.d.DateAgo(n, unit))
	return database.QueryMaps(ctx, r.db, r.d.Translate(q), airline)
}

// MonthWiseSalesBetween buckets the airline's ticket sales by month
// over an explicit date range.
func (r *StaffRepo) MonthWiseSalesBetween(ctx context.Context, airline, start, end string) ([]database.Row, error) {
	q := fmt.Sprintf(`SELECT %s AS month, COUNT(p.ticket_id) AS tickets_sold
	        FROM purchases p
	        JOIN ticket t ON p.ticket_id = t.ticket_id AND t.airline_name = ?
	        WHERE p.purchase_date BETWEEN ? AND ?
	        GROUP BY month
	        ORDER BY month`, r.d.MonthBucket("p.purchase_date"))
	return database.QueryMaps(ctx, r.db, r.d.Translate(q), airline, start, end)
}

// RevenueSince returns the airline's ticket revenue over the past n
// units, split by sales channel: direct purchases when viaAgent is
// false, agent-mediated when true.
func (r *StaffRepo) RevenueSince(ctx context.Context, airline string, viaAgent bool, n int, unit database.Interval) (float64, error) {
	null := "IS NULL"
	if viaAgent {
		null = "IS NOT NULL"
	}
	q := fmt.Sprintf(`SELECT COALESCE(SUM(f.price), 0)
	        FROM purchases p
	        JOIN ticket t ON p.ticket_id = t.ticket_id
	        JOIN flight f ON t.flight_num = f.flight_num AND t.airline_name = f.airline_name
	        WHERE f.airline_name = ? AND p.booking_agent_id %s AND p.purchase_date >= %s`,
		null, r.d.DateAgo(n, unit))
	var total float64
	err := r.db.QueryRowContext(ctx, r.d.Translate(q), airline).Scan(&total)
	return total, err
}

// TopAgentsBySales ranks booking agents by tickets sold over the past
// n units.
func (r *StaffRepo) TopAgentsBySales(ctx context.Context, n int, unit database.Interval, limit int) ([]database.Row, error) {
	q := fmt.Sprintf(`SELECT ba.email, COUNT(p.ticket_id) AS tickets_sold
	        FROM booking_agent ba
	        LEFT JOIN purchases p ON ba.booking_agent_id = p.booking_agent_id
	          AND p.purchase_date >= %s
	        GROUP BY ba.email
	        ORDER BY tickets_sold DESC
	        LIMIT %d`, r.d.DateAgo(n, unit), limit)
	return database.QueryMaps(ctx, r.db, r.d.Translate(q))
}

// TopAgentsByCommission ranks booking agents by commission earned over
// the past n units.
func (r *StaffRepo) TopAgentsByCommission(ctx context.Context, n int, unit database.Interval, limit int) ([]database.Row, error) {
	q := fmt.Sprintf(`SELECT ba.email, COALESCE(SUM(f.price * 0.05), 0) AS commission_received
	        FROM booking_agent ba
	        LEFT JOIN purchases p ON ba.booking_agent_id = p.booking_agent_id
	          AND p.purchase_date >= %s
	        LEFT JOIN ticket t ON p.ticket_id = t.ticket_id
	        LEFT JOIN flight f ON t.flight_num = f.flight_num AND t.airline_name = f.airline_name
	        GROUP BY ba.email
	        ORDER BY commission_received DESC
	        LIMIT %d`, r.d.DateAgo(n, unit), limit)
	return database.QueryMaps(ctx, r.db, r.d.Translate(q))
}

// FrequentCustomers ranks the airline's customers by tickets bought
// over the past n units.
func (r *StaffRepo) FrequentCustomers(ctx context.Context, airline string, n int, unit database.Interval, limit int) ([]database.Row, error) {
	q := fmt.Sprintf(`SELECT c.email, c.name, COUNT(p.ticket_id) AS num_tickets
	        FROM customer c
	        JOIN purchases p ON c.email = p.customer_email
	        JOIN ticket t ON p.ticket_id = t.ticket_id AND t.airline_name = ?
	        WHERE p.purchase_date >= %s
	        GROUP BY c.email, c.name
	        ORDER BY num_tickets DESC
	        LIMIT %d`, r.d.DateAgo(n, unit), limit)
	return database.QueryMaps(ctx, r.db, r.d.Translate(q), airline)
}

// CustomerFlights lists the flights a customer has flown (or will fly)
// on the airline.
func (r *StaffRepo) CustomerFlights(ctx context.Context, airline, customerEmail string) ([]database.Row, error) {
	q := r.d.Translate(`SELECT f.flight_num, f.departure_time, f.arrival_time, f.departure_airport, f.arrival_airport
	        FROM purchases p
	        JOIN ticket t ON p.ticket_id = t.ticket_id AND t.airline_name = ?
	        JOIN flight f ON t.flight_num = f.flight_num AND t.airline_name = f.airline_name
	        WHERE p.customer_email = ?
	        ORDER BY f.departure_time`)
	return database.QueryMaps(ctx, r.db, q, airline, customerEmail)
}

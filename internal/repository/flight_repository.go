package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skyreserve/airline-reservation/internal/database"
	"github.com/skyreserve/airline-reservation/internal/model"
)

// FlightRepo provides data access for flights and their generated
// ticket inventory.  Browse and reporting queries return map-shaped
// rows so the web layer reads columns by name on either backend.
type FlightRepo struct {
	db *sql.DB
	d  database.Dialect
}

// NewFlightRepo returns a FlightRepo bound to the given database.
func NewFlightRepo(db *sql.DB, d database.Dialect) *FlightRepo {
	return &FlightRepo{db: db, d: d}
}

// DB exposes the underlying handle for handlers that need to share a
// transaction across repositories.
func (r *FlightRepo) DB() *sql.DB { return r.db }

// All returns every flight, for the public landing page.
func (r *FlightRepo) All(ctx context.Context) ([]database.Row, error) {
	return database.QueryMaps(ctx, r.db, r.d.Translate(`SELECT * FROM flight`))
}

// DistinctAirports returns the distinct values of the given airport
// column ("departure_airport" or "arrival_airport").
func (r *FlightRepo) DistinctAirports(ctx context.Context, col string) ([]string, error) {
	if col != "departure_airport" && col != "arrival_airport" {
		return nil, fmt.Errorf("unsupported airport column %q", col)
	}
	rows, err := r.db.QueryContext(ctx, r.d.Translate(`SELECT DISTINCT `+col+` FROM flight ORDER BY `+col))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Search returns flights matching source, destination and departure
// date ('YYYY-MM-DD').  A non-empty airline restricts results to that
// airline, used for booking agents, who may only sell for airlines
// they work for.
func (r *FlightRepo) Search(ctx context.Context, source, destination, date, airline string) ([]database.Row, error) {
	q := `SELECT * FROM flight
	      WHERE departure_airport = ?
	        AND arrival_airport = ?
	        AND DATE(departure_time) = ?`
	args := []any{source, destination, date}
	if airline != "" {
		q += ` AND airline_name = ?`
		args = append(args, airline)
	}
	return database.QueryMaps(ctx, r.db, r.d.Translate(q), args...)
}

// GetByNum returns the first flight with the given number, regardless
// of airline.  Used by the public details page where only the number
// is known.  Returns ErrNotFound when no flight matches.
func (r *FlightRepo) GetByNum(ctx context.Context, flightNum int64) (database.Row, error) {
	row, err := database.QueryMap(ctx, r.db, r.d.Translate(`SELECT * FROM flight WHERE flight_num = ?`), flightNum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return row, err
}

// Get returns one flight identified by (airline, number).
func (r *FlightRepo) Get(ctx context.Context, airline string, flightNum int64) (*model.Flight, error) {
	q := r.d.Translate(`SELECT airline_name, flight_num, departure_airport, departure_time,
	        arrival_airport, arrival_time, price, status, airplane_id
	        FROM flight WHERE airline_name = ? AND flight_num = ?`)
	var (
		f        model.Flight
		dep, arr any
	)
	err := r.db.QueryRowContext(ctx, q, airline, flightNum).Scan(
		&f.AirlineName, &f.FlightNum, &f.DepartureAirport, &dep,
		&f.ArrivalAirport, &arr, &f.Price, &f.Status, &f.AirplaneID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if f.DepartureTime, err = asTime(dep); err != nil {
		return nil, err
	}
	if f.ArrivalTime, err = asTime(arr); err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a flight and bulk-generates its ticket inventory (one
// ticket per seat on the assigned airplane) in a single transaction.
// A duplicate (airline, number) pair yields ErrConflict; an unknown
// airplane yields ErrNotFound.  Nothing is visible unless both the
// flight and all its tickets commit together.
func (r *FlightRepo) Create(ctx context.Context, f *model.Flight) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var seats int
		seatQ := r.d.Translate(`SELECT seats FROM airplane WHERE airline_name = ? AND airplane_id = ?`)
		if err := tx.QueryRowContext(ctx, seatQ, f.AirlineName, f.AirplaneID).Scan(&seats); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		ins := r.d.Translate(`INSERT INTO flight (airline_name, flight_num, departure_airport, departure_time,
		        arrival_airport, arrival_time, price, status, airplane_id)
		        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		_, err := tx.ExecContext(ctx, ins,
			f.AirlineName, f.FlightNum, f.DepartureAirport, f.DepartureTime.UTC().Format("2006-01-02 15:04:05"),
			f.ArrivalAirport, f.ArrivalTime.UTC().Format("2006-01-02 15:04:05"), f.Price, f.Status, f.AirplaneID)
		if err != nil {
			if isDuplicateKey(err) {
				return ErrConflict
			}
			return err
		}

		return createTicketsTx(ctx, tx, r.d, f.AirlineName, f.FlightNum, seats)
	})
}

// createTicketsTx bulk-inserts the ticket rows for a new flight inside
// the caller's transaction.
func createTicketsTx(ctx context.Context, tx *sql.Tx, d database.Dialect, airline string, flightNum int64, seats int) error {
	if seats <= 0 {
		return nil
	}
	query := `INSERT INTO ticket (airline_name, flight_num) VALUES `
	args := make([]any, 0, seats*2)
	for i := 0; i < seats; i++ {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, airline, flightNum)
	}
	_, err := tx.ExecContext(ctx, d.Translate(query), args...)
	return err
}

// UpdateStatus changes a flight's status.  Returns ErrNotFound when
// the flight does not exist.
func (r *FlightRepo) UpdateStatus(ctx context.Context, airline string, flightNum int64, status string) error {
	q := r.d.Translate(`UPDATE flight SET status = ? WHERE airline_name = ? AND flight_num = ?`)
	res, err := r.db.ExecContext(ctx, q, status, airline, flightNum)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpcomingWithCounts lists an airline's flights departing within the
// next 30 days together with the number of sold tickets on each.
func (r *FlightRepo) UpcomingWithCounts(ctx context.Context, airline string) ([]database.Row, error) {
	q := fmt.Sprintf(`SELECT f.flight_num, f.departure_time, f.arrival_time, f.departure_airport, f.arrival_airport,
	        f.airline_name, COUNT(p.ticket_id) AS num_customers
	        FROM flight f
	        LEFT JOIN ticket t ON f.flight_num = t.flight_num AND f.airline_name = t.airline_name
	        LEFT JOIN purchases p ON t.ticket_id = p.ticket_id
	        WHERE f.airline_name = ? AND f.departure_time BETWEEN %s AND %s
	        GROUP BY f.flight_num
	        ORDER BY f.departure_time`, r.d.NowDate(), r.d.DateAhead(30, database.Days))
	return database.QueryMaps(ctx, r.db, r.d.Translate(q), airline)
}

// FilterWithCounts lists an airline's flights in a date range with
// optional airport substring filters, together with sold-ticket counts.
func (r *FlightRepo) FilterWithCounts(ctx context.Context, airline, start, end, source, destination string) ([]database.Row, error) {
	q := r.d.Translate(`SELECT f.flight_num, f.departure_time, f.arrival_time, f.departure_airport, f.arrival_airport,
	        COUNT(p.ticket_id) AS num_customers
	        FROM flight f
	        LEFT JOIN ticket t ON f.flight_num = t.flight_num AND f.airline_name = t.airline_name
	        LEFT JOIN purchases p ON t.ticket_id = p.ticket_id
	        WHERE f.airline_name = ?
	          AND f.departure_time BETWEEN ? AND ?
	          AND f.departure_airport LIKE ?
	          AND f.arrival_airport LIKE ?
	        GROUP BY f.flight_num
	        ORDER BY f.departure_time`)
	return database.QueryMaps(ctx, r.db, q, airline, start, end,
		"%"+source+"%", "%"+destination+"%")
}

// Customers returns name and email of every passenger on a flight.
func (r *FlightRepo) Customers(ctx context.Context, airline string, flightNum int64) ([]database.Row, error) {
	q := r.d.Translate(`SELECT c.name, c.email
	        FROM purchases p
	        JOIN ticket t ON p.ticket_id = t.ticket_id
	        JOIN customer c ON p.customer_email = c.email
	        WHERE t.flight_num = ? AND t.airline_name = ?`)
	return database.QueryMaps(ctx, r.db, q, flightNum, airline)
}

// TopDestinations ranks an airline's most-flown arrival airports over
// the past monthsBack months.
func (r *FlightRepo) TopDestinations(ctx context.Context, airline string, monthsBack, limit int) ([]database.Row, error) {
	q := fmt.Sprintf(`SELECT f.arrival_airport, a.airport_city, COUNT(f.flight_num) AS num_flights
	        FROM flight f
	        JOIN airport a ON f.arrival_airport = a.airport_name
	        WHERE f.airline_name = ? AND f.departure_time >= %s
	        GROUP BY f.arrival_airport, a.airport_city
	        ORDER BY num_flights DESC
	        LIMIT %d`, r.d.DateAgo(monthsBack, database.Months), limit)
	return database.QueryMaps(ctx, r.db, r.d.Translate(q), airline)
}

// asTime normalizes a scanned timestamp: MySQL (parseTime) hands back
// time.Time, SQLite hands back the stored 'YYYY-MM-DD HH:MM:SS' text.
func asTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case []byte:
		return parseDBTime(string(t))
	case string:
		return parseDBTime(t)
	case nil:
		return time.Time{}, nil
	}
	return time.Time{}, fmt.Errorf("cannot interpret %T as timestamp", v)
}

func parseDBTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05Z07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

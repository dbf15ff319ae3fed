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

// CustomerRepo provides data access for customer accounts, their
// purchased flights and their spending reports.
type CustomerRepo struct {
	db *sql.DB
	d  database.Dialect
}

// NewCustomerRepo returns a CustomerRepo bound to the given database.
func NewCustomerRepo(db *sql.DB, d database.Dialect) *CustomerRepo {
	return &CustomerRepo{db: db, d: d}
}

// GetByEmail fetches a customer by normalized email.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	q := r.d.Translate(`SELECT email, name, password, building_number, street, city, state,
	        phone_number, passport_number, passport_expiration, passport_country, date_of_birth
	        FROM customer WHERE email = ?`)
	var c model.Customer
	err := r.db.QueryRowContext(ctx, q, email).Scan(
		&c.Email, &c.Name, &c.PasswordHash, &c.BuildingNumber, &c.Street, &c.City, &c.State,
		&c.PhoneNumber, &c.PassportNumber, &c.PassportExpiration, &c.PassportCountry, &c.DateOfBirth,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new customer.  A duplicate email yields ErrConflict.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	q := r.d.Translate(`INSERT INTO customer (email, name, password, building_number, street, city, state,
	        phone_number, passport_number, passport_expiration, passport_country, date_of_birth)
	        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, q,
		strings.ToLower(strings.TrimSpace(c.Email)), c.Name, c.PasswordHash,
		c.BuildingNumber, c.Street, c.City, c.State, c.PhoneNumber,
		c.PassportNumber, c.PassportExpiration, c.PassportCountry, c.DateOfBirth)
	if isDuplicateKey(err) {
		return ErrConflict
	}
	return err
}

// Profile returns the customer's displayable details with the address
// assembled in SQL: the concatenation operator is one of the fragments
// that differs per dialect.
func (r *CustomerRepo) Profile(ctx context.Context, email string) (database.Row, error) {
	addr := r.d.Concat("building_number", "' '", "street", "', '", "city", "', '", "state")
	q := fmt.Sprintf(`SELECT name, email, date_of_birth, passport_number,
	        passport_expiration, phone_number,
	        %s AS address,
	        passport_country
	        FROM customer
	        WHERE email = ?`, addr)
	row, err := database.QueryMap(ctx, r.db, r.d.Translate(q), email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return row, err
}

// FlightsByStatus lists the customer's purchased flights, either the
// upcoming ones (upcoming=true) or the full history of past and
// non-upcoming ones.
func (r *CustomerRepo) FlightsByStatus(ctx context.Context, email string, upcoming bool) ([]database.Row, error) {
	op := "!="
	if upcoming {
		op = "="
	}
	q := r.d.Translate(fmt.Sprintf(`SELECT f.airline_name, f.flight_num, f.departure_time, f.arrival_time,
	        f.departure_airport, f.arrival_airport, f.status, p.purchase_date, f.price
	        FROM flight f
	        JOIN ticket t ON f.flight_num = t.flight_num AND f.airline_name = t.airline_name
	        JOIN purchases p ON t.ticket_id = p.ticket_id
	        WHERE p.customer_email = ? AND f.status %s 'upcoming'
	        ORDER BY f.departure_time`, op))
	return database.QueryMaps(ctx, r.db, q, email)
}

// SpendingByMonthSince buckets the customer's ticket spending by
// calendar month over the past n units.
func (r *CustomerRepo) SpendingByMonthSince(ctx context.Context, email string, n int, unit database.Interval) ([]database.Row, error) {
	q := fmt.Sprintf(`SELECT %s AS month, SUM(f.price) AS total_spent
	        FROM purchases p
	        JOIN ticket t ON p.ticket_id = t.ticket_id
	        JOIN flight f ON t.flight_num = f.flight_num AND t.airline_name = f.airline_name
	        WHERE p.customer_email = ? AND p.purchase_date >= %s
	        GROUP BY month
	        ORDER BY month`, r.d.MonthBucket("p.purchase_date"), r.d.DateAgo(n, unit))
	return database.QueryMaps(ctx, r.db, r.d.Translate(q), email)
}

// SpendingByMonthBetween buckets spending by month over an explicit
// 'YYYY-MM-DD' date range.
func (r *CustomerRepo) SpendingByMonthBetween(ctx context.Context, email, start, end string) ([]database.Row, error) {
	q := fmt.Sprintf(`SELECT %s AS month, SUM(f.price) AS total_spent
	        FROM purchases p
	        JOIN ticket t ON p.ticket_id = t.ticket_id
	        JOIN flight f ON t.flight_num = f.flight_num AND t.airline_name = f.airline_name
	        WHERE p.customer_email = ? AND p.purchase_date BETWEEN ? AND ?
	        GROUP BY month
	        ORDER BY month`, r.d.MonthBucket("p.purchase_date"))
	return database.QueryMaps(ctx, r.db, r.d.Translate(q), email, start, end)
}

// TotalSpentSince returns the customer's total ticket spending over the
// past n units.  A customer with no purchases spends zero.
func (r *CustomerRepo) TotalSpentSince(ctx context.Context, email string, n int, unit database.Interval) (float64, error) {
	q := fmt.Sprintf(`SELECT COALESCE(SUM(f.price), 0)
	        FROM purchases p
	        JOIN ticket t ON p.ticket_id = t.ticket_id
	        JOIN flight f ON t.flight_num = f.flight_num AND t.airline_name = f.airline_name
	        WHERE p.customer_email = ? AND p.purchase_date >= %s`, r.d.DateAgo(n, unit))
	var total float64
	err := r.db.QueryRowContext(ctx, r.d.Translate(q), email).Scan(&total)
	return total, err
}

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

// AgentRepo provides data access for booking agents: account lookups,
// the airlines they sell for, and their commission reports.  The
// commission rate is 5% of ticket price.
type AgentRepo struct {
	db *sql.DB
	d  database.Dialect
}

// NewAgentRepo returns an AgentRepo bound to the given database.
func NewAgentRepo(db *sql.DB, d database.Dialect) *AgentRepo {
	return &AgentRepo{db: db, d: d}
}

// GetByEmail fetches a booking agent by normalized email.
func (r *AgentRepo) GetByEmail(ctx context.Context, email string) (*model.BookingAgent, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	q := r.d.Translate(`SELECT email, password, booking_agent_id FROM booking_agent WHERE email = ?`)
	var a model.BookingAgent
	err := r.db.QueryRowContext(ctx, q, email).Scan(&a.Email, &a.PasswordHash, &a.BookingAgentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new booking agent.  A duplicate email yields
// ErrConflict.
func (r *AgentRepo) Create(ctx context.Context, a *model.BookingAgent) error {
	q := r.d.Translate(`INSERT INTO booking_agent (email, password, booking_agent_id) VALUES (?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, q,
		strings.ToLower(strings.TrimSpace(a.Email)), a.PasswordHash, a.BookingAgentID)
	if isDuplicateKey(err) {
		return ErrConflict
	}
	return err
}

// AirlineFor returns the airline the agent sells for.  Agents with no
// airline association cannot search or purchase; that case surfaces as
// ErrNotFound.
func (r *AgentRepo) AirlineFor(ctx context.Context, email string) (string, error) {
	q := r.d.Translate(`SELECT airline_name FROM booking_agent_work_for WHERE email = ?`)
	var airline string
	err := r.db.QueryRowContext(ctx, q, email).Scan(&airline)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return airline, err
}

// UpcomingSales lists upcoming flights of the agent's airline that were
// booked through any agent, with purchase date and customer email.
func (r *AgentRepo) UpcomingSales(ctx context.Context, airline string) ([]database.Row, error) {
	q := r.d.Translate(`SELECT f.airline_name, f.flight_num, f.departure_time, f.arrival_time,
	        f.departure_airport, f.arrival_airport, f.price, f.status, p.purchase_date, c.email AS customer_email
	        FROM flight f
	        JOIN ticket t ON f.flight_num = t.flight_num AND f.airline_name = t.airline_name
	        JOIN purchases p ON t.ticket_id = p.ticket_id
	        JOIN customer c ON p.customer_email = c.email
	        WHERE f.status = 'upcoming' AND f.airline_name = ? AND p.booking_agent_id IS NOT NULL
	        ORDER BY f.departure_time`)
	return database.QueryMaps(ctx, r.db, q, airline)
}

// CommissionSince summarizes the agent's commission over the past n
// units: total commission, tickets sold, and average commission per
// ticket.
func (r *AgentRepo) CommissionSince(ctx context.Context, agentID int64, n int, unit database.Interval) (database.Row, error) {
	q := fmt.Sprintf(`SELECT
	        COALESCE(SUM(f.price * 0.05), 0) AS total_commission,
	        COUNT(p.ticket_id)               AS total_tickets_sold,
	        COALESCE(AVG(f.price * 0.05), 0) AS avg_commission_per_ticket
	        FROM purchases p
	        JOIN ticket t ON p.ticket_id = t.ticket_id
	        JOIN flight f ON t.flight_num = f.flight_num AND t.airline_name = f.airline_name
	        WHERE p.booking_agent_id = ? AND p.purchase_date >= %s`, r.d.DateAgo(n, unit))
	return database.QueryMap(ctx, r.db, r.d.Translate(q), agentID)
}

// CommissionBetween is CommissionSince over an explicit date range.
func (r *AgentRepo) CommissionBetween(ctx context.Context, agentID int64, start, end string) (database.Row, error) {
	q := r.d.Translate(`SELECT
	        COALESCE(SUM(f.price * 0.05), 0) AS total_commission,
	        COUNT(p.ticket_id)               AS total_tickets_sold,
	        COALESCE(AVG(f.price * 0.05), 0) AS avg_commission_per_ticket
	        FROM purchases p
	        JOIN ticket t ON p.ticket_id = t.ticket_id
	        JOIN flight f ON t.flight_num = f.flight_num AND t.airline_name = f.airline_name
	        WHERE p.booking_agent_id = ? AND p.purchase_date BETWEEN ? AND ?`)
	return database.QueryMap(ctx, r.db, q, agentID, start, end)
}

// TopCustomersByTickets ranks the agent's customers by tickets bought
// over the past n units.
func (r *AgentRepo) TopCustomersByTickets(ctx context.Context, agentID int64, n int, unit database.Interval, limit int) ([]database.Row, error) {
	q := fmt.Sprintf(`SELECT p.customer_email, COUNT(p.ticket_id) AS tickets_bought
	        FROM purchases p
	        JOIN ticket t ON p.ticket_id = t.ticket_id
	        WHERE p.booking_agent_id = ? AND p.purchase_date >= %s
	        GROUP BY p.customer_email
	        ORDER BY tickets_bought DESC
	        LIMIT %d`, r.d.DateAgo(n, unit), limit)
	return database.QueryMaps(ctx, r.db, r.d.Translate(q), agentID)
}

// TopCustomersByCommission ranks the agent's customers by commission
// earned from them over the past n units.
func (r *AgentRepo) TopCustomersByCommission(ctx context.Context, agentID int64, n int, unit database.Interval, limit int) ([]database.Row, error) {
	q := fmt.Sprintf(`SELECT p.customer_email, SUM(f.price * 0.05) AS commission_received
	        FROM purchases p
	        JOIN ticket t ON p.ticket_id = t.ticket_id
	        JOIN flight f ON t.flight_num = f.flight_num AND t.airline_name = f.airline_name
	        WHERE p.booking_agent_id = ? AND p.purchase_date >= %s
	        GROUP BY p.customer_email
	        ORDER BY commission_received DESC
	        LIMIT %d`, r.d.DateAgo(n, unit), limit)
	return database.QueryMaps(ctx, r.db, r.d.Translate(q), agentID)
}

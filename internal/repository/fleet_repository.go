package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/skyreserve/airline-reservation/internal/database"
	"github.com/skyreserve/airline-reservation/internal/model"
)

// FleetRepo provides data access for airlines and their fixed assets:
// airplanes and airports.
type FleetRepo struct {
	db *sql.DB
	d  database.Dialect
}

// NewFleetRepo returns a FleetRepo bound to the given database.
func NewFleetRepo(db *sql.DB, d database.Dialect) *FleetRepo {
	return &FleetRepo{db: db, d: d}
}

// AirlineExists reports whether an airline is registered.
func (r *FleetRepo) AirlineExists(ctx context.Context, name string) (bool, error) {
	q := r.d.Translate(`SELECT 1 FROM airline WHERE airline_name = ?`)
	var one int
	err := r.db.QueryRowContext(ctx, q, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// AddAirplane registers a new airplane for an airline.  A duplicate
// (airline, id) pair yields ErrConflict.
func (r *FleetRepo) AddAirplane(ctx context.Context, p *model.Airplane) error {
	q := r.d.Translate(`INSERT INTO airplane (airline_name, airplane_id, seats) VALUES (?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, q, p.AirlineName, p.AirplaneID, p.Seats)
	if isDuplicateKey(err) {
		return ErrConflict
	}
	return err
}

// Airplanes lists an airline's airplanes.
func (r *FleetRepo) Airplanes(ctx context.Context, airline string) ([]model.Airplane, error) {
	q := r.d.Translate(`SELECT airline_name, airplane_id, seats FROM airplane WHERE airline_name = ? ORDER BY airplane_id`)
	rows, err := r.db.QueryContext(ctx, q, airline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Airplane
	for rows.Next() {
		var p model.Airplane
		if err := rows.Scan(&p.AirlineName, &p.AirplaneID, &p.Seats); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AddAirport registers a new airport.  A duplicate name yields
// ErrConflict.
func (r *FleetRepo) AddAirport(ctx context.Context, a *model.Airport) error {
	q := r.d.Translate(`INSERT INTO airport (airport_name, airport_city) VALUES (?, ?)`)
	_, err := r.db.ExecContext(ctx, q, a.AirportName, a.AirportCity)
	if isDuplicateKey(err) {
		return ErrConflict
	}
	return err
}

// Airports lists every registered airport.
func (r *FleetRepo) Airports(ctx context.Context) ([]model.Airport, error) {
	q := r.d.Translate(`SELECT airport_name, airport_city FROM airport ORDER BY airport_name`)
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Airport
	for rows.Next() {
		var a model.Airport
		if err := rows.Scan(&a.AirportName, &a.AirportCity); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skyreserve/airline-reservation/internal/database"
	"github.com/skyreserve/airline-reservation/internal/model"
)

// testSchema mirrors the production schema on SQLite.  purchases keys
// on ticket_id alone: one ticket can be sold exactly once.
const testSchema = `
CREATE TABLE airline (
    airline_name TEXT PRIMARY KEY
);
CREATE TABLE airport (
    airport_name TEXT PRIMARY KEY,
    airport_city TEXT NOT NULL
);
CREATE TABLE airplane (
    airline_name TEXT NOT NULL,
    airplane_id  INTEGER NOT NULL,
    seats        INTEGER NOT NULL,
    PRIMARY KEY (airline_name, airplane_id)
);
CREATE TABLE customer (
    email               TEXT PRIMARY KEY,
    name                TEXT,
    password            TEXT,
    building_number     TEXT,
    street              TEXT,
    city                TEXT,
    state               TEXT,
    phone_number        TEXT,
    passport_number     TEXT,
    passport_expiration TEXT,
    passport_country    TEXT,
    date_of_birth       TEXT
);
CREATE TABLE booking_agent (
    email            TEXT PRIMARY KEY,
    password         TEXT,
    booking_agent_id INTEGER UNIQUE
);
CREATE TABLE booking_agent_work_for (
    email        TEXT NOT NULL,
    airline_name TEXT NOT NULL,
    PRIMARY KEY (email, airline_name)
);
CREATE TABLE airline_staff (
    username      TEXT PRIMARY KEY,
    password      TEXT,
    first_name    TEXT,
    last_name     TEXT,
    date_of_birth TEXT,
    airline_name  TEXT NOT NULL
);
CREATE TABLE permission (
    username        TEXT NOT NULL,
    permission_type TEXT NOT NULL,
    PRIMARY KEY (username, permission_type)
);
CREATE TABLE flight (
    airline_name      TEXT NOT NULL,
    flight_num        INTEGER NOT NULL,
    departure_airport TEXT NOT NULL,
    departure_time    TEXT NOT NULL,
    arrival_airport   TEXT NOT NULL,
    arrival_time      TEXT NOT NULL,
    price             REAL NOT NULL,
    status            TEXT NOT NULL,
    airplane_id       INTEGER NOT NULL,
    PRIMARY KEY (airline_name, flight_num)
);
CREATE TABLE ticket (
    ticket_id    INTEGER PRIMARY KEY AUTOINCREMENT,
    airline_name TEXT NOT NULL,
    flight_num   INTEGER NOT NULL
);
CREATE TABLE purchases (
    ticket_id        INTEGER PRIMARY KEY,
    customer_email   TEXT NOT NULL,
    booking_agent_id INTEGER,
    purchase_date    TEXT NOT NULL
);
`

// newTestDB opens an in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) (*sql.DB, database.Dialect) {
	t.Helper()
	db, d, err := database.Open(database.DSNInfo{Driver: database.DriverSQLite, Path: ":memory:"}, database.DSNInfo{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	return db, d
}

func seedAirline(t *testing.T, db *sql.DB, name string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO airline (airline_name) VALUES (?)`, name)
	require.NoError(t, err)
}

func seedAirplane(t *testing.T, db *sql.DB, airline string, id int64, seats int) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO airplane (airline_name, airplane_id, seats) VALUES (?, ?, ?)`, airline, id, seats)
	require.NoError(t, err)
}

func seedCustomer(t *testing.T, db *sql.DB, email string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO customer (email, name, password) VALUES (?, 'Test Person', 'x')`, email)
	require.NoError(t, err)
}

func seedAgent(t *testing.T, db *sql.DB, email string, agentID int64, airline string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO booking_agent (email, password, booking_agent_id) VALUES (?, 'x', ?)`, email, agentID)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO booking_agent_work_for (email, airline_name) VALUES (?, ?)`, email, airline)
	require.NoError(t, err)
}

// seedFlight creates a flight and its ticket inventory through the
// production path so tests exercise the same transaction.  The ticket
// count comes from the seeded airplane.
func seedFlight(t *testing.T, repo *FlightRepo, airline string, num int64) {
	t.Helper()
	dep := time.Now().UTC().Add(24 * time.Hour)
	err := repo.Create(context.Background(), &model.Flight{
		AirlineName:      airline,
		FlightNum:        num,
		DepartureAirport: "JFK",
		DepartureTime:    dep,
		ArrivalAirport:   "LAX",
		ArrivalTime:      dep.Add(6 * time.Hour),
		Price:            250,
		Status:           model.FlightUpcoming,
		AirplaneID:       1,
	})
	require.NoError(t, err)
}

package model

import "time"

// Flight statuses as stored in flight.status.
const (
	FlightUpcoming   = "upcoming"
	FlightInProgress = "in-progress"
	FlightCompleted  = "completed"
	FlightDelayed    = "delayed"
	FlightCancelled  = "cancelled"
)

// Flight represents one scheduled flight of an airline.  Flights are
// identified by the (airline_name, flight_num) pair; the same flight
// number may be reused by different airlines.
//
// Fields:
//  AirlineName      – airline operating the flight.
//  FlightNum        – number unique within the airline.
//  DepartureAirport – IATA-style code of the origin airport.
//  DepartureTime    – scheduled departure (UTC).
//  ArrivalAirport   – code of the destination airport.
//  ArrivalTime      – scheduled arrival (UTC).
//  Price            – ticket price.
//  Status           – one of the Flight* constants above.
//  AirplaneID       – airplane assigned to the flight; its seat count
//                     determines how many tickets are generated.
type Flight struct {
	AirlineName      string    `json:"airline_name"`      // flight.airline_name
	FlightNum        int64     `json:"flight_num"`        // flight.flight_num
	DepartureAirport string    `json:"departure_airport"` // flight.departure_airport
	DepartureTime    time.Time `json:"departure_time"`    // flight.departure_time
	ArrivalAirport   string    `json:"arrival_airport"`   // flight.arrival_airport
	ArrivalTime      time.Time `json:"arrival_time"`      // flight.arrival_time
	Price            float64   `json:"price"`             // flight.price
	Status           string    `json:"status"`            // flight.status
	AirplaneID       int64     `json:"airplane_id"`       // flight.airplane_id
}

// ValidFlightStatus reports whether s is one of the Flight* constants.
func ValidFlightStatus(s string) bool {
	switch s {
	case FlightUpcoming, FlightInProgress, FlightCompleted, FlightDelayed, FlightCancelled:
		return true
	}
	return false
}

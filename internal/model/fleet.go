package model

// Airport mirrors the airport table.
type Airport struct {
	AirportName string `json:"airport_name"` // airport.airport_name
	AirportCity string `json:"airport_city"` // airport.airport_city
}

// Airplane mirrors the airplane table.  The seat count drives how many
// tickets are generated when a flight is assigned this airplane.
type Airplane struct {
	AirlineName string `json:"airline_name"` // airplane.airline_name
	AirplaneID  int64  `json:"airplane_id"`  // airplane.airplane_id
	Seats       int    `json:"seats"`        // airplane.seats
}

// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketPurchasedEvent is published when a ticket purchase commits.  It
// carries enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type TicketPurchasedEvent struct {
	TicketID         int64   `json:"ticket_id"`
	AirlineName      string  `json:"airline_name"`
	FlightNum        int64   `json:"flight_num"`
	CustomerEmail    string  `json:"customer_email"`
	BookingAgentID   *int64  `json:"booking_agent_id,omitempty"`
	DepartureAirport string  `json:"departure_airport"`
	ArrivalAirport   string  `json:"arrival_airport"`
	Price            float64 `json:"price"`
	PurchasedAt      string  `json:"purchased_at"`
}

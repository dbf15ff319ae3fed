package model

// Ticket is one unit of sellable seat inventory on a flight.  Tickets
// are generated in bulk when the flight is created (one row per seat on
// the assigned airplane) and are never deleted afterwards; a ticket is
// "sold" when a Purchase row referencing it exists.
type Ticket struct {
	TicketID    int64  // ticket.ticket_id (generated on insert)
	AirlineName string // ticket.airline_name
	FlightNum   int64  // ticket.flight_num
}

// Purchase is the allocation record binding a ticket to a purchaser.
// A ticket id appears here at most once; purchases.ticket_id is the
// primary key, which is what makes a lost reservation race detectable.
type Purchase struct {
	TicketID       int64  // purchases.ticket_id
	CustomerEmail  string // purchases.customer_email
	BookingAgentID *int64 // purchases.booking_agent_id (nullable)
	PurchaseDate   string // purchases.purchase_date (date, 'YYYY-MM-DD')
}

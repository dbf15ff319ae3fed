package model

// BookingAgent mirrors the booking_agent table.  Agents purchase
// tickets on behalf of customers and earn a commission on the price.
type BookingAgent struct {
	Email          string // booking_agent.email
	PasswordHash   string // booking_agent.password
	BookingAgentID int64  // booking_agent.booking_agent_id
}

package handler

import (
	"context"
	"time"

	"github.com/skyreserve/airline-reservation/internal/model"
	"github.com/skyreserve/airline-reservation/internal/queue"
	queue_publisher "github.com/skyreserve/airline-reservation/internal/service"
)

// publishPurchase fires the ticket.purchased event in the background.
// Publishing is best-effort: the purchase already committed, so a broker
// outage must not fail the request.
func publishPurchase(rabbitURL string, f *model.Flight, ticketID int64, customerEmail string, agentID *int64) {
	ev := queue.TicketPurchasedEvent{
		TicketID:         ticketID,
		AirlineName:      f.AirlineName,
		FlightNum:        f.FlightNum,
		CustomerEmail:    customerEmail,
		BookingAgentID:   agentID,
		DepartureAirport: f.DepartureAirport,
		ArrivalAirport:   f.ArrivalAirport,
		Price:            f.Price,
		PurchasedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishTicketPurchased(ctx, rabbitURL, ev)
	}()
}

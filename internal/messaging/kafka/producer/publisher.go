package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// OrderCompletedEvent is published after the gateway reports a successful
// payment and the cart has been cleared. Consumers (fulfillment, email,
// analytics) key on the order ID.
type OrderCompletedEvent struct {
	EventID     uuid.UUID `json:"eventId"`
	CartID      string    `json:"cartId"`
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	Locale      string    `json:"locale"`
	CompletedAt time.Time `json:"completedAt"`
}

func PublishOrderCompleted(ctx context.Context, writer *kafka.Writer, event OrderCompletedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("ORDER_COMPLETED")},
			{Key: "aggregate_type", Value: []byte("CHECKOUT")},
		},
	}

	return writer.WriteMessages(ctx, msg)
}

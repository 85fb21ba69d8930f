package notify

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/vasiliy-maslov/online-shop/internal/order"
)

// StatusChangeEvent is the payload published to the order events topic.
type StatusChangeEvent struct {
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	TotalPrice string    `json:"total_price"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher writes status-change events to Kafka. It is disabled (a
// no-op) when no brokers are configured.
type EventPublisher struct {
	writer *kafka.Writer
}

func NewEventPublisher(brokersCSV, topic string) *EventPublisher {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return &EventPublisher{}
	}

	return &EventPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *EventPublisher) Enabled() bool {
	return p != nil && p.writer != nil
}

func (p *EventPublisher) PublishStatusChange(ctx context.Context, o *order.Order, oldStatus, newStatus order.Status) error {
	event := StatusChangeEvent{
		OrderID:    o.ID.String(),
		UserID:     o.UserID.String(),
		TotalPrice: o.TotalPrice.StringFixed(2),
		OldStatus:  oldStatus.String(),
		NewStatus:  newStatus.String(),
		OccurredAt: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: data,
		Time:  event.OccurredAt,
	})
}

func (p *EventPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

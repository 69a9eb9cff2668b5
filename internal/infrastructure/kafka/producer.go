package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/example/ec-shop-assistant/internal/domain/order"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer messageWriter
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: writer}
}

func (p *Producer) Publish(ctx context.Context, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

// SaveOrder publishes an OrderPlaced event keyed by order id, so the producer
// can serve as an order mirror.
func (p *Producer) SaveOrder(ctx context.Context, o order.Order) error {
	event, err := NewEvent(order.EventOrderPlaced, o.ID, o)
	if err != nil {
		return err
	}
	return p.Publish(ctx, o.ID, event)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/trogers1052/portfolio-service/internal/models"
)

// Producer handles publishing position events to Kafka
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishPositionCreated publishes a position created event
func (p *Producer) PublishPositionCreated(ctx context.Context, position *models.Position) error {
	event := models.PositionEvent{
		EventType:  models.EventPositionCreated,
		Position:   position,
		PositionID: position.ID,
		Timestamp:  time.Now(),
	}
	return p.publish(ctx, position.Symbol, event)
}

// PublishPositionUpdated publishes a position updated event
func (p *Producer) PublishPositionUpdated(ctx context.Context, position *models.Position) error {
	event := models.PositionEvent{
		EventType:  models.EventPositionUpdated,
		Position:   position,
		PositionID: position.ID,
		Timestamp:  time.Now(),
	}
	return p.publish(ctx, position.Symbol, event)
}

// PublishPositionDeleted publishes a position deleted event
func (p *Producer) PublishPositionDeleted(ctx context.Context, id int) error {
	event := models.PositionEvent{
		EventType:  models.EventPositionDeleted,
		PositionID: id,
		Timestamp:  time.Now(),
	}
	return p.publish(ctx, strconv.Itoa(id), event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.PositionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

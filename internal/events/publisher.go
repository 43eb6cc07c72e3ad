// Package events publishes upload notifications to RabbitMQ for downstream
// consumers. The publisher is optional: the relay works without it.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const queueName = "upload_events"

// UploadEvent is emitted once per successful upload.
type UploadEvent struct {
	ID         string    `json:"id"`
	PublicID   string    `json:"public_id"`
	SecureURL  string    `json:"secure_url"`
	Folder     string    `json:"folder"`
	Size       int64     `json:"size"`
	Format     string    `json:"format"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger
}

func NewPublisher(rabbitmqURL string, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &Publisher{
		conn:    conn,
		channel: channel,
		logger:  logger,
	}, nil
}

// Publish emits one event. Failures are the caller's to log; the upload
// itself already succeeded by the time this runs.
func (p *Publisher) Publish(ctx context.Context, event *UploadEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.Publish(
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Info("Upload event published", zap.String("public_id", event.PublicID))
	return nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}

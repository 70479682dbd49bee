package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const AnalysisQueue = "advisory_analysis_events"

// AnalysisEvent is emitted whenever a view resolves with a result.
type AnalysisEvent struct {
	EventID    string         `json:"event_id"`
	Page       string         `json:"page"`
	ViewID     string         `json:"view_id"`
	Summary    map[string]any `json:"summary,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type AnalysisPublisher interface {
	PublishAnalysis(ctx context.Context, event AnalysisEvent) error
}

// NoopPublisher drops events. It is used when RabbitMQ is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishAnalysis(context.Context, AnalysisEvent) error { return nil }

// RabbitPublisher publishes analysis events to a durable queue.
type RabbitPublisher struct {
	conn *RabbitMQConnection

	mu                sync.Mutex
	declared          bool
	messagesPublished int64
	messagesFailed    int64
	lastPublishTime   time.Time
}

func NewRabbitPublisher(conn *RabbitMQConnection) *RabbitPublisher {
	return &RabbitPublisher{
		conn:            conn,
		lastPublishTime: time.Now(),
	}
}

func (p *RabbitPublisher) PublishAnalysis(ctx context.Context, event AnalysisEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis event: %w", err)
	}

	// amqp channels must not be used for concurrent publishes
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared {
		_, err := p.conn.Channel.QueueDeclare(
			AnalysisQueue, // queue name
			true,          // durable
			false,         // delete when unused
			false,         // exclusive
			false,         // no-wait
			nil,           // arguments
		)
		if err != nil {
			p.messagesFailed++
			return fmt.Errorf("failed to declare queue: %w", err)
		}
		p.declared = true
	}

	err = p.conn.Channel.PublishWithContext(
		ctx,
		"",            // exchange
		AnalysisQueue, // routing key (queue name)
		false,         // mandatory
		false,         // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    event.EventID,
			Body:         body,
			Timestamp:    event.OccurredAt,
		},
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to publish analysis event: %w", err)
	}

	p.messagesPublished++
	p.lastPublishTime = time.Now()

	slog.Info("Analysis event published",
		"queue", AnalysisQueue,
		"page", event.Page,
		"view_id", event.ViewID,
	)
	return nil
}

// HealthCheck returns the health status of the publisher
func (p *RabbitPublisher) HealthCheck() PublisherHealthStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	isHealthy := p.conn != nil && p.conn.Connection != nil && !p.conn.Connection.IsClosed()
	return PublisherHealthStatus{
		IsHealthy:         isHealthy,
		MessagesPublished: p.messagesPublished,
		MessagesFailed:    p.messagesFailed,
		LastPublishTime:   p.lastPublishTime,
		Queue:             AnalysisQueue,
	}
}

type PublisherHealthStatus struct {
	IsHealthy         bool      `json:"is_healthy"`
	MessagesPublished int64     `json:"messages_published"`
	MessagesFailed    int64     `json:"messages_failed"`
	LastPublishTime   time.Time `json:"last_publish_time"`
	Queue             string    `json:"queue"`
}

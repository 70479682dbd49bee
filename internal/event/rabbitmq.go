package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"advisory-service/internal/config"
	"advisory-service/internal/database"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQConnection is the broker link used to publish view lifecycle events.
type RabbitMQConnection struct {
	Connection *amqp.Connection
	Channel    *amqp.Channel
}

// brokerURI builds the dial string; amqp.URI escapes credentials containing reserved characters.
func brokerURI(cfg config.RabbitMQConfig) (string, error) {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		return "", fmt.Errorf("invalid RabbitMQ port %q: %w", cfg.Port, err)
	}
	uri := amqp.URI{
		Scheme:   "amqp",
		Host:     cfg.Host,
		Port:     port,
		Username: cfg.Username,
		Password: cfg.Password,
		Vhost:    "/",
	}
	return uri.String(), nil
}

// ConnectRabbitMQ dials the broker, retrying with backoff while it starts up.
func ConnectRabbitMQ(ctx context.Context, cfg config.RabbitMQConfig) (*RabbitMQConnection, error) {
	connStr, err := brokerURI(cfg)
	if err != nil {
		return nil, err
	}

	var conn *amqp.Connection
	err = database.ConnectWithRetry(ctx, "rabbitmq", 5, func() error {
		c, err := amqp.Dial(connStr)
		if err != nil {
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	slog.Info("Connected to RabbitMQ", "host", cfg.Host, "port", cfg.Port)

	return &RabbitMQConnection{
		Connection: conn,
		Channel:    ch,
	}, nil
}

// Close releases the channel before the connection.
func (r *RabbitMQConnection) Close() error {
	if r.Channel != nil {
		if err := r.Channel.Close(); err != nil {
			slog.Error("failed to close RabbitMQ channel", "error", err)
		}
	}
	if r.Connection != nil {
		if err := r.Connection.Close(); err != nil {
			slog.Error("failed to close RabbitMQ connection", "error", err)
			return err
		}
	}
	slog.Info("RabbitMQ connection closed")
	return nil
}

package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"recipe-share/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "recipes"
	QueueName    = "recipe_image_queue"
)

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewClient creates a new RabbitMQ client, declares the recipes exchange and
// binds the image queue to image.uploaded events
func NewClient(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Printf("RabbitMQ client initialized successfully with exchange %s and queue %s", ExchangeName, QueueName)

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

func declareTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		ExchangeName, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		QueueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	err = ch.QueueBind(QueueName, string(models.EventImageUploaded), ExchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	return nil
}

// Publish sends a message to the exchange under the given routing key
func (c *Client) Publish(ctx context.Context, routingKey string, body []byte) error {
	err := c.channel.PublishWithContext(ctx,
		ExchangeName, // exchange
		routingKey,   // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Printf("Published %s message to exchange: %s", routingKey, ExchangeName)
	return nil
}

// PublishJSON marshals v and publishes it under routingKey
func (c *Client) PublishJSON(ctx context.Context, routingKey string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	return c.Publish(ctx, routingKey, body)
}

// Consume starts delivering messages from the image queue with manual acks
func (c *Client) Consume(prefetch int) (<-chan amqp.Delivery, error) {
	if err := c.channel.Qos(prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}

	msgs, err := c.channel.Consume(
		QueueName, // queue
		"",        // consumer
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}
	return msgs, nil
}

// Close closes the channel and connection
func (c *Client) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			log.Printf("Error closing channel: %v", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			log.Printf("Error closing connection: %v", err)
		}
	}
	return nil
}

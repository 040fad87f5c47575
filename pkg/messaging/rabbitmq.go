package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"quiz-portal/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	QueueUserRegistered  = "user.registered"
	QueueQuestionCreated = "question.created"
)

type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	config  *config.RabbitMQConfig

	// amqp channels are not safe for concurrent publishing.
	mu sync.Mutex
}

func NewRabbitMQClient(cfg *config.RabbitMQConfig) (*RabbitMQClient, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.User, cfg.Password, cfg.Host, cfg.Port)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: channel,
		config:  cfg,
	}, nil
}

func (c *RabbitMQClient) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *RabbitMQClient) DeclareQueue(name string) (amqp.Queue, error) {
	return c.channel.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
}

func (c *RabbitMQClient) Publish(ctx context.Context, queueName string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.DeclareQueue(queueName); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	return c.channel.PublishWithContext(
		ctx,
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
}

func (c *RabbitMQClient) Consume(queueName string) (<-chan amqp.Delivery, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.DeclareQueue(queueName); err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return c.channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
}

// Acknowledger is the subset of amqp.Delivery the consumer loop needs.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Handle runs handler for one delivery body and acks it on success. Failed
// messages are requeued once; a redelivered message that fails again is dropped.
func Handle(ctx context.Context, queueName string, body []byte, redelivered bool, ack Acknowledger, handler func(context.Context, []byte) error) {
	if err := handler(ctx, body); err != nil {
		log.Printf("Error handling message from %s: %v", queueName, err)
		ack.Nack(false, !redelivered)
		return
	}
	ack.Ack(false)
}

// ConsumeQueue blocks, dispatching every delivery of queueName to handler
// until the delivery channel closes.
func (c *RabbitMQClient) ConsumeQueue(ctx context.Context, queueName string, handler func(context.Context, []byte) error) {
	msgs, err := c.Consume(queueName)
	if err != nil {
		log.Printf("Failed to start consumer for queue %s: %v", queueName, err)
		return
	}

	log.Printf("Started consumer for queue: %s", queueName)

	for msg := range msgs {
		Handle(ctx, queueName, msg.Body, msg.Redelivered, msg, handler)
	}
}

// PublishJSON marshals event and publishes it to queueName.
func PublishJSON(ctx context.Context, p interface {
	Publish(ctx context.Context, queueName string, body []byte) error
}, queueName string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.Publish(ctx, queueName, data)
}

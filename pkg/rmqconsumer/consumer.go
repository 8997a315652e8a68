package rmqconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"fileshare-api/config"
)

const (
	// can scale depends on a parallel worker count
	preFetchCount = 1
	bindAll       = "#"
)

var ErrNoRecipient = errors.New("event has no recipient")

type (
	// Envelope mirrors the event published by the notification emitter.
	Envelope struct {
		Name        string          `json:"event_name"`
		RecipientID uuid.UUID       `json:"recipient_id"`
		Payload     json.RawMessage `json:"payload"`
	}

	// HandlerFunc receives every decoded event and returns how many listeners got it.
	HandlerFunc func(env Envelope) int

	Consumer struct {
		cfg        config.MQ
		log        *zap.Logger
		conn       *amqp091.Connection
		handle     HandlerFunc
		chConsume  *amqp091.Channel
		chDelivery <-chan amqp091.Delivery
	}
)

func New(cfg config.MQ, logger *zap.Logger, conn *amqp091.Connection, handle HandlerFunc) *Consumer {
	return &Consumer{
		cfg:    cfg,
		log:    logger,
		conn:   conn,
		handle: handle,
	}
}

// Connect opens a channel on the shared connection, dialing only when none was given.
func (c *Consumer) Connect(dsn string) error {
	var err error
	if c.conn == nil || c.conn.IsClosed() {
		c.conn, err = amqp091.Dial(dsn)
		if err != nil {
			c.conn = nil
			return fmt.Errorf("amqp dial: %w", err)
		}
	}
	c.chConsume, err = c.conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}

	c.log.Info("rabbitmq consumer connected successfully")

	return nil
}

// Init binds a queue to every event on the exchange. Without a configured
// queue name each instance gets its own exclusive queue, so every instance
// sees every event and can push it to the streams it holds.
func (c *Consumer) Init() error {
	if err := c.chConsume.ExchangeDeclare(
		c.cfg.Exchange,
		c.cfg.ExchangeType,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}

	exclusive := c.cfg.QueueName == ""
	q, err := c.chConsume.QueueDeclare(
		c.cfg.QueueName,
		!exclusive,
		exclusive,
		exclusive,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err = c.chConsume.QueueBind(q.Name, bindAll, c.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind %s: %w", bindAll, err)
	}

	if err = c.chConsume.Qos(preFetchCount, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	c.chDelivery, err = c.chConsume.Consume(
		q.Name,
		"",
		true,
		exclusive,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	return nil
}

func (c *Consumer) DeliveryWorker(ctx context.Context) {
	c.log.Info("starting delivery worker")

	defer func() {
		c.log.Info("delivery worker gracefully stopped")
	}()

	for {
		select {
		case msg, ok := <-c.chDelivery:
			if !ok {
				c.log.Warn("delivery channel closed")
				return
			}
			if err := c.delivery(msg); err != nil {
				// alert
				c.log.Error("mq read message error", zap.String("routing_key", msg.RoutingKey), zap.Error(err))
			}
		case <-ctx.Done():
			_ = c.chConsume.Close()
			return
		}
	}
}

func (c *Consumer) delivery(msg amqp091.Delivery) error {
	// auto-ack: events are best effort, a lost one is recovered by polling or retry
	var env Envelope
	if err := json.Unmarshal(msg.Body, &env); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	if env.RecipientID == uuid.Nil {
		return ErrNoRecipient
	}
	if env.Name == "" {
		env.Name = msg.Type
	}

	n := c.handle(env)
	c.log.Debug("event dispatched",
		zap.String("event", env.Name),
		zap.Stringer("recipient_id", env.RecipientID),
		zap.Int("listeners", n),
	)

	return nil
}

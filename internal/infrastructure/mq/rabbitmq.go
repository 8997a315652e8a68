package mq

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"fileshare-api/config"
)

// "Rely on metrics, not guesses."
const bufferSize = 128

var ErrEmitterBusy = errors.New("event buffer is full")

type (
	InputCh  = chan Event
	RabbitMQ struct {
		cfg   config.MQ
		log   *zap.Logger
		conn  *amqp091.Connection
		pubCh *amqp091.Channel
		in    InputCh
	}
	Event struct {
		Id          uuid.UUID       `json:"event_id"`
		TS          time.Time       `json:"time_stamp"`
		Name        string          `json:"event_name"`
		RecipientID uuid.UUID       `json:"recipient_id"`
		Payload     json.RawMessage `json:"payload"`
	}
)

func New(cfg config.MQ, logger *zap.Logger) *RabbitMQ {
	return &RabbitMQ{
		cfg: cfg,
		log: logger,
		in:  make(chan Event, bufferSize),
	}
}

// RoutingKey maps "file:shared" to "file.shared" so topic bindings can use wildcards.
func RoutingKey(eventName string) string {
	return strings.ReplaceAll(eventName, ":", ".")
}

func (r *RabbitMQ) Connect(ctx context.Context, dsn string) error {
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	amqpCfg := amqp091.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Properties: amqp091.Table{
			"connection_name": "fileshareapi",
		},
		Dial: func(network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
		TLSClientConfig: nil,
	}

	var err error
	r.conn, err = amqp091.DialConfig(dsn, amqpCfg)
	if err != nil {
		return err
	}
	r.pubCh, err = r.conn.Channel()
	if err != nil {
		_ = r.conn.Close()
		return err
	}

	r.log.Info("rabbitmq connected successfully")

	return err
}

// Init declares the exchange only; queues belong to the consumers.
func (r *RabbitMQ) Init() error {
	if err := r.pubCh.ExchangeDeclare(
		r.cfg.Exchange,
		r.cfg.ExchangeType,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = r.pubCh.Close()
		return err
	}

	return nil
}

// Emit is fire-and-forget: it never blocks and never waits for the broker.
func (r *RabbitMQ) Emit(name string, recipientID uuid.UUID, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	e := Event{
		Id:          uuid.New(),
		TS:          time.Now().UTC(),
		Name:        name,
		RecipientID: recipientID,
		Payload:     b,
	}

	select {
	case r.in <- e:
		return nil
	default:
		r.log.Warn("event dropped", zap.String("event", name), zap.Stringer("recipient_id", recipientID))
		return ErrEmitterBusy
	}
}

func (r *RabbitMQ) PublisherWorker(ctx context.Context) {
	r.log.Info("starting publisher worker ")

	defer func() {
		r.log.Info("publisher worker gracefully stopped")
	}()

	for {
		select {
		case e := <-r.in:
			if err := r.publish(ctx, e); err != nil {
				// alert
				r.log.Error("mq publish error", zap.String("event", e.Name), zap.Error(err))
			}
		case <-ctx.Done():
			// in stays open: late Emit calls from draining requests must not panic
			_ = r.pubCh.Close()
			return
		}
	}
}

func (r *RabbitMQ) publish(ctx context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		// alert
		return err
	}

	pub := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Transient,
		MessageId:    e.Id.String(),
		Timestamp:    e.TS,
		Type:         e.Name,
		Body:         b,
	}

	return r.pubCh.PublishWithContext(
		ctx,
		r.cfg.Exchange,
		RoutingKey(e.Name),
		false,
		false,
		pub,
	)
}

func (r *RabbitMQ) GetConn() *amqp091.Connection { return r.conn }

func (r *RabbitMQ) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

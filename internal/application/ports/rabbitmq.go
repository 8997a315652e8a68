package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

type RabbitMQ interface {
	Connect(ctx context.Context, dsn string) error
	Init() error
	PublisherWorker(ctx context.Context)
	Emitter
	GetConn() *amqp091.Connection
	Close() error
}

// Emitter pushes an event towards the recipient's live listeners. It is best
// effort: an error means the event was not queued, never that state is wrong.
type Emitter interface {
	Emit(name string, recipientID uuid.UUID, payload any) error
}

package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// WriterInterface abstracts the kafka writer so tests can swap it out.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type EventProducer interface {
	SendEvent(ctx context.Context, event Event) error
	Close() error
}

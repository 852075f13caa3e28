package mq

import (
	"context"
	"fmt"

	"github.com/Marcel-mosha/task-manager/config"
)

// Publisher sends messages to a named topic. The broker behind it is
// interchangeable; the server only ever publishes.
type Publisher interface {
	Publish(ctx context.Context, topic string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// NewPublisher constructs the broker backend selected by config, or nil
// when no backend is configured.
func NewPublisher(ctx context.Context, cfg config.MQConfig) (Publisher, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		return NewRabbitMQPublisher(cfg)
	case "pubsub":
		return NewPubSubPublisher(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
	}
}

package engine

import (
	"fmt"
	"os"

	"github.com/smarteats/orderflow/internal/engine/producers"
	"github.com/smarteats/orderflow/internal/models"
)

// OutputDestination is where lifecycle events go: Kafka when enabled,
// console otherwise.
type OutputDestination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

type ConsoleOutput struct{}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	output := fmt.Sprintf("[%s] %s\n", topic, string(msg))
	_, err := os.Stdout.Write([]byte(output))
	if err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	_ = os.Stdout.Sync()
	return nil
}

func (c *ConsoleOutput) Close() error {
	return nil
}

// NewOutputDestination picks the event transport from config.
func NewOutputDestination(cfg models.KafkaConfig) (OutputDestination, error) {
	if !cfg.Enabled {
		return &ConsoleOutput{}, nil
	}
	producer, err := producers.NewSaramaProducer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return producer, nil
}

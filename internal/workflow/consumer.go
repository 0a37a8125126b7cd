package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/log"
)

// Consumer reads domain events from the event feed and hands them to the
// executor.
type Consumer struct {
	consumer *kafka.Consumer
	topic    string
	groupID  string
	executor *Executor
}

// NewConsumer creates a Kafka consumer for the workflow engine.
func NewConsumer(brokers, topic, groupID string, executor *Executor) (*Consumer, error) {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":       brokers,
		"group.id":                groupID,
		"auto.offset.reset":       "earliest",
		"enable.auto.commit":      true,
		"auto.commit.interval.ms": 5000,
	})
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}

	return &Consumer{
		consumer: c,
		topic:    topic,
		groupID:  groupID,
		executor: executor,
	}, nil
}

// Run polls the feed until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.consumer.Subscribe(c.topic, nil); err != nil {
		return fmt.Errorf("subscribe to topic %s: %w", c.topic, err)
	}

	log.L().Info().Str("topic", c.topic).Str("group", c.groupID).Msg("workflow consumer started")

	for {
		select {
		case <-ctx.Done():
			log.L().Info().Msg("workflow consumer stopping")
			return nil
		default:
		}

		ev := c.consumer.Poll(500)
		if ev == nil {
			continue
		}

		switch e := ev.(type) {
		case *kafka.Message:
			if err := c.handleMessage(ctx, e.Value); err != nil {
				log.L().Error().Err(err).
					Int32("partition", e.TopicPartition.Partition).
					Str("offset", e.TopicPartition.Offset.String()).
					Msg("workflow event handling failed")
			}
		case kafka.Error:
			log.L().Error().Err(e).Bool("fatal", e.IsFatal()).Msg("kafka error")
			if e.IsFatal() {
				return fmt.Errorf("fatal kafka error: %w", e)
			}
		case kafka.OffsetsCommitted:
			// Normal auto-commit acknowledgement
		default:
			// Ignore other events (rebalance, etc.)
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, value []byte) error {
	var event domain.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}

	return c.executor.HandleEvent(ctx, event)
}

// Close shuts the consumer down.
func (c *Consumer) Close() error {
	return c.consumer.Close()
}

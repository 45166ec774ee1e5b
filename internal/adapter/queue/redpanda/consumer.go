package redpanda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

// Handler processes decoded task payloads. Implemented by the pipeline runner.
type Handler interface {
	HandleExtract(ctx context.Context, payload domain.ExtractTaskPayload) error
	HandleEvaluate(ctx context.Context, payload domain.EvaluateTaskPayload) error
}

// Consumer reads both pipeline topics as one consumer group and dispatches
// records to the handler. Offsets are committed only after the handler
// returns, so a crashed worker replays the task.
type Consumer struct {
	client  *kgo.Client
	handler Handler
	groupID string
}

// NewConsumer constructs a Consumer and ensures both topics exist.
func NewConsumer(brokers []string, groupID string, handler Handler) (*Consumer, error) {
	slog.Info("creating redpanda consumer", slog.Any("brokers", brokers), slog.String("group_id", groupID))

	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if groupID == "" {
		return nil, fmt.Errorf("missing required group ID")
	}
	if handler == nil {
		return nil, fmt.Errorf("missing handler")
	}

	ctx := context.Background()
	tempClient, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return nil, fmt.Errorf("temp client: %w", err)
	}
	defer tempClient.Close()
	for _, topic := range []string{TopicExtract, TopicEvaluate} {
		if err := createTopicIfNotExists(ctx, tempClient, topic, 1, 1); err != nil {
			slog.Warn("failed to create topic, it may already exist",
				slog.String("topic", topic),
				slog.Any("error", err))
		}
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(TopicExtract, TopicEvaluate),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("redpanda client: %w", err)
	}

	return &Consumer{client: client, handler: handler, groupID: groupID}, nil
}

// Run polls and processes records until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	slog.Info("consumer loop starting", slog.String("group_id", c.groupID))
	for {
		fetches := c.client.PollFetches(ctx)
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil
		}
		if fetches.IsClientClosed() {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			slog.Error("fetch error",
				slog.String("topic", topic),
				slog.Int("partition", int(partition)),
				slog.Any("error", err))
		})
		fetches.EachRecord(func(rec *kgo.Record) {
			c.process(ctx, rec)
			if err := c.client.CommitRecords(ctx, rec); err != nil {
				slog.Error("commit failed",
					slog.String("topic", rec.Topic),
					slog.Int64("offset", rec.Offset),
					slog.Any("error", err))
			}
		})
	}
}

// process decodes and dispatches one record. Handler failures are logged but
// not retried here; the handler records the terminal state on the task row.
func (c *Consumer) process(ctx context.Context, rec *kgo.Record) {
	switch rec.Topic {
	case TopicExtract:
		var payload domain.ExtractTaskPayload
		if err := json.Unmarshal(rec.Value, &payload); err != nil {
			slog.Error("bad extract payload", slog.Any("error", err))
			return
		}
		if err := c.handler.HandleExtract(ctx, payload); err != nil {
			slog.Error("extract task failed",
				slog.String("task_id", payload.TaskID),
				slog.Int64("candidate_id", payload.CandidateID),
				slog.Any("error", err))
		}
	case TopicEvaluate:
		var payload domain.EvaluateTaskPayload
		if err := json.Unmarshal(rec.Value, &payload); err != nil {
			slog.Error("bad evaluate payload", slog.Any("error", err))
			return
		}
		if err := c.handler.HandleEvaluate(ctx, payload); err != nil {
			slog.Error("evaluate task failed",
				slog.String("task_id", payload.TaskID),
				slog.Int64("job_id", payload.JobID),
				slog.Any("error", err))
		}
	default:
		slog.Warn("record on unexpected topic", slog.String("topic", rec.Topic))
	}
}

// Close closes the consumer client.
func (c *Consumer) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}

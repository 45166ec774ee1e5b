// Package redpanda provides Redpanda/Kafka queue integration.
//
// It handles message publishing and consumption for the extraction and
// evaluation pipeline stages. The producer is transactional so a task row
// is never visible to workers without its message, and vice versa.
package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/fairyhunter13/agent-recruitment/internal/adapter/observability"
	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

const (
	// TopicExtract carries CV extraction tasks.
	TopicExtract = "cv-extract-tasks"
	// TopicEvaluate carries candidate evaluation tasks.
	TopicEvaluate = "cv-evaluate-tasks"
)

// Producer wraps a transactional Kafka producer and implements domain.Queue.
type Producer struct {
	client *kgo.Client
	// transactionChan serializes transactions across goroutines.
	transactionChan chan struct{}
}

// NewProducer constructs a Producer and ensures both topics exist.
func NewProducer(brokers []string) (*Producer, error) {
	return NewProducerWithTransactionalID(brokers, "agent-recruitment-producer")
}

// NewProducerWithTransactionalID constructs a Producer with a custom
// transactional ID. Useful for tests to avoid conflicts between producers.
func NewProducerWithTransactionalID(brokers []string, transactionalID string) (*Producer, error) {
	slog.Info("creating redpanda producer", slog.Any("brokers", brokers), slog.String("transactional_id", transactionalID))

	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.TransactionalID(transactionalID),
		kgo.RequestRetries(10),
		kgo.ProducerBatchMaxBytes(1000000),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		slog.Error("failed to create redpanda client", slog.Any("error", err))
		return nil, fmt.Errorf("redpanda client: %w", err)
	}

	ctx := context.Background()
	for _, topic := range []string{TopicExtract, TopicEvaluate} {
		if err := createTopicIfNotExists(ctx, client, topic, 1, 1); err != nil {
			slog.Warn("failed to create topic, it may already exist",
				slog.String("topic", topic),
				slog.Any("error", err))
		}
	}

	return &Producer{
		client:          client,
		transactionChan: make(chan struct{}, 1),
	}, nil
}

// EnqueueExtract enqueues a CV extraction task.
func (p *Producer) EnqueueExtract(ctx domain.Context, payload domain.ExtractTaskPayload) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	record := &kgo.Record{
		Topic: TopicExtract,
		// Key by candidate so repeated requests for one CV stay ordered.
		Key:   []byte(strconv.FormatInt(payload.CandidateID, 10)),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "task_id", Value: []byte(payload.TaskID)},
		},
	}
	if err := p.produce(ctx, payload.TaskID, record); err != nil {
		return err
	}
	observability.TasksEnqueuedTotal.WithLabelValues(string(domain.TaskExtract)).Inc()
	return nil
}

// EnqueueEvaluate enqueues a batch evaluation task.
func (p *Producer) EnqueueEvaluate(ctx domain.Context, payload domain.EvaluateTaskPayload) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	record := &kgo.Record{
		Topic: TopicEvaluate,
		Key:   []byte(strconv.FormatInt(payload.JobID, 10)),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "task_id", Value: []byte(payload.TaskID)},
		},
	}
	if err := p.produce(ctx, payload.TaskID, record); err != nil {
		return err
	}
	observability.TasksEnqueuedTotal.WithLabelValues(string(domain.TaskEvaluate)).Inc()
	return nil
}

// produce publishes one record inside a transaction.
func (p *Producer) produce(ctx domain.Context, taskID string, record *kgo.Record) error {
	select {
	case p.transactionChan <- struct{}{}:
		defer func() { <-p.transactionChan }()
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := p.client.BeginTransaction(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	e := kgo.AbortingFirstErrPromise(p.client)
	p.client.Produce(ctx, record, e.Promise())
	if err := e.Err(); err != nil {
		slog.Error("failed to produce message",
			slog.String("task_id", taskID),
			slog.String("topic", record.Topic),
			slog.Any("error", err))
		if abortErr := p.client.EndTransaction(ctx, kgo.TryAbort); abortErr != nil {
			slog.Error("failed to abort transaction", slog.Any("error", abortErr))
		}
		return fmt.Errorf("produce: %w", err)
	}

	if err := p.client.EndTransaction(ctx, kgo.TryCommit); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("task enqueued", slog.String("topic", record.Topic), slog.String("task_id", taskID))
	return nil
}

// Close closes the producer.
func (p *Producer) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}

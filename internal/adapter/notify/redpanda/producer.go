// Package redpanda publishes submission events to a Redpanda/Kafka topic.
//
// Delivery is best-effort and at most once from the pipeline's point of
// view: a failed publish is retried briefly, then logged and dropped. The
// intake pipeline's own success never depends on it.
package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/greenboard/eco-intake/internal/domain"
)

// TopicSubmissionCreated is the topic for submission lifecycle events.
const TopicSubmissionCreated = "submission-created"

// Notifier wraps a Kafka producer and implements domain.Notifier.
type Notifier struct {
	client  *kgo.Client
	timeout time.Duration
}

// NewNotifier constructs a Notifier and ensures the topic exists.
func NewNotifier(brokers []string, timeout time.Duration) (*Notifier, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchMaxBytes(1000000),
	)
	if err != nil {
		return nil, fmt.Errorf("redpanda client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := createTopicIfNotExists(ctx, client, TopicSubmissionCreated, 1, 1); err != nil {
		slog.Warn("failed to create topic, it may already exist",
			slog.String("topic", TopicSubmissionCreated),
			slog.Any("error", err))
	}
	return &Notifier{client: client, timeout: timeout}, nil
}

// SubmissionCreated publishes the event, keyed by student so one student's
// events stay ordered. Failures are retried within the notify timeout and
// then dropped with a warning.
func (n *Notifier) SubmissionCreated(ctx context.Context, ev domain.SubmissionCreatedEvent) {
	b, err := json.Marshal(ev)
	if err != nil {
		slog.Error("marshal submission event", slog.Any("error", err))
		return
	}
	rec := &kgo.Record{
		Topic: TopicSubmissionCreated,
		Key:   []byte(ev.StudentID),
		Value: b,
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	bo := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	err = backoff.Retry(func() error {
		return n.client.ProduceSync(ctx, rec).FirstErr()
	}, bo)
	if err != nil {
		slog.Warn("submission event dropped",
			slog.String("submission_id", ev.SubmissionID),
			slog.Any("error", err))
		return
	}
	slog.Debug("submission event published",
		slog.String("submission_id", ev.SubmissionID),
		slog.String("topic", TopicSubmissionCreated))
}

// Close flushes and closes the underlying client.
func (n *Notifier) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()
	if err := n.client.Flush(ctx); err != nil {
		slog.Warn("flush on close", slog.Any("error", err))
	}
	n.client.Close()
	return nil
}

// Ping checks broker connectivity for readiness probes.
func (n *Notifier) Ping(ctx context.Context) error {
	return n.client.Ping(ctx)
}

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/credimart/lending-service/internal/application/usecase"
	"github.com/credimart/lending-service/internal/domain/port"
	pkgkafka "github.com/credimart/lending-service/pkg/kafka"
)

// WorkerConfig tunes the disbursement worker pool.
type WorkerConfig struct {
	Workers         int
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultWorkerConfig returns the pool settings used in production.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Workers:         3,
		MaxRetries:      5,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     30 * time.Second,
	}
}

// WorkerPool consumes disbursement jobs and drives them through the
// disbursement use case. Each worker holds its own consumer in the shared
// group, so Kafka spreads partitions across the pool. A job that exhausts
// its retries is parked on the dead-letter topic for manual replay; the
// offset is committed either way so one poisoned job cannot wedge the
// partition.
type WorkerPool struct {
	cfg       WorkerConfig
	consumers []*pkgkafka.Consumer
	producer  *pkgkafka.Producer
	dlqTopic  string
	disburse  *usecase.DisburseLoanUseCase
	logger    *slog.Logger
}

// NewWorkerPool creates the pool. Consumers are created eagerly so a broker
// misconfiguration fails at startup, not on first delivery.
func NewWorkerPool(
	cfg WorkerConfig,
	kafkaCfg pkgkafka.Config,
	topic, dlqTopic string,
	producer *pkgkafka.Producer,
	disburse *usecase.DisburseLoanUseCase,
	logger *slog.Logger,
) *WorkerPool {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkerConfig().Workers
	}

	pool := &WorkerPool{
		cfg:      cfg,
		producer: producer,
		dlqTopic: dlqTopic,
		disburse: disburse,
		logger:   logger,
	}
	for i := 0; i < cfg.Workers; i++ {
		pool.consumers = append(pool.consumers, pkgkafka.NewConsumer(
			kafkaCfg, topic, pool.handle, logger.With("worker", i),
		))
	}
	return pool
}

// Start runs all workers until the context is canceled, then waits for them
// to drain.
func (p *WorkerPool) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for i, c := range p.consumers {
		wg.Add(1)
		go func(i int, c *pkgkafka.Consumer) {
			defer wg.Done()
			if err := c.Start(ctx); err != nil {
				p.logger.Error("disbursement worker stopped", "worker", i, "error", err)
			}
		}(i, c)
	}
	wg.Wait()
}

// Close closes all consumers.
func (p *WorkerPool) Close() {
	for _, c := range p.consumers {
		if err := c.Close(); err != nil {
			p.logger.Warn("closing disbursement consumer", "error", err)
		}
	}
}

func (p *WorkerPool) handle(ctx context.Context, msg pkgkafka.Message) error {
	var job port.DisbursementJob
	if err := json.Unmarshal(msg.Value, &job); err != nil {
		// Malformed payloads can never succeed; park them immediately.
		p.deadLetter(ctx, msg.Value, 0, fmt.Errorf("unmarshal disbursement job: %w", err))
		return nil
	}

	op := func() error {
		job.Attempt++
		_, err := p.disburse.Execute(ctx, job)
		if err != nil {
			p.logger.Warn("disbursement attempt failed",
				"loan_id", job.LoanID, "attempt", job.Attempt, "error", err)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.cfg.InitialInterval
	bo.MaxInterval = p.cfg.MaxInterval
	bo.MaxElapsedTime = 0 // bounded by retry count, not wall clock

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, p.cfg.MaxRetries), ctx))
	if err != nil {
		p.deadLetter(ctx, msg.Value, job.Attempt, err)
	}
	return err
}

// deadLetter parks the raw job payload for manual replay.
func (p *WorkerPool) deadLetter(ctx context.Context, payload []byte, attempts int, cause error) {
	p.logger.Error("disbursement job dead-lettered",
		"attempts", attempts, "error", cause)

	err := p.producer.Publish(ctx, p.dlqTopic, pkgkafka.Message{
		Value: payload,
		Headers: map[string]string{
			"attempts": strconv.Itoa(attempts),
			"error":    cause.Error(),
		},
	})
	if err != nil {
		p.logger.Error("dead-letter publish failed", "error", err)
	}
}

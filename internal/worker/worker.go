package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kudihq/kudi/common/logger"
	"github.com/kudihq/kudi/internal/queue"
	"github.com/kudihq/kudi/internal/service"
)

type Config struct {
	MaxAttempts int
}

// Worker drains the ledger event stream and runs alert evaluation over each
// event. Failed messages are requeued up to MaxAttempts, then parked in the
// DLQ.
type Worker struct {
	consumer  *queue.RedisConsumer
	evaluator service.AlertService
	cfg       Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer *queue.RedisConsumer, evaluator service.AlertService, cfg Config) *Worker {
	return &Worker{
		consumer:  consumer,
		evaluator: evaluator,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	slog.InfoContext(ctx, "worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				// Brief backoff on error
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		if err := w.processMessageSafe(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "message processing failed",
				"error", err,
				"message_id", msg.ID,
				"event_type", msg.EventType)
			w.handleFailedMessage(ctx, msg, err)
		}
	}

	return nil
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing",
				"panic", r,
				"message_id", msg.ID,
				"event_type", msg.EventType)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// ProcessMessage is exported so it can be reused by the reclaimer.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	eventType := string(msg.EventType)
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component:      "kudi.worker",
		MessageID:      &msg.ID,
		EventType:      &eventType,
		OrganizationID: &msg.OrganizationID,
		BusinessID:     &msg.BusinessID,
		TransactionID:  msg.TransactionID,
	})

	slog.InfoContext(ctx, "processing ledger event",
		"attempt", msg.Attempt)

	if err := w.evaluator.Evaluate(ctx, msg.Event()); err != nil {
		// Leave the message pending; redelivery or the reclaimer retries it.
		return fmt.Errorf("evaluating alerts: %w", err)
	}

	if err := w.consumer.Ack(ctx, msg); err != nil {
		// The message will be reclaimed, and evaluation is cooldown-guarded,
		// so a replay is safe.
		slog.WarnContext(ctx, "failed to ACK message",
			"error", err,
			"message_id", msg.ID)
	}

	return nil
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "max attempts reached, sending to DLQ",
			"message_id", msg.ID,
			"event_type", msg.EventType,
			"attempts", msg.Attempt)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed message",
		"message_id", msg.ID,
		"event_type", msg.EventType,
		"attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
}

package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type Producer interface {
	Enqueue(ctx context.Context, event LedgerEvent) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, event LedgerEvent) error {
	attempt := event.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"event_type":      string(event.EventType),
		"organization_id": event.OrganizationID,
		"business_id":     event.BusinessID,
		"attempt":         attempt,
	}

	if event.TransactionID != nil {
		fields["transaction_id"] = *event.TransactionID
	}
	if event.BankAccountID != nil {
		fields["bank_account_id"] = *event.BankAccountID
	}
	if event.TraceID != nil && *event.TraceID != "" {
		fields["trace_id"] = *event.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue ledger event: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued ledger event",
		"event_type", event.EventType,
		"organization_id", event.OrganizationID,
		"business_id", event.BusinessID,
		"attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}

package events

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	TopicCatalogUpdated  = "catalog-updated"
	catalogConsumerGroup = "orderdesk-catalog"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type CatalogInvalidator interface {
	InvalidateProducts(ctx context.Context) error
}

// CatalogConsumer drops the cached product list whenever the backend announces a catalog change.
// The payload is not inspected: any change means prices or stock may differ.
type CatalogConsumer struct {
	reader  messageReader
	cache   CatalogInvalidator
	log     *zap.Logger
	backoff time.Duration
}

func NewCatalogConsumer(cache CatalogInvalidator, log *zap.Logger, brokers ...string) *CatalogConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    TopicCatalogUpdated,
		GroupID:  catalogConsumerGroup,
		MaxBytes: 1e6, // 1MB
	})
	return &CatalogConsumer{reader: reader, cache: cache, log: log, backoff: time.Second}
}

func (c *CatalogConsumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.handleNext(ctx)
	}
}

func (c *CatalogConsumer) Close() error {
	return c.reader.Close()
}

func (c *CatalogConsumer) handleNext(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.log.Warn("error reading catalog event", zap.Error(err))
		select {
		case <-time.After(c.backoff):
		case <-ctx.Done():
		}
		return
	}

	if err := c.cache.InvalidateProducts(ctx); err != nil {
		c.log.Warn("failed to invalidate catalog cache", zap.Error(err))
		return
	}
	c.log.Debug("catalog cache invalidated", zap.Int("partition", m.Partition), zap.Int64("offset", m.Offset))
}

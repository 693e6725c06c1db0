package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/RaikyD/studio-booking-service/internal/domain"
	"github.com/RaikyD/studio-booking-service/internal/logger"
	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"
)

type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	// Backoff is the first delay between notification retries.
	Backoff time.Duration
}

type NotificationRetrier interface {
	RetryNotification(ctx context.Context, orderID string) error
}

const maxRetries = 5

// StartConsumer reads order events and re-drives notifications that failed
// while confirming. Every message is committed once handled, including the
// ones that could not be delivered after all retries.
func StartConsumer(ctx context.Context, svc NotificationRetrier, cfg ConsumerConfig) (*kafka.Reader, error) {
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:         cfg.Brokers,
		GroupID:         cfg.GroupID,
		Topic:           cfg.Topic,
		MinBytes:        1,
		MaxBytes:        10e6,
		CommitInterval:  0,
		StartOffset:     kafka.FirstOffset,
		ReadLagInterval: -1,
	})

	logger.Info("kafka consumer starting", "brokers", cfg.Brokers, "topic", cfg.Topic, "group", cfg.GroupID)

	go func() {
		defer r.Close()

		for {
			m, err := r.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("kafka fetch error", "err", err)
				sleep(ctx, cfg.Backoff)
				continue
			}

			handleMessage(ctx, svc, m, cfg.Backoff)

			if err := r.CommitMessages(ctx, m); err != nil {
				logger.Warn("kafka commit failed", "err", err)
			}
		}
	}()
	return r, nil
}

func handleMessage(ctx context.Context, svc NotificationRetrier, m kafka.Message, backoff time.Duration) {
	var e domain.OrderEvent
	if err := json.Unmarshal(m.Value, &e); err != nil {
		logger.Warn("kafka invalid json, skip", "partition", m.Partition, "offset", m.Offset, "err", err)
		return
	}
	if e.Type != domain.EventNotificationFailed {
		return
	}

	b := retry.WithMaxRetries(maxRetries, retry.NewExponential(backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		if err := svc.RetryNotification(ctx, e.OrderID); err != nil {
			logger.Warn("notification retry failed", "order_id", e.OrderID, "err", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		logger.Error("notification dropped after retries", "order_id", e.OrderID, "err", err)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

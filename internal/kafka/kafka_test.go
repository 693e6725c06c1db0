package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/RaikyD/studio-booking-service/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

type retrierFunc func(ctx context.Context, orderID string) error

func (f retrierFunc) RetryNotification(ctx context.Context, orderID string) error {
	return f(ctx, orderID)
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{w: w}

	e := domain.OrderEvent{
		ID:         "evt-1",
		Type:       domain.EventOrderConfirmed,
		OrderID:    "MAKA-1-1",
		Status:     domain.OrderStatusConfirmed,
		Amount:     50000,
		OccurredAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, p.Publish(context.Background(), e))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("MAKA-1-1"), w.msgs[0].Key)

	var got domain.OrderEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, e, got)
	assert.Contains(t, w.msgs[0].Headers, kafka.Header{Key: "event-type", Value: []byte(domain.EventOrderConfirmed)})
}

func TestProducer_PublishError(t *testing.T) {
	p := &Producer{w: &fakeWriter{err: errors.New("broker down")}}
	assert.Error(t, p.Publish(context.Background(), domain.OrderEvent{OrderID: "x"}))
}

func message(t *testing.T, e domain.OrderEvent) kafka.Message {
	t.Helper()
	b, err := json.Marshal(e)
	require.NoError(t, err)
	return kafka.Message{Value: b}
}

func TestHandleMessage_RetriesNotification(t *testing.T) {
	calls := 0
	svc := retrierFunc(func(_ context.Context, orderID string) error {
		calls++
		assert.Equal(t, "MAKA-1-1", orderID)
		if calls < 3 {
			return domain.ErrEmailFailed
		}
		return nil
	})

	handleMessage(context.Background(), svc, message(t, domain.OrderEvent{
		Type: domain.EventNotificationFailed, OrderID: "MAKA-1-1",
	}), time.Millisecond)

	assert.Equal(t, 3, calls)
}

func TestHandleMessage_GivesUp(t *testing.T) {
	calls := 0
	svc := retrierFunc(func(context.Context, string) error {
		calls++
		return domain.ErrEmailFailed
	})

	handleMessage(context.Background(), svc, message(t, domain.OrderEvent{
		Type: domain.EventNotificationFailed, OrderID: "MAKA-1-1",
	}), time.Millisecond)

	assert.Equal(t, maxRetries+1, calls)
}

func TestHandleMessage_IgnoresOtherEvents(t *testing.T) {
	svc := retrierFunc(func(context.Context, string) error {
		t.Fatal("unexpected retry")
		return nil
	})

	handleMessage(context.Background(), svc, message(t, domain.OrderEvent{Type: domain.EventOrderConfirmed}), time.Millisecond)
	handleMessage(context.Background(), svc, kafka.Message{Value: []byte("{not json")}, time.Millisecond)
}

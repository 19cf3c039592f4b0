package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func headerValue(msg kafka.Message, key string) string {
	return NewHeaderCarrier(&msg.Headers).Get(key)
}

func TestNewEvent(t *testing.T) {
	type cartData struct {
		Items int `json:"items"`
	}
	event, err := NewEvent("cart.updated", "c1", "cart", "storefront", cartData{Items: 2})
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "cart.updated", event.EventType)
	assert.Equal(t, "c1", event.AggregateID)
	assert.Equal(t, "cart", event.AggregateType)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)

	var got cartData
	require.NoError(t, event.UnmarshalData(&got))
	assert.Equal(t, 2, got.Items)

	_, err = NewEvent("x", "a", "t", "s", make(chan int))
	assert.Error(t, err)
}

func TestEvent_Builders(t *testing.T) {
	event := &Event{}
	result := event.WithCorrelationID("corr-1").WithMetadata("backend", "filesystem")

	assert.Same(t, event, result)
	assert.Equal(t, "corr-1", event.CorrelationID)
	assert.Equal(t, "filesystem", event.Metadata["backend"])
}

func TestUnmarshalEvent(t *testing.T) {
	original, err := NewEvent("product.deleted", "p1", "product", "storefront", map[string]string{"id": "p1"})
	require.NoError(t, err)
	data, err := original.Marshal()
	require.NoError(t, err)

	restored, err := UnmarshalEvent(data)
	require.NoError(t, err)
	assert.Equal(t, original.EventID, restored.EventID)
	assert.JSONEq(t, string(original.Data), string(restored.Data))

	_, err = UnmarshalEvent([]byte(`{broken`))
	assert.Error(t, err)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "storefront.product.created", Topic("product", "created"))
	assert.Equal(t, "storefront.cart.cleared", Topic("cart", "cleared"))
}

func TestProducer_Publish(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	w := &fakeWriter{}
	p := NewProducerWithWriter(w, []string{"localhost:9092"}, discardLogger())

	event, err := NewEvent("product.created", "p1", "product", "storefront", map[string]string{"name": "Mug"})
	require.NoError(t, err)
	event.WithCorrelationID("corr-9")

	topic := Topic("product", "created")
	before := testutil.ToFloat64(EventsPublished.WithLabelValues(topic, ResultOK))
	require.NoError(t, p.Publish(ctx, topic, event))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, topic, msg.Topic)
	assert.Equal(t, "p1", string(msg.Key))
	assert.Equal(t, "product.created", headerValue(msg, "event_type"))
	assert.Equal(t, "storefront", headerValue(msg, "source"))
	assert.Equal(t, "corr-9", headerValue(msg, "correlation_id"))
	assert.Contains(t, headerValue(msg, "traceparent"), "4bf92f3577b34da6a3ce929d0e0e4736")
	assert.Equal(t, before+1, testutil.ToFloat64(EventsPublished.WithLabelValues(topic, ResultOK)))

	decoded, err := UnmarshalEvent(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)
}

func TestProducer_PublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := NewProducerWithWriter(w, nil, discardLogger())

	event, err := NewEvent("cart.cleared", "c1", "cart", "storefront", nil)
	require.NoError(t, err)

	topic := Topic("cart", "cleared")
	before := testutil.ToFloat64(EventsPublished.WithLabelValues(topic, ResultError))
	err = p.Publish(context.Background(), topic, event)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
	assert.Equal(t, before+1, testutil.ToFloat64(EventsPublished.WithLabelValues(topic, ResultError)))
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, NewProducerWithWriter(w, nil, discardLogger()).Close())
	assert.True(t, w.closed)
}

func TestNewProducer(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"localhost:19092"})
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 5*time.Second, cfg.WriteTimeout)

	p := NewProducer(cfg, discardLogger())
	require.NotNil(t, p)
	assert.Equal(t, []string{"localhost:19092"}, p.brokers)
	assert.NoError(t, p.Close())
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	err := PingBrokers(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}

func TestHeaderCarrier(t *testing.T) {
	headers := []kafka.Header{{Key: "existing", Value: []byte("v1")}}
	c := NewHeaderCarrier(&headers)

	assert.Equal(t, "v1", c.Get("existing"))
	assert.Empty(t, c.Get("missing"))

	c.Set("existing", "v2")
	c.Set("new", "v3")
	assert.Equal(t, "v2", c.Get("existing"))
	assert.ElementsMatch(t, []string{"existing", "new"}, c.Keys())
	assert.Len(t, headers, 2)
}

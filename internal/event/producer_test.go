package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/domain"
	pkgkafka "github.com/Cleyssonfreitas/coderhouse-aula39/pkg/kafka"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/logger"
)

type recordingPublisher struct {
	topics []string
	events []*pkgkafka.Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, topic string, evt *pkgkafka.Event) error {
	r.topics = append(r.topics, topic)
	r.events = append(r.events, evt)
	return r.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProducer_PublishProductCreated(t *testing.T) {
	pub := &recordingPublisher{}
	p := NewProducer(pub, discardLogger())

	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	product := &domain.Product{ID: "p1", Name: "Widget", Price: 9.5, Thumbnails: []string{}}
	require.NoError(t, p.PublishProductCreated(ctx, product))

	require.Len(t, pub.events, 1)
	assert.Equal(t, "storefront.product.created", pub.topics[0])
	evt := pub.events[0]
	assert.Equal(t, "p1", evt.AggregateID)
	assert.Equal(t, AggregateTypeProduct, evt.AggregateType)
	assert.Equal(t, Source, evt.Source)
	assert.Equal(t, "corr-1", evt.CorrelationID)

	var got domain.Product
	require.NoError(t, evt.UnmarshalData(&got))
	assert.Equal(t, "Widget", got.Name)
}

func TestProducer_CartEvents(t *testing.T) {
	pub := &recordingPublisher{}
	p := NewProducer(pub, discardLogger())
	ctx := context.Background()

	cart := &domain.Cart{ID: "c1", Products: []domain.LineItem{{Product: "p1", Quantity: 2}, {Product: "p2", Quantity: 1}}}
	require.NoError(t, p.PublishCartUpdated(ctx, cart))
	require.NoError(t, p.PublishCartCleared(ctx, "c1"))
	require.NoError(t, p.PublishProductDeleted(ctx, "p9"))

	assert.Equal(t, []string{TopicCartUpdated, TopicCartCleared, TopicProductDeleted}, pub.topics)

	var data CartData
	require.NoError(t, pub.events[0].UnmarshalData(&data))
	assert.Equal(t, 3, data.ItemCount)

	require.NoError(t, pub.events[1].UnmarshalData(&data))
	assert.Empty(t, data.Products)

	var deleted ProductDeletedData
	require.NoError(t, pub.events[2].UnmarshalData(&deleted))
	assert.Equal(t, "p9", deleted.ID)
}

func TestProducer_PublishErrorIsWrapped(t *testing.T) {
	boom := errors.New("broker down")
	p := NewProducer(&recordingPublisher{err: boom}, discardLogger())

	err := p.PublishProductUpdated(context.Background(), &domain.Product{ID: "p1"})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), TopicProductUpdated)
}

func TestProducer_DisabledIsNoop(t *testing.T) {
	p := NewProducer(nil, discardLogger())
	assert.False(t, p.Enabled())
	assert.NoError(t, p.PublishProductDeleted(context.Background(), "p1"))

	var nilProducer *Producer
	assert.NoError(t, nilProducer.PublishCartCleared(context.Background(), "c1"))
}

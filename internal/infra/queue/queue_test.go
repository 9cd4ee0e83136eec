package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edicionpersuasiva/crm/internal/usecase"
)

type fakeChannel struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return c.err
}

type MockHandler struct {
	mock.Mock
}

func (m *MockHandler) Execute(ctx context.Context, event usecase.LeadCreatedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type ackRecorder struct {
	acked, nacked, requeued bool
}

func (a *ackRecorder) Ack(tag uint64, multiple bool) error {
	a.acked = true
	return nil
}

func (a *ackRecorder) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked, a.requeued = true, requeue
	return nil
}

func (a *ackRecorder) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func TestProducerPublishesLeadCreated(t *testing.T) {
	ch := &fakeChannel{}
	event := usecase.LeadCreatedEvent{LeadID: "lead-1", OccurredAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Origin: "intake_quiz"}

	err := NewProducer(ch).PublishLeadCreated(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, ExchangeName, ch.exchange)
	assert.Equal(t, RoutingKey, ch.key)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "lead-1", ch.msg.MessageId)

	var decoded usecase.LeadCreatedEvent
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, event.LeadID, decoded.LeadID)
	assert.Equal(t, "intake_quiz", decoded.Origin)
}

func TestProducerWrapsBrokerError(t *testing.T) {
	ch := &fakeChannel{err: amqp.ErrClosed}
	err := NewProducer(ch).PublishLeadCreated(context.Background(), usecase.LeadCreatedEvent{LeadID: "x"})
	assert.ErrorIs(t, err, amqp.ErrClosed)
}

func TestWorkerHandleDelivery(t *testing.T) {
	body, _ := json.Marshal(usecase.LeadCreatedEvent{LeadID: "lead-1"})

	t.Run("ack on success", func(t *testing.T) {
		h := new(MockHandler)
		h.On("Execute", mock.Anything, mock.MatchedBy(func(e usecase.LeadCreatedEvent) bool { return e.LeadID == "lead-1" })).Return(nil)
		ack := &ackRecorder{}

		NewWorker(nil, h, nil).handleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, Body: body})

		assert.True(t, ack.acked)
		assert.False(t, ack.nacked)
	})

	t.Run("dead letter on handler failure", func(t *testing.T) {
		h := new(MockHandler)
		h.On("Execute", mock.Anything, mock.Anything).Return(errors.New("smtp down"))
		ack := &ackRecorder{}

		NewWorker(nil, h, nil).handleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, Body: body})

		assert.True(t, ack.nacked)
		assert.False(t, ack.requeued)
	})

	t.Run("dead letter on malformed payload", func(t *testing.T) {
		h := new(MockHandler)
		ack := &ackRecorder{}

		NewWorker(nil, h, nil).handleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte(`{"lead_id":`)})

		assert.True(t, ack.nacked)
		h.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})
}

func TestInlineDispatcherRunsHandler(t *testing.T) {
	h := new(MockHandler)
	h.On("Execute", mock.Anything, mock.Anything).Return(nil)
	d := NewInlineDispatcher(h, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.PublishLeadCreated(ctx, usecase.LeadCreatedEvent{LeadID: "lead-1"}))
	cancel()
	d.Wait()

	h.AssertNumberOfCalls(t, "Execute", 1)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"infraspend/models"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp091.Publishing
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestEventPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := &EventPublisher{channel: ch, exchange: "infraspend.expenditures"}

	ev := testReviewEvent(models.StatusApproved)
	ev.ReviewedAt = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, p.ExpenditureReviewed(context.Background(), ev))

	assert.Equal(t, "infraspend.expenditures", ch.exchange)
	assert.Equal(t, "expenditure.approved", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, uint8(amqp091.Persistent), ch.msg.DeliveryMode)
	assert.Equal(t, ev.ReviewedAt, ch.msg.Timestamp)

	var body map[string]any
	require.NoError(t, json.Unmarshal(ch.msg.Body, &body))
	assert.Equal(t, "approved", body["status"])
	assert.Equal(t, "400000", body["amount"])
	assert.NotContains(t, body, "SubmitterEmail")

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestEventPublisher_PublishError(t *testing.T) {
	p := &EventPublisher{channel: &fakeChannel{err: errors.New("channel closed")}, exchange: "x"}
	err := p.ExpenditureReviewed(context.Background(), testReviewEvent(models.StatusRejected))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel closed")
}

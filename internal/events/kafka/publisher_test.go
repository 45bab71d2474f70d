package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/SscSPs/finance_bot/internal/events"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_KeysByTransactionID(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{writer: w}

	err := p.PublishTransactionRecorded(context.Background(), events.TransactionRecorded{TransactionID: "01J2ABC", Description: "coffee"})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	assert.Equal(t, []byte("01J2ABC"), w.msgs[0].Key)

	var decoded events.TransactionRecorded
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, "coffee", decoded.Description)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisher_WriteError(t *testing.T) {
	p := &Publisher{writer: &fakeWriter{err: assert.AnError}}

	err := p.PublishTransactionRecorded(context.Background(), events.TransactionRecorded{TransactionID: "x"})
	assert.ErrorIs(t, err, assert.AnError)
}

package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
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
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafka_Publish(t *testing.T) {
	w := &fakeWriter{}
	k := NewKafka(w)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	k.now = func() time.Time { return at }
	id := uuid.New()

	require.NoError(t, k.Publish(context.Background(), Event{Type: UserCreated, UserID: id, Username: "alice"}))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, id.String(), string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, UserCreated, string(msg.Headers[0].Value))

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "user_created", got["type"])
	assert.Equal(t, id.String(), got["user_id"])
	assert.Equal(t, "alice", got["username"])
	assert.Equal(t, "2024-01-02T03:04:05Z", got["at"])

	require.NoError(t, k.Close())
	assert.True(t, w.closed)
}

func TestKafka_PublishError(t *testing.T) {
	k := NewKafka(&fakeWriter{err: errors.New("no leader")})
	err := k.Publish(context.Background(), Event{Type: UserDeleted, UserID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user_deleted")
}

func TestNew_NoBrokersIsNop(t *testing.T) {
	p := New(nil, "")
	assert.IsType(t, Nop{}, p)
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	assert.NoError(t, p.Close())

	assert.IsType(t, &Kafka{}, New([]string{"localhost:9092"}, ""))
}

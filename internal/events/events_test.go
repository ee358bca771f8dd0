package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"
)

var at = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func TestTopic(t *testing.T) {
	assert.Equal(t, "clinic:events:42", Topic(42))
}

func TestRedisPublisher_PublishesOnTenantChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, Topic(7))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub := NewRedisPublisher(client)
	require.NoError(t, pub.Publish(ctx, New(AppointmentUpdated, 7, at, map[string]any{"id": 3})))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, Topic(7), msg.Channel)

	var got Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, AppointmentUpdated, got.Name)
	assert.Equal(t, uint(7), got.TenantID)
}

func TestRedisPublisher_ReportsConnectionFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	err := NewRedisPublisher(client).Publish(context.Background(), New(NewAppointment, 1, at, nil))
	assert.Error(t, err)
}

func TestHub_DeliversOnlyToSameTenant(t *testing.T) {
	hub := NewHub(zap.NewNop())
	mine := NewClient(1)
	theirs := NewClient(2)
	hub.Register(mine)
	hub.Register(theirs)
	assert.Equal(t, 1, hub.ClientCount(Topic(1)))

	require.NoError(t, hub.Publish(context.Background(), New(ParametersUpdated, 1, at, nil)))

	select {
	case data := <-mine.Send:
		var got Event
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, ParametersUpdated, got.Name)
	default:
		t.Fatal("expected a message for tenant 1")
	}
	assert.Empty(t, theirs.Send)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := NewClient(1)
	hub.Register(c)
	hub.Unregister(c)
	hub.Unregister(c)

	_, open := <-c.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.ClientCount(Topic(1)))
}

func TestHub_FullBufferDropsMessage(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := &Client{ID: "slow", Topic: Topic(1), Send: make(chan []byte, 1)}
	hub.Register(c)

	hub.Broadcast(Topic(1), []byte("a"))
	hub.Broadcast(Topic(1), []byte("b"))

	assert.Equal(t, []byte("a"), <-c.Send)
	assert.Empty(t, c.Send)
}

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, Event) error { return f.err }

type recordingPublisher struct{ got []Event }

func (r *recordingPublisher) Publish(_ context.Context, e Event) error {
	r.got = append(r.got, e)
	return nil
}

func TestMulti_ContinuesPastFailures(t *testing.T) {
	boom := errors.New("boom")
	rec := &recordingPublisher{}
	m := Multi{failingPublisher{err: boom}, nil, rec}

	err := m.Publish(context.Background(), New(NewAppointment, 1, at, nil))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, rec.got, 1)
}

func TestArchive_InsertsEvent(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		err := NewArchive(mt.DB).Publish(context.Background(), New(UpdatedAppointment, 3, at, map[string]any{"fees": 150}))
		assert.NoError(t, err)
	})

	mt.Run("write error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))
		err := NewArchive(mt.DB).Publish(context.Background(), New(UpdatedAppointment, 3, at, nil))
		assert.Error(t, err)
	})
}

package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus()

	var got []Event
	bus.Subscribe(EventJobCompleted, func(ctx context.Context, e Event) error {
		got = append(got, e)
		return nil
	})

	jobID := uuid.New()
	err := bus.Publish(context.Background(), Event{
		Type:    EventJobCompleted,
		Payload: JobEvent{JobID: jobID, Frames: 3},
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, EventJobCompleted, got[0].Type)
	assert.False(t, got[0].Timestamp.IsZero(), "publish must stamp the event")

	payload, ok := got[0].Payload.(JobEvent)
	require.True(t, ok)
	assert.Equal(t, jobID, payload.JobID)
	assert.Equal(t, 3, payload.Frames)
}

func TestBusOnlyMatchingTypeDelivered(t *testing.T) {
	bus := NewBus()

	var completed, failed int
	bus.Subscribe(EventJobCompleted, func(ctx context.Context, e Event) error {
		completed++
		return nil
	})
	bus.Subscribe(EventJobFailed, func(ctx context.Context, e Event) error {
		failed++
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), Event{Type: EventJobFailed}))

	assert.Equal(t, 0, completed)
	assert.Equal(t, 1, failed)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()

	var calls int
	unsubscribe := bus.Subscribe(EventJobProgress, func(ctx context.Context, e Event) error {
		calls++
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), Event{Type: EventJobProgress}))
	unsubscribe()
	require.NoError(t, bus.Publish(context.Background(), Event{Type: EventJobProgress}))

	assert.Equal(t, 1, calls)
}

func TestBusHandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewBus()

	var secondCalled bool
	bus.Subscribe(EventJobCreated, func(ctx context.Context, e Event) error {
		return errors.New("handler broke")
	})
	bus.Subscribe(EventJobCreated, func(ctx context.Context, e Event) error {
		secondCalled = true
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), Event{Type: EventJobCreated}))
	assert.True(t, secondCalled)
}

package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	handler := func(event *Event) error {
		received = event
		callCount++
		return nil
	}

	bus.Subscribe(handler, EventBookingConfirmed)

	err := bus.PublishJSON(EventBookingConfirmed, BookingEventPayload{BookingID: "b1", Status: "CONFIRMED"})
	require.NoError(t, err)

	assert.Equal(t, 1, callCount)
	require.NotNil(t, received)
	assert.Equal(t, EventBookingConfirmed, received.Type)

	var decoded BookingEventPayload
	require.NoError(t, received.Decode(&decoded))
	assert.Equal(t, "b1", decoded.BookingID)
	assert.Equal(t, "CONFIRMED", decoded.Status)
}

func TestEventBusSubscribeMany(t *testing.T) {
	bus := NewEventBus()
	var types []string
	bus.Subscribe(func(e *Event) error { types = append(types, e.Type); return nil },
		EventBookingCreated, EventBookingCancelled)

	require.NoError(t, bus.PublishJSON(EventBookingCreated, nil))
	require.NoError(t, bus.PublishJSON(EventBookingCancelled, nil))
	require.NoError(t, bus.PublishJSON(EventWalletDeposited, nil))

	assert.Equal(t, []string{EventBookingCreated, EventBookingCancelled}, types)
}

func TestEventBusHandlerErrors(t *testing.T) {
	bus := NewEventBus()
	var count int
	boom := errors.New("boom")

	bus.Subscribe(func(_ *Event) error { count++; return boom }, EventBookingFailed)
	bus.Subscribe(func(_ *Event) error { count++; return nil }, EventBookingFailed)

	err := bus.Publish(&Event{Type: EventBookingFailed})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, count)
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	assert.NoError(t, bus.Publish(&Event{Type: "unknown"}))
	assert.NoError(t, bus.PublishJSON("unknown", nil))

	var nilBus *EventBus
	assert.NoError(t, nilBus.PublishJSON("unknown", nil))
}

func TestNewJSONEvent(t *testing.T) {
	event, err := NewJSONEvent(EventBookingFailed, FailurePayload{Operation: "cancel", Messages: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, EventBookingFailed, event.Type)
	assert.False(t, event.CreatedAt.IsZero())

	var decoded FailurePayload
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	assert.Equal(t, "cancel", decoded.Operation)

	_, err = NewJSONEvent("bad", make(chan int))
	assert.Error(t, err)
}

package event_bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_Publish(t *testing.T) {
	t.Run("should call handlers in subscription order", func(t *testing.T) {
		// given
		bus := NewEventBus()
		var calls []string
		bus.Subscribe("test", func(Event) error { calls = append(calls, "first"); return nil })
		bus.Subscribe("test", func(Event) error { calls = append(calls, "second"); return nil })

		// when
		err := bus.Publish(NewEvent(context.Background(), "test", nil))

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second"}, calls)
	})

	t.Run("should deliver typed payloads", func(t *testing.T) {
		// given
		bus := NewEventBus()
		var received FiscalYearStatusChanged
		SubscribeTyped(bus, FiscalYearStatusChangedType, func(e EventT[FiscalYearStatusChanged]) error {
			received = e.Data
			return nil
		})

		// when
		err := bus.Publish(NewEvent(context.Background(), FiscalYearStatusChangedType, FiscalYearStatusChanged{Year: 2025, To: "publisert"}))

		// then
		require.NoError(t, err)
		assert.Equal(t, 2025, received.Year)
	})

	t.Run("should skip typed handlers for other payloads", func(t *testing.T) {
		// given
		bus := NewEventBus()
		called := false
		SubscribeTyped(bus, "test", func(e EventT[FiscalYearStatusChanged]) error { called = true; return nil })

		// when
		err := bus.Publish(NewEvent(context.Background(), "test", "not a status change"))

		// then
		require.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("should collect handler errors and panics", func(t *testing.T) {
		// given
		bus := NewEventBus()
		failure := errors.New("boom")
		ran := false
		bus.Subscribe("test", func(Event) error { return failure })
		bus.Subscribe("test", func(Event) error { panic("oops") })
		bus.Subscribe("test", func(Event) error { ran = true; return nil })

		// when
		err := bus.Publish(NewEvent(context.Background(), "test", nil))

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, failure)
		assert.Contains(t, err.Error(), "panicked")
		assert.True(t, ran)
	})

	t.Run("should stop on a cancelled context", func(t *testing.T) {
		// given
		bus := NewEventBus()
		called := false
		bus.Subscribe("test", func(Event) error { called = true; return nil })
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// when
		err := bus.Publish(NewEvent(ctx, "test", nil))

		// then
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})

	t.Run("should stop calling unsubscribed handlers", func(t *testing.T) {
		// given
		bus := NewEventBus()
		calls := 0
		unsubscribe := bus.Subscribe("test", func(Event) error { calls++; return nil })
		_ = bus.Publish(NewEvent(context.Background(), "test", nil))

		// when
		unsubscribe()
		_ = bus.Publish(NewEvent(context.Background(), "test", nil))

		// then
		assert.Equal(t, 1, calls)
	})
}

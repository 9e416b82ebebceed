package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryBus(t *testing.T) {
	t.Run("delivers to every subscriber", func(t *testing.T) {
		bus := NewBus()
		first, unsubFirst := bus.Subscribe()
		defer unsubFirst()
		second, unsubSecond := bus.Subscribe()
		defer unsubSecond()

		bus.Publish(Event{Type: TypeTrashMoved, Payload: "t1"})

		for _, ch := range []<-chan Event{first, second} {
			select {
			case e := <-ch:
				assert.Equal(t, TypeTrashMoved, e.Type)
				assert.NotEmpty(t, e.ID)
				assert.NotEmpty(t, e.Timestamp)
			case <-time.After(time.Second):
				t.Fatal("event not delivered")
			}
		}
	})

	t.Run("unsubscribe closes channel", func(t *testing.T) {
		bus := NewBus()
		ch, unsubscribe := bus.Subscribe()
		unsubscribe()

		_, open := <-ch
		assert.False(t, open)

		// publishing after unsubscribe must not panic
		bus.Publish(Event{Type: TypeTrashPurged})
	})

	t.Run("slow subscriber does not block publisher", func(t *testing.T) {
		bus := NewBus()
		_, unsubscribe := bus.Subscribe()
		defer unsubscribe()

		for i := 0; i < 150; i++ {
			bus.Publish(Event{Type: TypeTrashDeleted})
		}
	})
}

func TestBusNotifier(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	NewBusNotifier(bus).Notify(string(TypeNamespaceChanged), map[string]any{"key": "tenderItems_t1"})

	select {
	case e := <-ch:
		require.Equal(t, TypeNamespaceChanged, e.Type)
		require.Equal(t, map[string]any{"key": "tenderItems_t1"}, e.Payload)
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}

	var nilNotifier *BusNotifier
	nilNotifier.Notify("ignored", nil)
}

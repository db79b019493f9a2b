package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishToRoomSubscribers(t *testing.T) {
	bus := NewBus()
	a := bus.Subscribe("111111")
	b := bus.Subscribe("111111")
	other := bus.Subscribe("222222")

	bus.Publish(Event{Type: RoomUpdated, RoomCode: "111111"})

	for _, ch := range []chan Event{a, b} {
		select {
		case ev := <-ch:
			assert.Equal(t, RoomUpdated, ev.Type)
		default:
			t.Fatal("expected an event")
		}
	}
	select {
	case ev := <-other:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}

func TestBus_PublishNeverBlocks(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe("111111")

	for i := 0; i < 50; i++ {
		bus.Publish(Event{Type: RoomUpdated, RoomCode: "111111"})
	}
	assert.Len(t, ch, cap(ch))
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe("111111")
	require.Equal(t, 1, bus.Subscribers("111111"))

	bus.Unsubscribe("111111", ch)
	assert.Zero(t, bus.Subscribers("111111"))

	_, open := <-ch
	assert.False(t, open, "channel is closed on unsubscribe")

	bus.Publish(Event{Type: RoomClosed, RoomCode: "111111"})
}

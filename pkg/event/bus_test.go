package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversInSubscriptionOrder(t *testing.T) {
	var bus Bus[string]
	var got []string
	bus.Subscribe(func(ev Event[string]) { got = append(got, "a:"+ev.Payload) })
	bus.Subscribe(func(ev Event[string]) { got = append(got, "b:"+ev.Payload) })

	bus.Publish(Changed, "x")

	assert.Equal(t, []string{"a:x", "b:x"}, got)
	assert.Equal(t, 2, bus.SubscriberCount())
}

func TestBusUnsubscribe(t *testing.T) {
	var bus Bus[int]
	calls := 0
	unsubscribe := bus.Subscribe(func(Event[int]) { calls++ })

	bus.Publish(Added, 1)
	unsubscribe()
	unsubscribe()
	bus.Publish(Added, 2)

	assert.Equal(t, 1, calls)
	assert.Zero(t, bus.SubscriberCount())
}

func TestBusUnsubscribeDuringDelivery(t *testing.T) {
	var bus Bus[int]
	var order []string
	var unsubscribeSecond func()
	bus.Subscribe(func(Event[int]) {
		order = append(order, "first")
		unsubscribeSecond()
	})
	unsubscribeSecond = bus.Subscribe(func(Event[int]) { order = append(order, "second") })

	bus.Publish(Changed, 0)
	bus.Publish(Changed, 0)

	require.Equal(t, []string{"first", "second", "first"}, order)
}

func TestBusNestedPublishIsDepthFirst(t *testing.T) {
	var bus Bus[int]
	var order []int
	bus.Subscribe(func(ev Event[int]) {
		order = append(order, ev.Payload)
		if ev.Payload == 1 {
			bus.Publish(Changed, 2)
		}
	})
	bus.Subscribe(func(ev Event[int]) { order = append(order, ev.Payload*10) })

	bus.Publish(Changed, 1)

	assert.Equal(t, []int{1, 2, 20, 10}, order)
}

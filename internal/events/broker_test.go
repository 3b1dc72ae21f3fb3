package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscribers(t *testing.T) {
	b := NewBroker()
	a := b.Subscribe("s1")
	c := b.Subscribe("s1")
	other := b.Subscribe("s2")

	b.Publish("s1", "loading")

	for _, ch := range []<-chan Event{a, c} {
		ev := <-ch
		assert.Equal(t, "s1", ev.Topic)
		assert.Equal(t, "loading", ev.Data)
	}
	assert.Len(t, other, 0)
}

func TestPublishKeepsLatest(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("s1")

	b.Publish("s1", 1)
	b.Publish("s1", 2)
	b.Publish("s1", 3)

	ev := <-ch
	assert.Equal(t, 3, ev.Data)
	assert.Len(t, ch, 0)
}

func TestUnsubscribe(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("s1")
	require.Equal(t, 1, b.SubscriberCount("s1"))

	b.Unsubscribe("s1", ch)
	assert.Equal(t, 0, b.SubscriberCount("s1"))

	_, open := <-ch
	assert.False(t, open)

	assert.NotPanics(t, func() { b.Publish("s1", "ignored") })
}

func TestCloseTopic(t *testing.T) {
	b := NewBroker()
	a := b.Subscribe("s1")
	c := b.Subscribe("s1")

	b.CloseTopic("s1")

	_, openA := <-a
	_, openC := <-c
	assert.False(t, openA)
	assert.False(t, openC)
	assert.Equal(t, 0, b.SubscriberCount("s1"))
}

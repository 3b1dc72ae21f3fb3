package events

import "sync"

// Event represents a message passed through the broker.
type Event struct {
	Topic string
	Data  any
}

// Broker is an in-memory pub/sub keyed by topic (one topic per session).
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event
}

// NewBroker creates a new event broker.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[string][]chan Event),
	}
}

// Subscribe returns a channel receiving events for topic.
// The channel holds the latest event only; slow readers skip intermediate ones.
func (b *Broker) Subscribe(topic string) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 1)
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	return ch
}

// Unsubscribe removes ch from topic and closes it.
func (b *Broker) Unsubscribe(topic string, ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[topic]
	for i, sub := range subs {
		if sub == ch {
			close(sub)
			subs = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(b.subscribers, topic)
		return
	}
	b.subscribers[topic] = subs
}

// CloseTopic closes every subscriber of topic.
func (b *Broker) CloseTopic(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subscribers[topic] {
		close(ch)
	}
	delete(b.subscribers, topic)
}

// Publish sends an event to all subscribers of a topic without blocking.
func (b *Broker) Publish(topic string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	event := Event{Topic: topic, Data: data}
	for _, ch := range b.subscribers[topic] {
		// 丢弃旧事件，保留最新
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount reports how many subscribers topic has.
func (b *Broker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}

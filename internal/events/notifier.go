package events

// Change describes a mutated photo collection
type Change struct {
	// Source is the service that changed: "feed", "favorites" or "profile"
	Source string `json:"source"`
	// Count is the number of photos held after the change
	Count int `json:"count"`
}

// Notifier is a typed broadcast channel on one topic
type Notifier[T any] struct {
	bus   *Bus
	topic Topic
}

// NewNotifier binds a typed channel for topic to the bus
func NewNotifier[T any](bus *Bus, topic Topic) *Notifier[T] {
	return &Notifier[T]{bus: bus, topic: topic}
}

// Topic returns the channel name
func (n *Notifier[T]) Topic() Topic {
	return n.topic
}

// Publish delivers payload to the handlers subscribed right now. With no
// subscriber the event is dropped.
func (n *Notifier[T]) Publish(payload T) {
	n.bus.publish(n.topic, payload)
}

// Subscribe registers handler; it runs on the bus goroutine
func (n *Notifier[T]) Subscribe(handler func(T)) Subscription {
	return n.bus.subscribe(n.topic, func(payload any) {
		handler(payload.(T))
	})
}

// Unsubscribe releases the handle and reports whether it was registered
func (n *Notifier[T]) Unsubscribe(sub Subscription) bool {
	if sub.Topic != n.topic {
		return false
	}
	return n.bus.unsubscribe(sub)
}

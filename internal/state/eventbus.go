package state

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

type EventType int

const (
	EVENT_CHAN_LENGTH = 16
)

const (
	EventUnkown EventType = iota
	OperationSubmitted
	OperationConfirming
	OperationConfirmed
	OperationFailed
)

func (e EventType) String() string {
	return [...]string{"EventUnkown", "OperationSubmitted", "OperationConfirming", "OperationConfirmed", "OperationFailed"}[e]
}

// EventBus fans events out to subscriber channels without ever blocking the
// publisher. A subscriber whose buffer is full misses that event.
type EventBus struct {
	subscribers map[EventType][]chan interface{}
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]chan interface{}),
	}
}

func (eb *EventBus) Subscribe(eventType EventType, ch chan interface{}) {
	if ch == nil {
		panic("channel == nil")
	}
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
}

// Publish returns how many subscribers received the event.
func (eb *EventBus) Publish(eventType EventType, data interface{}) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	delivered := 0
	for _, ch := range eb.subscribers[eventType] {
		select {
		case ch <- data:
			delivered++
		default:
			log.Debugf("EventBus drop %s, subscriber buffer full", eventType)
		}
	}
	return delivered
}

func (eb *EventBus) Unsubscribe(eventType EventType, ch chan interface{}) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subscribers := eb.subscribers[eventType]
	for i, subscriber := range subscribers {
		if subscriber == ch {
			eb.subscribers[eventType] = append(subscribers[:i:i], subscribers[i+1:]...)
			break
		}
	}
	if len(eb.subscribers[eventType]) == 0 {
		delete(eb.subscribers, eventType)
	}
}

func (eb *EventBus) SubscriberCount(eventType EventType) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers[eventType])
}

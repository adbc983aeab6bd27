package domain

import (
	"sync"
	"time"
)

type EventType string

const (
	EventTypeChatUpdated     EventType = "chat.updated"
	EventTypeMessageAppended EventType = "message.appended"
	EventTypeMessageUpdated  EventType = "message.updated"
	EventTypeChatCleared     EventType = "chat.cleared"
	EventTypeUserUpdated     EventType = "user.updated"
	EventTypeStatusPosted    EventType = "status.posted"
	EventTypeStatusViewed    EventType = "status.viewed"
	EventTypeCallLogged      EventType = "call.logged"
	EventTypeCallDeleted     EventType = "call.deleted"
	EventTypeTypingChanged   EventType = "typing.changed"
)

type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// ChatUpdatedEvent fires on chat creation and on any chat-document field
// write (preview, mute, pin).
type ChatUpdatedEvent struct {
	ChatID    string
	EventTime time.Time
}

func (e ChatUpdatedEvent) Type() EventType      { return EventTypeChatUpdated }
func (e ChatUpdatedEvent) Timestamp() time.Time { return e.EventTime }

type MessageAppendedEvent struct {
	Message   *Message
	EventTime time.Time
}

func (e MessageAppendedEvent) Type() EventType      { return EventTypeMessageAppended }
func (e MessageAppendedEvent) Timestamp() time.Time { return e.EventTime }

// MessageUpdatedEvent fires on edits, tombstones, reactions, and receipt
// set changes.
type MessageUpdatedEvent struct {
	ChatID    string
	MessageID string
	EventTime time.Time
}

func (e MessageUpdatedEvent) Type() EventType      { return EventTypeMessageUpdated }
func (e MessageUpdatedEvent) Timestamp() time.Time { return e.EventTime }

type ChatClearedEvent struct {
	ChatID    string
	EventTime time.Time
}

func (e ChatClearedEvent) Type() EventType      { return EventTypeChatCleared }
func (e ChatClearedEvent) Timestamp() time.Time { return e.EventTime }

type UserUpdatedEvent struct {
	UID       string
	EventTime time.Time
}

func (e UserUpdatedEvent) Type() EventType      { return EventTypeUserUpdated }
func (e UserUpdatedEvent) Timestamp() time.Time { return e.EventTime }

type StatusPostedEvent struct {
	Status    *Status
	EventTime time.Time
}

func (e StatusPostedEvent) Type() EventType      { return EventTypeStatusPosted }
func (e StatusPostedEvent) Timestamp() time.Time { return e.EventTime }

type StatusViewedEvent struct {
	StatusID  string
	ViewerID  string
	EventTime time.Time
}

func (e StatusViewedEvent) Type() EventType      { return EventTypeStatusViewed }
func (e StatusViewedEvent) Timestamp() time.Time { return e.EventTime }

type CallLoggedEvent struct {
	Call      *CallRecord
	EventTime time.Time
}

func (e CallLoggedEvent) Type() EventType      { return EventTypeCallLogged }
func (e CallLoggedEvent) Timestamp() time.Time { return e.EventTime }

type CallDeletedEvent struct {
	CallID    string
	EventTime time.Time
}

func (e CallDeletedEvent) Type() EventType      { return EventTypeCallDeleted }
func (e CallDeletedEvent) Timestamp() time.Time { return e.EventTime }

type TypingChangedEvent struct {
	ChatID    string
	UID       string
	IsTyping  bool
	EventTime time.Time
}

func (e TypingChangedEvent) Type() EventType      { return EventTypeTypingChanged }
func (e TypingChangedEvent) Timestamp() time.Time { return e.EventTime }

// EventBus provides pub/sub for domain events. It is the live-query substrate:
// every write path that a standing view depends on publishes an invalidation
// event, and subscribers requery on delivery.
type EventBus interface {
	Publish(event Event)
	Subscribe(eventTypes []EventType) <-chan Event
	Unsubscribe(ch <-chan Event)
}

// SimpleEventBus is a basic in-memory implementation of EventBus
type SimpleEventBus struct {
	mu          sync.RWMutex
	subscribers map[<-chan Event]subscription
}

type subscription struct {
	ch         chan Event
	eventTypes map[EventType]bool
}

func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{
		subscribers: make(map[<-chan Event]subscription),
	}
}

func (b *SimpleEventBus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		if len(sub.eventTypes) == 0 || sub.eventTypes[event.Type()] {
			select {
			case sub.ch <- event:
			default:
				// Channel full, skip this subscriber
			}
		}
	}
}

func (b *SimpleEventBus) Subscribe(eventTypes []EventType) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 100)
	typeMap := make(map[EventType]bool)
	for _, t := range eventTypes {
		typeMap[t] = true
	}

	b.subscribers[ch] = subscription{
		ch:         ch,
		eventTypes: typeMap,
	}

	return ch
}

func (b *SimpleEventBus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subscribers[ch]; ok {
		close(sub.ch)
		delete(b.subscribers, ch)
	}
}

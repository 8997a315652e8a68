package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// subscriberBuffer bounds how far a slow stream may lag before messages are dropped.
const subscriberBuffer = 32

type (
	Message struct {
		Name string          `json:"name"`
		Data json.RawMessage `json:"data"`
	}

	Subscription struct {
		id     uint64
		userID uuid.UUID
		ch     chan Message
	}

	// Hub fans messages out to the live streams opened on this instance.
	Hub struct {
		mu     sync.RWMutex
		nextID uint64
		subs   map[uuid.UUID]map[uint64]*Subscription
	}
)

func NewHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]map[uint64]*Subscription)}
}

func (s *Subscription) C() <-chan Message  { return s.ch }
func (s *Subscription) UserID() uuid.UUID { return s.userID }

func (h *Hub) Subscribe(userID uuid.UUID) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		id:     h.nextID,
		userID: userID,
		ch:     make(chan Message, subscriberBuffer),
	}
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[uint64]*Subscription)
	}
	h.subs[userID][sub.id] = sub

	return sub
}

// Unsubscribe reports whether the user has no streams left on this instance.
func (h *Hub) Unsubscribe(sub *Subscription) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	userSubs, ok := h.subs[sub.userID]
	if !ok {
		return true
	}
	if _, ok = userSubs[sub.id]; ok {
		delete(userSubs, sub.id)
		close(sub.ch)
	}
	if len(userSubs) == 0 {
		delete(h.subs, sub.userID)
		return true
	}
	return false
}

// Send never blocks; it returns how many streams accepted the message.
func (h *Hub) Send(userID uuid.UUID, msg Message) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var n int
	for _, sub := range h.subs[userID] {
		select {
		case sub.ch <- msg:
			n++
		default:
		}
	}
	return n
}

func (h *Hub) Connected(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID]) > 0
}

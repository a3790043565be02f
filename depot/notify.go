package depot

import (
	"sync"
	"time"
)

// MatchEvent announces that a scoring run produced a match worth
// surfacing to observers (activity feeds, chat prompts).
type MatchEvent struct {
	DonationID  string    `json:"donationId"`
	RecipientID string    `json:"recipientId"`
	Score       int       `json:"score"`
	At          time.Time `json:"at"`
}

// MatchNotifier fans match events out to registered subscribers over
// channels. Registration is explicit; there is no ambient global
// dispatch. Publish never blocks: a subscriber whose buffer is full
// misses the event.
type MatchNotifier struct {
	subscribers map[int]chan MatchEvent
	nextID      int
	buffer      int
	mu          sync.Mutex
}

// NewMatchNotifier creates a notifier whose subscriber channels hold
// up to buffer undelivered events.
func NewMatchNotifier(buffer int) *MatchNotifier {
	if buffer < 1 {
		buffer = 1
	}
	return &MatchNotifier{
		subscribers: make(map[int]chan MatchEvent),
		buffer:      buffer,
	}
}

// Subscribe registers an observer. The returned cancel func
// unregisters it and closes the channel; calling cancel twice is safe.
func (n *MatchNotifier) Subscribe() (<-chan MatchEvent, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan MatchEvent, n.buffer)
	n.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subscribers, id)
			close(ch)
		})
	}

	return ch, cancel
}

// Publish delivers the event to every subscriber that has buffer room.
func (n *MatchNotifier) Publish(ev MatchEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subscribers {
		select {
		case ch <- ev:
		default:
			// Subscriber is lagging; drop rather than block scoring.
		}
	}
}

// SubscriberCount returns the number of registered observers.
func (n *MatchNotifier) SubscriberCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subscribers)
}

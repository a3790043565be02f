package depot

import (
	"testing"
	"time"
)

func TestNotifierDeliversToSubscribers(t *testing.T) {
	n := NewMatchNotifier(4)

	ch1, cancel1 := n.Subscribe()
	defer cancel1()
	ch2, cancel2 := n.Subscribe()
	defer cancel2()

	if got := n.SubscriberCount(); got != 2 {
		t.Fatalf("SubscriberCount() = %d, want 2", got)
	}

	ev := MatchEvent{DonationID: "d-1", RecipientID: "r-1", Score: 75, At: time.Now()}
	n.Publish(ev)

	for i, ch := range []<-chan MatchEvent{ch1, ch2} {
		select {
		case got := <-ch:
			if got.DonationID != "d-1" || got.Score != 75 {
				t.Errorf("subscriber %d got %+v", i, got)
			}
		default:
			t.Errorf("subscriber %d received nothing", i)
		}
	}
}

func TestNotifierCancelUnsubscribesAndCloses(t *testing.T) {
	n := NewMatchNotifier(1)

	ch, cancel := n.Subscribe()
	cancel()

	if got := n.SubscriberCount(); got != 0 {
		t.Errorf("SubscriberCount() after cancel = %d, want 0", got)
	}

	if _, open := <-ch; open {
		t.Error("channel should be closed after cancel")
	}

	// A second cancel is a no-op.
	cancel()
}

func TestNotifierDropsWhenBufferFull(t *testing.T) {
	n := NewMatchNotifier(1)

	ch, cancel := n.Subscribe()
	defer cancel()

	n.Publish(MatchEvent{DonationID: "first"})
	n.Publish(MatchEvent{DonationID: "dropped"})

	got := <-ch
	if got.DonationID != "first" {
		t.Errorf("got %q, want the first event", got.DonationID)
	}

	select {
	case extra := <-ch:
		t.Errorf("unexpected second event %q; overflow should be dropped", extra.DonationID)
	default:
	}
}

func TestNotifierPublishWithoutSubscribers(t *testing.T) {
	n := NewMatchNotifier(1)
	// Must not panic or block.
	n.Publish(MatchEvent{DonationID: "d-1"})
}

func TestNotifierMinimumBuffer(t *testing.T) {
	n := NewMatchNotifier(0)

	ch, cancel := n.Subscribe()
	defer cancel()

	// Buffer is clamped to one, so a single publish is never dropped.
	n.Publish(MatchEvent{DonationID: "d-1"})
	select {
	case got := <-ch:
		if got.DonationID != "d-1" {
			t.Errorf("got %q, want d-1", got.DonationID)
		}
	default:
		t.Error("event was dropped despite clamped buffer")
	}
}

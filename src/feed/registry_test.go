package feed

import (
	"reflect"
	"sync"
	"testing"
)

// fakeSubscriber records subscribe/unsubscribe signals.
type fakeSubscriber struct {
	mu     sync.Mutex
	subs   []string
	unsubs []string
}

func (f *fakeSubscriber) Subscribe(symbol string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, symbol)
}

func (f *fakeSubscriber) Unsubscribe(symbol string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubs = append(f.unsubs, symbol)
}

func TestRegistry_AddIsIdempotent(t *testing.T) {
	r := NewSubscriptionRegistry()
	sub := &fakeSubscriber{}
	r.Attach(sub)

	if !r.Add("BINANCE:BTCUSDT") {
		t.Error("first add should report newly added")
	}
	if r.Add("BINANCE:BTCUSDT") {
		t.Error("second add should be a no-op")
	}

	if !r.Contains("BINANCE:BTCUSDT") {
		t.Error("symbol should be a member")
	}
	if len(sub.subs) != 1 {
		t.Errorf("subscriber should be signalled once, got %d", len(sub.subs))
	}
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	r := NewSubscriptionRegistry()
	sub := &fakeSubscriber{}
	r.Attach(sub)

	r.Add("ETH")
	if !r.Remove("ETH") {
		t.Error("remove of a member should report true")
	}
	if r.Remove("ETH") {
		t.Error("second remove should be a no-op")
	}
	if r.Contains("ETH") {
		t.Error("symbol should be gone")
	}
	if len(sub.unsubs) != 1 {
		t.Errorf("subscriber should be signalled once, got %d", len(sub.unsubs))
	}
}

func TestRegistry_InsertionOrder(t *testing.T) {
	r := NewSubscriptionRegistry()

	r.Add("C")
	r.Add("A")
	r.Add("B")
	r.Add("A") // duplicate must not move A

	want := []string{"C", "A", "B"}
	if got := r.Symbols(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected insertion order %v, got %v", want, got)
	}

	r.Remove("A")
	want = []string{"C", "B"}
	if got := r.Symbols(); !reflect.DeepEqual(got, want) {
		t.Errorf("after remove expected %v, got %v", want, got)
	}
}

func TestRegistry_EmptySymbolRejected(t *testing.T) {
	r := NewSubscriptionRegistry()
	if r.Add("") {
		t.Error("empty symbol must not be added")
	}
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d members", r.Len())
	}
}

func TestRegistry_NoSubscriberAttached(t *testing.T) {
	r := NewSubscriptionRegistry()

	// Must not panic without a subscriber.
	r.Add("AAPL")
	r.Remove("AAPL")
}

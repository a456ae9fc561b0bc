package feed

import "sync"

// -----------------------------------------------------------------------------
// SubscriptionRegistry: the set of symbols the feed should be subscribed to.
// Single source of truth for resubscription replay. Iteration is insertion
// ordered so replay is deterministic.
// -----------------------------------------------------------------------------

// Subscriber receives registry transitions. The feed connector implements it;
// tests attach a fake.
type Subscriber interface {
	Subscribe(symbol string)
	Unsubscribe(symbol string)
}

// -----------------------------------------------------------------------------

type SubscriptionRegistry struct {
	mu         sync.Mutex
	order      []string
	members    map[string]bool
	subscriber Subscriber
}

// -----------------------------------------------------------------------------

func NewSubscriptionRegistry() *SubscriptionRegistry {
	return &SubscriptionRegistry{
		members: make(map[string]bool),
	}
}

// -----------------------------------------------------------------------------

// Attach wires the downstream subscriber. Must be called before the feed
// starts; transitions before Attach only mutate the set.
func (r *SubscriptionRegistry) Attach(s Subscriber) {
	r.mu.Lock()
	r.subscriber = s
	r.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Add registers a symbol. Idempotent: re-adding an existing member is a no-op
// and does not re-signal the subscriber. Returns true if newly added.
func (r *SubscriptionRegistry) Add(symbol string) bool {
	if symbol == "" {
		return false
	}

	r.mu.Lock()
	if r.members[symbol] {
		r.mu.Unlock()
		return false
	}
	r.members[symbol] = true
	r.order = append(r.order, symbol)
	sub := r.subscriber
	r.mu.Unlock()

	if sub != nil {
		sub.Subscribe(symbol)
	}
	return true
}

// -----------------------------------------------------------------------------

// Remove drops a symbol. Idempotent. Returns true if it was a member.
func (r *SubscriptionRegistry) Remove(symbol string) bool {
	r.mu.Lock()
	if !r.members[symbol] {
		r.mu.Unlock()
		return false
	}
	delete(r.members, symbol)
	for i, s := range r.order {
		if s == symbol {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	sub := r.subscriber
	r.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe(symbol)
	}
	return true
}

// -----------------------------------------------------------------------------

// Contains reports membership.
func (r *SubscriptionRegistry) Contains(symbol string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.members[symbol]
}

// -----------------------------------------------------------------------------

// Symbols returns the members in insertion order.
func (r *SubscriptionRegistry) Symbols() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// -----------------------------------------------------------------------------

// Len returns the member count.
func (r *SubscriptionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

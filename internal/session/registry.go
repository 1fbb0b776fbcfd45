package session

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/orderdesk/internal/cart"
	"github.com/fjod/orderdesk/internal/checkout"
	"github.com/fjod/orderdesk/internal/domain"
	"github.com/fjod/orderdesk/internal/events"
	"go.uber.org/zap"
)

// Session is one actor's ordering state: a live cart and the coordinator that checks it out.
type Session struct {
	Actor    domain.Actor
	Cart     *cart.Store
	Checkout *checkout.Coordinator

	lastSeen time.Time
}

// Registry keeps sessions in memory, one per actor id.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	gateway       checkout.OrderGateway
	publisher     events.Publisher
	submitTimeout time.Duration
	idleTTL       time.Duration
	log           *zap.Logger
	now           func() time.Time
}

func NewRegistry(gw checkout.OrderGateway, publisher events.Publisher, submitTimeout, idleTTL time.Duration, log *zap.Logger) *Registry {
	return &Registry{
		sessions:      make(map[string]*Session),
		gateway:       gw,
		publisher:     publisher,
		submitTimeout: submitTimeout,
		idleTTL:       idleTTL,
		log:           log,
		now:           time.Now,
	}
}

// Get returns the actor's session, creating an empty one on first use.
// Customers price at their own channel; agents start without one until they pick a customer.
func (r *Registry) Get(actor domain.Actor) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[actor.ID]
	if !ok || s.Actor.Role != actor.Role || channelChanged(s, actor) {
		var channel domain.ChannelType
		if !actor.OrdersForOthers() {
			channel = actor.Channel
		}
		store := cart.NewStore(channel)
		s = &Session{
			Actor:    actor,
			Cart:     store,
			Checkout: checkout.NewCoordinator(actor, store, r.gateway, r.publisher, r.submitTimeout, r.log),
		}
		r.sessions[actor.ID] = s
	}
	s.lastSeen = r.now()
	return s
}

// channelChanged reports a customer whose token now carries another channel.
// The old session is kept while its cart holds lines priced for the old channel or a submit is running.
func channelChanged(s *Session, actor domain.Actor) bool {
	if actor.OrdersForOthers() || s.Actor.Channel == actor.Channel {
		return false
	}
	return s.Cart.IsEmpty() && s.Checkout.State() == checkout.StateIdle
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle longer than the TTL. A session with a submission in flight is kept.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idleTTL)
	evicted := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) && s.Checkout.State() == checkout.StateIdle {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Run sweeps periodically until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.log.Info("evicted idle sessions", zap.Int("count", n), zap.Int("remaining", r.Len()))
			}
		case <-ctx.Done():
			return
		}
	}
}

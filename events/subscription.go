package events

import (
	"strings"
	"sync"

	"github.com/fermion-app/sdk/logging"
)

// Subscription is one live binding to the host message channel. It owns a
// single channel registration from construction until Dispose.
type Subscription struct {
	hostname string
	allowed  []Kind
	logger   *logging.Logger

	mu          sync.Mutex
	callbacks   map[Kind]func(Event)
	unsubscribe func()
	disposed    bool
}

// NewSubscription registers one listener on the channel and returns the
// subscription that owns it. Multiple subscriptions coexist independently,
// each with its own listener.
func NewSubscription(channel Channel, hostname string, allowed []Kind, logger *logging.Logger) *Subscription {
	if logger == nil {
		logger = logging.New(logging.WARN, "events")
	}

	s := &Subscription{
		hostname:  hostname,
		allowed:   allowed,
		logger:    logger,
		callbacks: make(map[Kind]func(Event)),
	}
	s.unsubscribe = channel.Subscribe(s.handle)
	return s
}

// On registers the callback for one event kind. Registration is last write
// wins: calling On again for the same kind replaces the previous callback.
func (s *Subscription) On(kind Kind, callback func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks[kind] = callback
}

// Dispose removes the channel listener. It is safe to call repeatedly; the
// listener is removed exactly once and no dispatch happens afterwards.
func (s *Subscription) Dispose() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.disposed = true
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// handle is the single channel listener: origin filter, schema validation,
// per-kind dispatch
func (s *Subscription) handle(msg Message) {
	s.mu.Lock()
	disposed := s.disposed
	s.mu.Unlock()
	if disposed {
		return
	}

	// Disallowed origins are dropped without even a warning: the channel is
	// shared and foreign traffic on it is normal
	if !strings.Contains(msg.Origin, s.hostname) {
		return
	}

	result := ParseEvent(msg.Data, s.allowed)
	if result.IsError() {
		s.logger.Warn("dropping invalid player event", map[string]interface{}{
			"origin": msg.Origin,
			"reason": result.Error().Error(),
		})
		return
	}

	event := result.MustGet()

	s.mu.Lock()
	callback := s.callbacks[event.Kind]
	s.mu.Unlock()

	if callback != nil {
		callback(event)
	}
}

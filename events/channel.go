// Package events translates cross-document messages from the embedded
// player into typed per-kind callback invocations. The message channel is an
// injected collaborator: the package never touches ambient global state.
package events

// Message is one incoming cross-document message
type Message struct {
	// Origin is the sender's declared origin. It is checked by containment
	// against the facade hostname, not cryptographically.
	Origin string
	// Data is the raw JSON payload
	Data []byte
}

// Channel is the host page's message channel capability. Subscribe registers
// a listener and returns the function that removes exactly that listener.
type Channel interface {
	Subscribe(handler func(Message)) (unsubscribe func())
}

// MockChannel is a mock implementation of the Channel interface for testing
type MockChannel struct {
	SubscribeFunc func(handler func(Message)) func()
}

// Subscribe implements Channel.Subscribe
func (m *MockChannel) Subscribe(handler func(Message)) func() {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(handler)
	}
	return func() {}
}

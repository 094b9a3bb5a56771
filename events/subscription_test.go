package events

import (
	"io"
	"testing"

	"github.com/fermion-app/sdk/logging"
)

// fakeChannel is an in-process message channel for exercising subscriptions
type fakeChannel struct {
	handlers map[int]func(Message)
	nextID   int
	removed  int
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{handlers: make(map[int]func(Message))}
}

func (c *fakeChannel) Subscribe(handler func(Message)) func() {
	id := c.nextID
	c.nextID++
	c.handlers[id] = handler
	return func() {
		if _, ok := c.handlers[id]; ok {
			delete(c.handlers, id)
			c.removed++
		}
	}
}

func (c *fakeChannel) emit(msg Message) {
	for _, handler := range c.handlers {
		handler(msg)
	}
}

func testLogger() *logging.Logger {
	return logging.NewWithWriter(logging.ERROR, "events", io.Discard)
}

const goodOrigin = "https://acme.fermion.app"

func newTestSubscription(channel Channel) *Subscription {
	return NewSubscription(channel, "acme.fermion.app", RecordedKinds, testLogger())
}

func TestSubscriptionDispatch(t *testing.T) {
	channel := newFakeChannel()
	sub := newTestSubscription(channel)

	var got []Event
	sub.On(KindVideoPlay, func(e Event) { got = append(got, e) })

	channel.emit(Message{Origin: goodOrigin, Data: []byte(`{"type":"video:play","durationAtInSeconds":5}`)})

	if len(got) != 1 {
		t.Fatalf("callback fired %d times, want 1", len(got))
	}
	if got[0].DurationAtInSeconds != 5 {
		t.Errorf("DurationAtInSeconds = %v, want 5", got[0].DurationAtInSeconds)
	}
}

func TestSubscriptionOriginFiltering(t *testing.T) {
	channel := newFakeChannel()
	sub := newTestSubscription(channel)

	fired := false
	sub.On(KindVideoPlay, func(Event) { fired = true })

	// Well-formed payload, wrong origin: must never dispatch
	channel.emit(Message{Origin: "https://evil.example.com", Data: []byte(`{"type":"video:play","durationAtInSeconds":5}`)})

	if fired {
		t.Error("callback fired for disallowed origin")
	}
}

func TestSubscriptionDropsInvalidPayloads(t *testing.T) {
	channel := newFakeChannel()
	sub := newTestSubscription(channel)

	fired := false
	sub.On(KindVideoPlay, func(Event) { fired = true })

	for _, payload := range []string{
		`{"type":"video:play"}`,
		`{"type":"bogus"}`,
		`not json at all`,
	} {
		channel.emit(Message{Origin: goodOrigin, Data: []byte(payload)})
	}

	if fired {
		t.Error("callback fired for invalid payload")
	}
}

func TestSubscriptionLastRegistrationWins(t *testing.T) {
	channel := newFakeChannel()
	sub := newTestSubscription(channel)

	firstFired := false
	secondFired := false
	sub.On(KindVideoEnded, func(Event) { firstFired = true })
	sub.On(KindVideoEnded, func(Event) { secondFired = true })

	channel.emit(Message{Origin: goodOrigin, Data: []byte(`{"type":"video:ended"}`)})

	if firstFired {
		t.Error("overwritten callback still fired")
	}
	if !secondFired {
		t.Error("most recent callback did not fire")
	}
}

func TestSubscriptionDispose(t *testing.T) {
	channel := newFakeChannel()
	sub := newTestSubscription(channel)

	fired := false
	sub.On(KindVideoPlay, func(Event) { fired = true })

	sub.Dispose()

	channel.emit(Message{Origin: goodOrigin, Data: []byte(`{"type":"video:play","durationAtInSeconds":1}`)})
	if fired {
		t.Error("callback fired after Dispose")
	}

	if channel.removed != 1 {
		t.Errorf("listener removals = %d, want 1", channel.removed)
	}

	// Repeated disposal removes nothing further
	sub.Dispose()
	if channel.removed != 1 {
		t.Errorf("listener removals after double Dispose = %d, want 1", channel.removed)
	}
}

func TestIndependentSubscriptions(t *testing.T) {
	channel := newFakeChannel()
	subA := newTestSubscription(channel)
	subB := newTestSubscription(channel)

	var aFired, bFired bool
	subA.On(KindVideoPlay, func(Event) { aFired = true })
	subB.On(KindVideoPlay, func(Event) { bFired = true })

	subA.Dispose()
	channel.emit(Message{Origin: goodOrigin, Data: []byte(`{"type":"video:play","durationAtInSeconds":1}`)})

	if aFired {
		t.Error("disposed subscription fired")
	}
	if !bFired {
		t.Error("live subscription did not fire")
	}
}

func TestWebRTCLivestreamEndedAcceptedButUnhandled(t *testing.T) {
	channel := newFakeChannel()
	sub := NewSubscription(channel, "acme.fermion.app", LiveKinds, testLogger())

	// No callback slot registered for webrtc:livestream-ended; the message
	// must be accepted without effect
	channel.emit(Message{Origin: goodOrigin, Data: []byte(`{"type":"webrtc:livestream-ended"}`)})

	sub.Dispose()
}

package events

import (
	"context"
	"errors"
	"testing"
)

func TestPublishRunsAllHandlersDespiteFailure(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var calls []string
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("sms gateway down")
	})
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated})
	if err == nil {
		t.Fatal("expected joined handler error")
	}
	if len(calls) != 2 {
		t.Fatalf("calls = %v, want both handlers invoked", calls)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	if err := dispatcher.Publish(context.Background(), Event{Type: EventVoteCast}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func TestPublishOnlyMatchingType(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var ticketCalls, votingCalls int
	dispatcher.Subscribe(EventTicketStatusChanged, func(context.Context, Event) error {
		ticketCalls++
		return nil
	})
	dispatcher.Subscribe(EventVotingOpened, func(context.Context, Event) error {
		votingCalls++
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketStatusChanged}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if ticketCalls != 1 || votingCalls != 0 {
		t.Fatalf("calls = (%d, %d), want (1, 0)", ticketCalls, votingCalls)
	}
}

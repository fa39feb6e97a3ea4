package events

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestDispatcherDeliversToAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	boom := errors.New("boom")

	d.Subscribe(EventUserRegistered, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.Actor.ID)
		return boom
	})
	d.Subscribe(EventUserRegistered, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.Actor.ID)
		return nil
	})
	d.Subscribe(EventUserLoggedIn, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), New(EventUserRegistered, Actor{ID: "u1"}, nil))
	if !errors.Is(err, boom) {
		t.Fatalf("expected handler error to be returned, got %v", err)
	}
	if len(calls) != 2 || calls[0] != "first:u1" || calls[1] != "second:u1" {
		t.Fatalf("unexpected calls %v", calls)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	if err := d.Publish(context.Background(), New(EventLoginFailed, Actor{}, nil)); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestPublishSurvivesPanickingHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	delivered := false
	d.Subscribe(EventLoginFailed, func(context.Context, Event) error {
		panic("audit sink closed")
	})
	d.Subscribe(EventLoginFailed, func(context.Context, Event) error {
		delivered = true
		return nil
	})

	err := d.Publish(context.Background(), New(EventLoginFailed, Actor{}, nil))
	if err == nil || !strings.Contains(err.Error(), "audit sink closed") {
		t.Fatalf("expected panic reported as error, got %v", err)
	}
	if !delivered {
		t.Fatal("handler after the panicking one was not called")
	}
}

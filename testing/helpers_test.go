package testing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zoobzio/tether"
)

func TestFakeTransport_Scripted(t *testing.T) {
	f := NewFakeTransport()
	f.Respond("GET", "/api/users/1", map[string]any{"id": 1})

	body, err := f.Send(context.Background(), &tether.Request{Method: tether.MethodGet, URL: "/api/users/1"})
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if body["id"] != 1 {
		t.Errorf("body = %v, want id 1", body)
	}

	body["id"] = 2
	again, _ := f.Send(context.Background(), &tether.Request{Method: tether.MethodGet, URL: "/api/users/1"})
	if again["id"] != 1 {
		t.Error("scripted body should not be shared between calls")
	}

	if f.Calls() != 2 {
		t.Errorf("Calls() = %d, want 2", f.Calls())
	}
}

func TestFakeTransport_Unscripted(t *testing.T) {
	f := NewFakeTransport()
	body, err := f.Send(context.Background(), &tether.Request{Method: tether.MethodPost, URL: "/x"})
	if err != nil || body != nil {
		t.Errorf("Send() = %v, %v; want nil, nil", body, err)
	}

	last, ok := f.Last()
	if !ok || last.URL != "/x" {
		t.Errorf("Last() = %+v, %v", last, ok)
	}

	f.Reset()
	if f.Calls() != 0 {
		t.Error("Reset() should drop recorded requests")
	}
}

func TestFakeTransport_Fail(t *testing.T) {
	boom := errors.New("boom")
	f := NewFakeTransport()
	f.Fail("get", "/api/roles/1", boom)

	_, err := f.Send(context.Background(), &tether.Request{Method: tether.MethodGet, URL: "/api/roles/1"})
	if !errors.Is(err, boom) {
		t.Errorf("Send() error = %v, want %v", err, boom)
	}
}

func TestFakeTransport_Hold(t *testing.T) {
	f := NewFakeTransport()
	gate := make(chan struct{})
	f.Hold(gate)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.Send(context.Background(), &tether.Request{Method: tether.MethodGet, URL: "/held"})
	}()

	select {
	case <-f.Entered():
	case <-time.After(time.Second):
		t.Fatal("Send never entered")
	}

	select {
	case <-done:
		t.Fatal("Send returned before the gate opened")
	default:
	}

	close(gate)
	<-done
}

func TestFakeTransport_HoldCancelled(t *testing.T) {
	f := NewFakeTransport()
	f.Hold(make(chan struct{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Send(ctx, &tether.Request{Method: tether.MethodGet, URL: "/held"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Send() error = %v, want context.Canceled", err)
	}
}

func TestFixtures_Validate(t *testing.T) {
	if err := tether.Validate[User](); err != nil {
		t.Errorf("Validate[User]() error: %v", err)
	}
	if err := tether.Validate[Role](); err != nil {
		t.Errorf("Validate[Role]() error: %v", err)
	}
	if err := tether.Validate[Session](); err != nil {
		t.Errorf("Validate[Session]() error: %v", err)
	}
}

// Package testing provides test utilities for tether.
package testing

import (
	"context"
	"maps"
	"strings"
	"sync"

	"github.com/zoobzio/tether"
)

// Role is a record type with no associations.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Endpoints implements tether.Resource.
func (Role) Endpoints() tether.Endpoints {
	return tether.Endpoints{
		tether.BaseKey:  "/api",
		tether.OpCreate: "/roles",
		tether.OpUpdate: "/roles/:id",
		tether.OpFind:   "/roles/:id",
	}
}

// User is a record type with a file attribute and a Role association.
type User struct {
	ID     int64               `json:"id"`
	Name   string              `json:"name"`
	Email  string              `json:"email"`
	Avatar *tether.File        `json:"avatar"`
	RoleID int64               `json:"role_id"`
	Role   tether.HasOne[Role] `json:"role" tether:"local=role_id"`
}

// Endpoints implements tether.Resource.
func (User) Endpoints() tether.Endpoints {
	return tether.Endpoints{
		tether.BaseKey:  "/api",
		tether.OpCreate: "/users",
		tether.OpUpdate: "/users/:id",
		tether.OpFind:   "/users/:id",
	}
}

// Session is a record type that fetches through a first endpoint with the
// id in the query string.
type Session struct {
	Token  string `json:"token" tether:"key"`
	UserID int64  `json:"user_id"`
}

// Endpoints implements tether.Resource.
func (Session) Endpoints() tether.Endpoints {
	return tether.Endpoints{
		tether.OpCreate: "/sessions",
		tether.OpUpdate: "/sessions/:token",
		tether.OpFirst:  "/sessions/current",
	}
}

// Response is a scripted transport reply.
type Response struct {
	Body map[string]any
	Err  error
}

// FakeTransport is an in-memory tether.Transport. It records every request
// and answers from scripted responses keyed by method and URL. Unscripted
// requests succeed with an empty body.
type FakeTransport struct {
	mu        sync.Mutex
	requests  []tether.Request
	responses map[string]Response
	gate      <-chan struct{}
	entered   chan struct{}
}

// NewFakeTransport creates an empty FakeTransport.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{
		responses: make(map[string]Response),
		entered:   make(chan struct{}, 64),
	}
}

// Respond scripts a successful reply.
func (f *FakeTransport) Respond(method, url string, body map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[responseKey(method, url)] = Response{Body: body}
}

// Fail scripts a failed reply.
func (f *FakeTransport) Fail(method, url string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[responseKey(method, url)] = Response{Err: err}
}

// Hold makes every Send block until gate is closed or receives.
func (f *FakeTransport) Hold(gate <-chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = gate
}

// Entered receives once for every Send that has been recorded.
func (f *FakeTransport) Entered() <-chan struct{} {
	return f.entered
}

// Send implements tether.Transport.
func (f *FakeTransport) Send(ctx context.Context, req *tether.Request) (map[string]any, error) {
	f.mu.Lock()
	f.requests = append(f.requests, *req)
	resp, ok := f.responses[responseKey(req.Method, req.URL)]
	gate := f.gate
	f.mu.Unlock()

	select {
	case f.entered <- struct{}{}:
	default:
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if !ok {
		return nil, nil
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return maps.Clone(resp.Body), nil
}

// Requests returns a copy of the recorded requests.
func (f *FakeTransport) Requests() []tether.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]tether.Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// Calls returns the number of recorded requests.
func (f *FakeTransport) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// Last returns the most recent request.
func (f *FakeTransport) Last() (tether.Request, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return tether.Request{}, false
	}
	return f.requests[len(f.requests)-1], true
}

// Reset drops recorded requests and scripted responses.
func (f *FakeTransport) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = nil
	f.responses = make(map[string]Response)
}

func responseKey(method, url string) string {
	return strings.ToLower(method) + " " + url
}

package tether

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"
)

// Kind identifies the shape of an association.
type Kind int

const (
	// KindToOne resolves to a single record through a local key.
	KindToOne Kind = iota + 1

	// KindToMany is reserved. Declaring one fails schema validation.
	KindToMany
)

func (k Kind) String() string {
	switch k {
	case KindToOne:
		return "to-one"
	case KindToMany:
		return "to-many"
	}
	return "unknown"
}

// State is the resolution state of an association on one record.
type State int

const (
	Unresolved State = iota
	Resolving
	Resolved
)

func (s State) String() string {
	switch s {
	case Resolving:
		return "resolving"
	case Resolved:
		return "resolved"
	}
	return "unresolved"
}

// HasOne declares a one-to-one association to T. The owning struct tags it
// with the local key holding T's identifier:
//
//	Role tether.HasOne[Role] `json:"role" tether:"local=role_id"`
//
// The zero value is unbound; Record binds it when the owner is constructed.
// Copies returned by Record.Data share the owner's cache.
type HasOne[T Resource] struct {
	s *slot
}

// Kind returns KindToOne.
func (HasOne[T]) Kind() Kind { return KindToOne }

// Target returns the associated record type.
func (HasOne[T]) Target() reflect.Type { return reflect.TypeFor[T]() }

func (h *HasOne[T]) bind(s *slot) { h.s = s }

// State returns the current resolution state.
func (h HasOne[T]) State() State {
	if h.s == nil {
		return Unresolved
	}
	return h.s.current()
}

// Get returns the associated record, resolving it on first use. A truthy
// local key is looked up with Find; a falsy one yields an empty record
// without a transport call. Later calls return the cached record.
func (h HasOne[T]) Get(ctx context.Context) (*Record[T], error) {
	if h.s == nil {
		return nil, ErrUnboundRelation
	}
	v, err := h.s.resolve(ctx, func(ctx context.Context, key any, t Transport) (any, error) {
		if !truthy(key) {
			return New[T](t, nil)
		}
		return Find[T](ctx, t, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Record[T]), nil
}

// resolver fetches the associated record for key.
type resolver func(ctx context.Context, key any, t Transport) (any, error)

// slot is the relation cache entry for one association on one record.
// Resolution is single-flight: concurrent readers share one call.
type slot struct {
	owner     string
	name      string
	key       func() any
	transport Transport

	mu    sync.Mutex
	state State
	value any
	call  *call
}

// call is an in-flight resolution.
type call struct {
	done  chan struct{}
	value any
	err   error
}

func (s *slot) current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// resolve returns the cached value or joins the in-flight call, starting one
// if none exists. Each caller stops waiting when its own ctx ends; the call
// itself runs detached from any one caller's cancellation.
func (s *slot) resolve(ctx context.Context, fetch resolver) (any, error) {
	s.mu.Lock()
	if s.state == Resolved {
		v := s.value
		s.mu.Unlock()
		return v, nil
	}
	c := s.call
	if c == nil {
		c = &call{done: make(chan struct{})}
		s.call = c
		s.state = Resolving
		go s.run(context.WithoutCancel(ctx), c, fetch)
	}
	s.mu.Unlock()

	select {
	case <-c.done:
		return c.value, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *slot) run(ctx context.Context, c *call, fetch resolver) {
	start := time.Now()
	emitResolveStart(ctx, s.owner, s.name)

	defer func() {
		if r := recover(); r != nil {
			c.value, c.err = nil, fmt.Errorf("resolve %s.%s: panic: %v", s.owner, s.name, r)
		}
		emitResolveComplete(ctx, s.owner, s.name, time.Since(start), c.err)

		s.mu.Lock()
		// An invalidate during the fetch detaches the call; its result is not cached
		if s.call == c {
			s.call = nil
			if c.err != nil {
				s.state = Unresolved
			} else {
				s.state = Resolved
				s.value = c.value
			}
		}
		s.mu.Unlock()
		close(c.done)
	}()

	c.value, c.err = fetch(ctx, s.key(), s.transport)
}

func (s *slot) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Unresolved
	s.value = nil
	s.call = nil
}

package tether

import (
	"context"
	"net/url"
	"reflect"
	"sync"
	"time"
)

// Record is one remote resource bound to the struct type T.
//
// A Record owns its field values and its relation cache; nothing is shared
// between records. Records are safe for concurrent use.
type Record[T Resource] struct {
	schema    *schema
	transport Transport

	mu         sync.RWMutex
	data       T
	extras     map[string]any
	extraOrder []string

	slots []*slot // parallel to schema.relations
}

// New creates a record of type T filled from input. The transport may be
// nil for records that are never saved or fetched.
func New[T Resource](t Transport, input map[string]any) (*Record[T], error) {
	s, err := schemaFor[T]()
	if err != nil {
		return nil, err
	}

	r := &Record[T]{
		schema:    s,
		transport: t,
		extras:    make(map[string]any),
		slots:     make([]*slot, len(s.relations)),
	}

	for i, rel := range s.relations {
		local := s.fields[rel.local].name
		r.slots[i] = &slot{
			owner:     s.typeName,
			name:      rel.name,
			transport: t,
			key: func() any {
				v, _ := r.Get(local)
				return v
			},
		}
	}
	r.bind()

	if err := r.Fill(input); err != nil {
		return nil, err
	}
	return r, nil
}

// bind attaches each association field of r.data to its slot.
// Callers must hold r.mu for writing or own r exclusively.
func (r *Record[T]) bind() {
	rv := reflect.ValueOf(&r.data).Elem()
	for i, rel := range r.schema.relations {
		rv.FieldByIndex(rel.index).Addr().Interface().(association).bind(r.slots[i])
	}
}

// State returns the resolution state of the named association.
func (r *Record[T]) State(relation string) (State, error) {
	i, ok := r.schema.relByName[relation]
	if !ok {
		return Unresolved, newFieldError(ErrUnknownField, r.schema.typeName, relation, nil)
	}
	return r.slots[i].current(), nil
}

// Invalidate drops the cached value of the named association so the next
// read resolves it again. It is the only way a resolved entry is discarded.
func (r *Record[T]) Invalidate(relation string) error {
	i, ok := r.schema.relByName[relation]
	if !ok {
		return newFieldError(ErrUnknownField, r.schema.typeName, relation, nil)
	}
	r.slots[i].invalidate()
	emitInvalidated(context.Background(), r.schema.typeName, relation)
	return nil
}

// Persisted reports whether the identifying key holds a positive value.
func (r *Record[T]) Persisted() bool {
	return positive(r.Key())
}

// Save updates a persisted record and creates any other.
func (r *Record[T]) Save(ctx context.Context) error {
	if r.Persisted() {
		return r.Update(ctx)
	}
	return r.Create(ctx)
}

// Create posts the record to the create endpoint.
func (r *Record[T]) Create(ctx context.Context) error {
	return r.write(ctx, OpCreate, MethodPost)
}

// Update posts the record to the update endpoint with a put override.
func (r *Record[T]) Update(ctx context.Context) error {
	return r.write(ctx, OpUpdate, MethodPut)
}

// write sends the record and re-fills it from a non-empty response.
func (r *Record[T]) write(ctx context.Context, operation, method string) (err error) {
	defer func() {
		emitSaveComplete(ctx, r.schema.typeName, operation, err)
	}()

	if r.transport == nil {
		return ErrNoTransport
	}

	r.mu.RLock()
	target, err := BuildURL(operation, r.fieldMap(), r.schema.endpoints)
	payload := BuildPayload(r.attributes(), method)
	r.mu.RUnlock()
	if err != nil {
		return err
	}

	body, err := send(ctx, r.transport, r.schema.typeName, operation, &Request{
		Method:  MethodPost,
		URL:     target,
		Payload: payload,
	})
	if err != nil {
		return err
	}
	if body == nil {
		return nil
	}
	return r.Fill(body)
}

// First fetches the record identified by id. The first endpoint is used
// when declared, otherwise find. The id fills the key placeholder of the
// template; when the template has none it is sent as a query parameter.
// On failure no record is returned.
func First[T Resource](ctx context.Context, t Transport, id any) (*Record[T], error) {
	if t == nil {
		return nil, ErrNoTransport
	}

	r, err := New[T](t, nil)
	if err != nil {
		return nil, err
	}

	operation := OpFind
	if _, ok := r.schema.endpoints[OpFirst]; ok {
		operation = OpFirst
	}

	key := r.schema.keyName()
	r.mu.RLock()
	fields := r.fieldMap()
	r.mu.RUnlock()
	fields[key] = id

	target, err := BuildURL(operation, fields, r.schema.endpoints)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	if !usesParam(r.schema.endpoints, operation, key) {
		query.Set(key, formatValue(id))
	}

	body, err := send(ctx, t, r.schema.typeName, operation, &Request{
		Method: MethodGet,
		URL:    target,
		Query:  query,
	})
	if err != nil {
		return nil, err
	}

	if err := r.Fill(body); err != nil {
		return nil, err
	}
	return r, nil
}

// Find fetches the record identified by id. It is equivalent to First.
func Find[T Resource](ctx context.Context, t Transport, id any) (*Record[T], error) {
	return First[T](ctx, t, id)
}

// send issues req through t, emitting request signals around the call.
func send(ctx context.Context, t Transport, typeName, operation string, req *Request) (map[string]any, error) {
	start := time.Now()
	emitRequestStart(ctx, typeName, operation, req)
	body, err := t.Send(ctx, req)
	emitRequestComplete(ctx, typeName, operation, req, time.Since(start), err)
	return body, err
}

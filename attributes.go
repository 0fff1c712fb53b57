package tether

import (
	"context"
	"errors"
	"maps"
	"reflect"
	"slices"
)

// Fill binds input to the record. Every fillable field takes its value from
// input or is reset to its zero value when absent. Keys matching no field
// become read-only extras; extras already present keep their first value.
// Keys naming an association are ignored.
//
// Values that cannot be stored in their field leave it zeroed and are
// reported together as FieldErrors wrapping ErrInvalidValue.
func (r *Record[T]) Fill(input map[string]any) error {
	r.mu.Lock()
	err := r.fill(input)
	fields, extras := len(r.schema.fields), len(r.extras)
	r.mu.Unlock()

	emitFillComplete(context.Background(), r.schema.typeName, fields, extras, err)
	return err
}

func (r *Record[T]) fill(input map[string]any) error {
	rv := reflect.ValueOf(&r.data).Elem()

	var errs []error
	for _, f := range r.schema.fields {
		dst := rv.FieldByIndex(f.index)
		v, ok := input[f.name]
		if !ok {
			dst.SetZero()
			continue
		}
		if err := assign(dst, v); err != nil {
			dst.SetZero()
			errs = append(errs, newFieldError(ErrInvalidValue, r.schema.typeName, f.name, err))
		}
	}

	for _, k := range slices.Sorted(maps.Keys(input)) {
		if _, ok := r.schema.byName[k]; ok {
			continue
		}
		if _, ok := r.schema.relByName[k]; ok {
			continue
		}
		if _, ok := r.extras[k]; ok {
			continue
		}
		r.extras[k] = input[k]
		r.extraOrder = append(r.extraOrder, k)
	}

	return errors.Join(errs...)
}

// Get returns the value of a fillable or extra field. Unsupplied fillable
// fields read as their zero value.
func (r *Record[T]) Get(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.get(name)
}

func (r *Record[T]) get(name string) (any, bool) {
	if i, ok := r.schema.byName[name]; ok {
		return reflect.ValueOf(&r.data).Elem().FieldByIndex(r.schema.fields[i].index).Interface(), true
	}
	v, ok := r.extras[name]
	return v, ok
}

// Set assigns a fillable field. Extras fail with ErrReadOnlyField,
// associations with ErrReadOnlyRelation and anything else with
// ErrUnknownField. A nil value resets the field.
func (r *Record[T]) Set(name string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i, ok := r.schema.byName[name]; ok {
		dst := reflect.ValueOf(&r.data).Elem().FieldByIndex(r.schema.fields[i].index)
		if err := assign(dst, value); err != nil {
			return newFieldError(ErrInvalidValue, r.schema.typeName, name, err)
		}
		return nil
	}
	if _, ok := r.schema.relByName[name]; ok {
		return newFieldError(ErrReadOnlyRelation, r.schema.typeName, name, nil)
	}
	if _, ok := r.extras[name]; ok {
		return newFieldError(ErrReadOnlyField, r.schema.typeName, name, nil)
	}
	return newFieldError(ErrUnknownField, r.schema.typeName, name, nil)
}

// Data returns a copy of the typed fields. Association fields in the copy
// share this record's relation cache.
func (r *Record[T]) Data() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data
}

// Edit mutates the typed fields in place. Association fields are re-bound
// afterwards, so assigning to them has no effect. fn must not call back
// into the record.
func (r *Record[T]) Edit(fn func(*T)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.data)
	r.bind()
}

// Attributes returns every field: fillable fields in declaration order
// followed by extras in the order they were first seen.
func (r *Record[T]) Attributes() []Field {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.attributes()
}

func (r *Record[T]) attributes() []Field {
	rv := reflect.ValueOf(&r.data).Elem()
	out := make([]Field, 0, len(r.schema.fields)+len(r.extraOrder))
	for _, f := range r.schema.fields {
		out = append(out, Field{Name: f.name, Value: rv.FieldByIndex(f.index).Interface()})
	}
	for _, k := range r.extraOrder {
		out = append(out, Field{Name: k, Value: r.extras[k]})
	}
	return out
}

// fieldMap returns the attributes keyed by name, for URL resolution.
func (r *Record[T]) fieldMap() map[string]any {
	attrs := r.attributes()
	m := make(map[string]any, len(attrs))
	for _, a := range attrs {
		m[a.Name] = a.Value
	}
	return m
}

// Extras returns a copy of the read-only extra fields.
func (r *Record[T]) Extras() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.extras)
}

// Fillable reports whether name is a fillable field of the record type.
func (r *Record[T]) Fillable(name string) bool {
	_, ok := r.schema.byName[name]
	return ok
}

// Key returns the identifying key value, or nil when the type has none.
func (r *Record[T]) Key() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.schema.key < 0 {
		return nil
	}
	v, _ := r.get(r.schema.fields[r.schema.key].name)
	return v
}

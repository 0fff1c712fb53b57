// Package tether binds Go structs to remote REST resources.
//
// A record type is a plain struct that implements Resource. Its exported fields
// are the record's fillable attributes, its HasOne fields are lazily resolved
// associations, and its Endpoints method maps operations to URL templates.
// Tether scans each record type once and caches the resulting schema, so
// binding input, building URLs and building payloads never re-inspects the type.
//
// # Declaring a Record Type
//
//	type User struct {
//	    ID     int64             `json:"id" tether:"key"`
//	    Name   string            `json:"name"`
//	    Avatar *tether.File      `json:"avatar"`
//	    RoleID int64             `json:"role_id"`
//	    Role   tether.HasOne[Role] `json:"role" tether:"local=role_id"`
//	}
//
//	func (User) Endpoints() tether.Endpoints {
//	    return tether.Endpoints{
//	        tether.BaseKey: "/api",
//	        tether.OpCreate: "/users",
//	        tether.OpUpdate: "/users/:id",
//	        tether.OpFind:   "/users/:id",
//	    }
//	}
//
// # Tag Syntax
//
//	json:"name"          - wire name of a field (json:"-" excludes it)
//	tether:"key"         - identifying key; defaults to the field named "id"
//	tether:"local=name"  - local key field of a HasOne association
//
// # Attributes
//
// Fill binds plain key/value input. Every fillable field is set from the
// input or reset to its zero value when absent. Input keys that match no
// fillable field are kept as read-only extras: Get returns them, Set rejects
// them with ErrReadOnlyField, and they travel with every payload.
//
// # Associations
//
// A HasOne field resolves on first Get: a truthy local key triggers Find on
// the target type, a falsy one yields a fresh empty record without a network
// call. The result is cached on the owning record until Invalidate is called.
// Concurrent first reads share a single resolution.
//
// # Persistence
//
// Save dispatches to Update when the identifying key is positive and to
// Create otherwise. Create posts the attributes; Update posts them with a
// "_method" override of "put" because transports only issue GET and POST.
// When any attribute holds a File the payload is a multipart Form, otherwise
// a Map encoded by the transport's codec.
//
//	user, err := tether.Find[User](ctx, transport, 3)
//	role, err := user.Data().Role.Get(ctx)
//	_ = user.Set("name", "Ann")
//	err = user.Save(ctx)
//
// # Transports and Codecs
//
// The rest package provides an HTTP Transport. Codec adapters live in
// submodules:
//
//   - json - JSON encoding (application/json)
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
//   - bson - BSON encoding (application/bson)
package tether

import (
	"context"
	"net/url"
)

// Resource is implemented by every record type.
type Resource interface {
	// Endpoints returns the URL templates for the type's operations.
	Endpoints() Endpoints
}

// Endpoints maps operation names to URL templates containing :field
// placeholders. The BaseKey entry, if present, prefixes every template.
type Endpoints map[string]string

// Endpoint keys understood by Record.
const (
	BaseKey  = "_base"
	OpCreate = "create"
	OpUpdate = "update"
	OpFind   = "find"
	OpFirst  = "first"
)

// Wire-level and overridden HTTP methods.
const (
	MethodGet  = "get"
	MethodPost = "post"
	MethodPut  = "put"

	// MethodOverrideKey carries the intended method in POST payloads.
	MethodOverrideKey = "_method"
)

// Codec provides content-type aware marshaling.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

// Request is a single call handed to a Transport.
type Request struct {
	// Method is MethodGet or MethodPost.
	Method string

	// URL is the resolved endpoint, relative to the transport's base.
	URL string

	// Query carries filter parameters for GET requests.
	Query url.Values

	// Payload is the POST body, nil for GET.
	Payload Payload
}

// Transport issues requests on behalf of records.
//
// Send returns the decoded response body. A nil map means the response had
// no body. Failures are reported as *TransportError.
type Transport interface {
	Send(ctx context.Context, req *Request) (map[string]any, error)
}

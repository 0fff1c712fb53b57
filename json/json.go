// Package json provides a JSON codec implementation.
package json

import (
	"bytes"
	"encoding/json"

	"github.com/zoobzio/tether"
)

// jsonCodec implements tether.Codec for JSON.
type jsonCodec struct{}

// New returns a JSON codec.
func New() tether.Codec {
	return &jsonCodec{}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON.
func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v. Numbers decode as json.Number so
// integer keys beyond 2^53 survive until a record binds them.
func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

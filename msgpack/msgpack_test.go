package msgpack

import (
	"testing"

	"github.com/zoobzio/tether"
)

func TestContentType(t *testing.T) {
	c := New()
	if c.ContentType() != "application/msgpack" {
		t.Errorf("ContentType() = %q, want %q", c.ContentType(), "application/msgpack")
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	c := New()

	payload := tether.Map{"id": int64(5), "name": "Ann"}

	data, err := c.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	// MessagePack is binary, should not be valid UTF-8 JSON
	if data[0] == '{' {
		t.Error("MessagePack output should be binary, not JSON")
	}

	var body map[string]any
	if err := c.Unmarshal(data, &body); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if body["name"] != "Ann" {
		t.Errorf("name = %#v, want Ann", body["name"])
	}
	if _, ok := body["id"]; !ok {
		t.Error("id missing after round trip")
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	c := New()

	var v map[string]any
	err := c.Unmarshal([]byte("not msgpack"), &v)
	if err == nil {
		t.Error("Unmarshal(invalid) should return error")
	}
}

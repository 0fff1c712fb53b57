package bson

import (
	"testing"

	"github.com/zoobzio/tether"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestContentType(t *testing.T) {
	c := New()
	if c.ContentType() != "application/bson" {
		t.Errorf("ContentType() = %q, want %q", c.ContentType(), "application/bson")
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	c := New()

	payload := tether.Map{
		"id":   int64(5),
		"name": "Ann",
		"meta": map[string]any{"tier": "gold"},
	}

	data, err := c.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var body map[string]any
	if err := c.Unmarshal(data, &body); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if body["id"] != int64(5) {
		t.Errorf("id = %#v, want int64(5)", body["id"])
	}
	if body["name"] != "Ann" {
		t.Errorf("name = %#v, want Ann", body["name"])
	}
}

func TestUnmarshal_EmbeddedDocumentAsMap(t *testing.T) {
	c := New()

	data, err := c.Marshal(map[string]any{"meta": map[string]any{"tier": "gold"}})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var body map[string]any
	if err := c.Unmarshal(data, &body); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	meta, ok := body["meta"].(primitive.M)
	if !ok {
		t.Fatalf("meta = %T, want primitive.M", body["meta"])
	}
	if meta["tier"] != "gold" {
		t.Errorf("meta.tier = %#v, want gold", meta["tier"])
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	c := New()

	var v map[string]any
	err := c.Unmarshal([]byte("invalid bson"), &v)
	if err == nil {
		t.Error("Unmarshal(invalid) should return error")
	}
}

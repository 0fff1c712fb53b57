// Package bson provides a BSON codec implementation.
package bson

import (
	"github.com/zoobzio/tether"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
)

// bsonCodec implements tether.Codec for BSON.
type bsonCodec struct{}

// New returns a BSON codec.
func New() tether.Codec {
	return &bsonCodec{}
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

// Marshal encodes v as BSON. v must be a document (struct or map).
func (c *bsonCodec) Marshal(v any) ([]byte, error) {
	return bson.Marshal(v)
}

// Unmarshal decodes BSON data into v. Embedded documents decode as maps
// rather than ordered documents so records can bind them to structs.
func (c *bsonCodec) Unmarshal(data []byte, v any) error {
	dec, err := bson.NewDecoder(bsonrw.NewBSONDocumentReader(data))
	if err != nil {
		return err
	}
	dec.DefaultDocumentM()
	return dec.Decode(v)
}

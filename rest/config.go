package rest

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/zoobzio/tether"
	"github.com/zoobzio/tether/bson"
	"github.com/zoobzio/tether/json"
	"github.com/zoobzio/tether/msgpack"
	"github.com/zoobzio/tether/yaml"
	yamlv3 "gopkg.in/yaml.v3"
)

// ErrUnknownCodec indicates a codec name with no registered implementation.
var ErrUnknownCodec = errors.New("unknown codec")

// Config describes a Transport in a YAML file:
//
//	baseURL: https://example.com
//	codec: json
//	timeout: 5s
//	headers:
//	  Authorization: Bearer token
//	cache:
//	  ttl: 1m
//	  cleanup: 5m
type Config struct {
	BaseURL string            `yaml:"baseURL"`
	Codec   string            `yaml:"codec"` // json, yaml, msgpack, bson
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
	Cache   CacheConfig       `yaml:"cache"`
}

// CacheConfig enables the GET cache when TTL is positive.
type CacheConfig struct {
	TTL     time.Duration `yaml:"ttl"`
	Cleanup time.Duration `yaml:"cleanup"`
}

// LoadConfig reads a Config from a YAML file.
func LoadConfig(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	if err := yamlv3.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return config, nil
}

// FromConfig builds a Transport from cfg.
func FromConfig(cfg Config) (*Transport, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("baseURL is required")
	}

	codec, err := CodecFor(cfg.Codec)
	if err != nil {
		return nil, err
	}

	var opts []Option
	if cfg.Timeout > 0 {
		opts = append(opts, WithTimeout(cfg.Timeout))
	}
	for k, v := range cfg.Headers {
		opts = append(opts, WithHeader(k, v))
	}
	if cfg.Cache.TTL > 0 {
		cleanup := cfg.Cache.Cleanup
		if cleanup <= 0 {
			cleanup = 2 * cfg.Cache.TTL
		}
		opts = append(opts, WithCache(cfg.Cache.TTL, cleanup))
	}

	return New(cfg.BaseURL, codec, opts...), nil
}

// CodecFor returns the codec registered under name. An empty name selects JSON.
func CodecFor(name string) (tether.Codec, error) {
	switch name {
	case "", "json":
		return json.New(), nil
	case "yaml":
		return yaml.New(), nil
	case "msgpack":
		return msgpack.New(), nil
	case "bson":
		return bson.New(), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownCodec, name)
}

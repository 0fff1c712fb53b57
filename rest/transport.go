// Package rest provides an HTTP implementation of tether.Transport.
//
// Requests travel as GET or POST only. GET requests carry filter parameters
// in the query string and may be served from an in-memory cache; POST
// requests carry either a codec-encoded map or a multipart form and flush
// the cache.
//
//	t := rest.New("https://example.com", json.New(), rest.WithCache(time.Minute, 5*time.Minute))
//	user, err := tether.Find[User](ctx, t, 3)
package rest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/zoobzio/tether"
)

const defaultTimeout = 10 * time.Second

// ErrUnsupportedMethod indicates a request method other than get or post.
var ErrUnsupportedMethod = errors.New("unsupported method")

// Transport sends record requests over HTTP.
type Transport struct {
	base    string
	codec   tether.Codec
	client  *http.Client
	headers http.Header
	cache   *cache.Cache
}

// Option configures a Transport.
type Option func(*Transport)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) {
		t.client = c
	}
}

// WithTimeout sets the client timeout.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) {
		t.client.Timeout = d
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(t *Transport) {
		t.headers.Add(key, value)
	}
}

// WithCache serves repeated GET requests from memory for ttl.
func WithCache(ttl, cleanup time.Duration) Option {
	return func(t *Transport) {
		t.cache = cache.New(ttl, cleanup)
	}
}

// New creates a Transport rooted at base that encodes map payloads and
// decodes responses with codec.
func New(base string, codec tether.Codec, opts ...Option) *Transport {
	t := &Transport{
		base:    strings.TrimRight(base, "/"),
		codec:   codec,
		client:  &http.Client{Timeout: defaultTimeout},
		headers: make(http.Header),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send implements tether.Transport.
func (t *Transport) Send(ctx context.Context, req *tether.Request) (map[string]any, error) {
	target, err := t.resolve(req.URL, req.Query)
	if err != nil {
		return nil, &tether.TransportError{Method: req.Method, URL: req.URL, Cause: err}
	}

	switch strings.ToLower(req.Method) {
	case tether.MethodGet:
		return t.get(ctx, target)
	case tether.MethodPost:
		return t.post(ctx, target, req.Payload)
	}
	return nil, &tether.TransportError{Method: req.Method, URL: target, Cause: ErrUnsupportedMethod}
}

func (t *Transport) get(ctx context.Context, target string) (map[string]any, error) {
	if t.cache != nil {
		if x, found := t.cache.Get(target); found {
			emitCacheHit(ctx, target)
			return maps.Clone(x.(map[string]any)), nil
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &tether.TransportError{Method: tether.MethodGet, URL: target, Cause: err}
	}

	body, err := t.do(httpReq)
	if err != nil {
		return nil, err
	}

	if t.cache != nil && body != nil {
		t.cache.Set(target, maps.Clone(body), cache.DefaultExpiration)
	}
	return body, nil
}

func (t *Transport) post(ctx context.Context, target string, payload tether.Payload) (map[string]any, error) {
	content, contentType, err := t.encode(payload)
	if err != nil {
		return nil, &tether.TransportError{Method: tether.MethodPost, URL: target, Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(content))
	if err != nil {
		return nil, &tether.TransportError{Method: tether.MethodPost, URL: target, Cause: err}
	}
	httpReq.Header.Set("Content-Type", contentType)

	// Writes invalidate every cached read
	if t.cache != nil {
		t.cache.Flush()
	}

	return t.do(httpReq)
}

// do sends httpReq and decodes a 2xx body. Anything else becomes a
// TransportError carrying the response.
func (t *Transport) do(httpReq *http.Request) (map[string]any, error) {
	method := strings.ToLower(httpReq.Method)
	target := httpReq.URL.String()

	for k, vs := range t.headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", t.codec.ContentType())

	start := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		emitResponse(httpReq.Context(), method, target, 0, time.Since(start), err)
		return nil, &tether.TransportError{Method: method, URL: target, Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		emitResponse(httpReq.Context(), method, target, resp.StatusCode, time.Since(start), err)
		return nil, &tether.TransportError{Method: method, URL: target, Status: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		terr := &tether.TransportError{Method: method, URL: target, Status: resp.StatusCode, Body: data}
		emitResponse(httpReq.Context(), method, target, resp.StatusCode, time.Since(start), terr)
		return nil, terr
	}
	emitResponse(httpReq.Context(), method, target, resp.StatusCode, time.Since(start), nil)

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var body map[string]any
	if err := t.codec.Unmarshal(data, &body); err != nil {
		return nil, &tether.TransportError{
			Method: method,
			URL:    target,
			Status: resp.StatusCode,
			Body:   data,
			Cause:  tether.NewCodecError(tether.ErrUnmarshal, err),
		}
	}
	return body, nil
}

// encode renders a payload and returns its content type.
func (t *Transport) encode(payload tether.Payload) ([]byte, string, error) {
	switch p := payload.(type) {
	case nil:
		return nil, t.codec.ContentType(), nil
	case tether.Map:
		data, err := t.codec.Marshal(map[string]any(p))
		if err != nil {
			return nil, "", tether.NewCodecError(tether.ErrMarshal, err)
		}
		return data, t.codec.ContentType(), nil
	case *tether.Form:
		return encodeForm(p)
	}
	return nil, "", fmt.Errorf("unsupported payload %T", payload)
}

// resolve joins path onto the base URL and merges query. Absolute paths
// bypass the base.
func (t *Transport) resolve(path string, query url.Values) (string, error) {
	target := path
	if !strings.Contains(path, "://") {
		if path != "" && !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		target = t.base + path
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

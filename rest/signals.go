package rest

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/tether"
)

// Signals for transport events.
var (
	SignalCacheHit = capitan.NewSignal("rest.cache.hit", "GET served from cache")
	SignalResponse = capitan.NewSignal("rest.response", "HTTP response received")
)

// KeyStatus carries the HTTP status code.
var KeyStatus = capitan.NewIntKey("status")

func emitCacheHit(ctx context.Context, target string) {
	capitan.Emit(ctx, SignalCacheHit,
		tether.KeyURL.Field(target),
	)
}

func emitResponse(ctx context.Context, method, target string, status int, duration time.Duration, err error) {
	fields := []capitan.Field{
		tether.KeyMethod.Field(method),
		tether.KeyURL.Field(target),
		KeyStatus.Field(status),
		tether.KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, tether.KeyError.Field(err))
		capitan.Error(ctx, SignalResponse, fields...)
		return
	}
	capitan.Emit(ctx, SignalResponse, fields...)
}

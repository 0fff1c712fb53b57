package tether

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for record events.
var (
	SignalSchemaBuilt     = capitan.NewSignal("tether.schema.built", "Record type scanned and cached")
	SignalFillComplete    = capitan.NewSignal("tether.fill.complete", "Record filled from input")
	SignalResolveStart    = capitan.NewSignal("tether.relation.resolve.start", "Association resolution beginning")
	SignalResolveComplete = capitan.NewSignal("tether.relation.resolve.complete", "Association resolution finished")
	SignalRequestStart    = capitan.NewSignal("tether.request.start", "Transport request beginning")
	SignalRequestComplete = capitan.NewSignal("tether.request.complete", "Transport request finished")
	SignalSaveComplete    = capitan.NewSignal("tether.save.complete", "Create or update finished")
	SignalInvalidated     = capitan.NewSignal("tether.relation.invalidated", "Cached association dropped")
)

// Keys for typed event data.
var (
	KeyTypeName      = capitan.NewStringKey("type_name")
	KeyOperation     = capitan.NewStringKey("operation")
	KeyMethod        = capitan.NewStringKey("method")
	KeyURL           = capitan.NewStringKey("url")
	KeyRelation      = capitan.NewStringKey("relation")
	KeyFieldCount    = capitan.NewIntKey("field_count")
	KeyExtraCount    = capitan.NewIntKey("extra_count")
	KeyRelationCount = capitan.NewIntKey("relation_count")
	KeyDuration      = capitan.NewDurationKey("duration")
	KeyError         = capitan.NewErrorKey("error")
)

func emitSchemaBuilt(ctx context.Context, typeName string, fields, relations int) {
	capitan.Emit(ctx, SignalSchemaBuilt,
		KeyTypeName.Field(typeName),
		KeyFieldCount.Field(fields),
		KeyRelationCount.Field(relations),
	)
}

func emitFillComplete(ctx context.Context, typeName string, fields, extras int, err error) {
	f := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyFieldCount.Field(fields),
		KeyExtraCount.Field(extras),
	}
	if err != nil {
		f = append(f, KeyError.Field(err))
		capitan.Error(ctx, SignalFillComplete, f...)
		return
	}
	capitan.Emit(ctx, SignalFillComplete, f...)
}

func emitResolveStart(ctx context.Context, typeName, relation string) {
	capitan.Emit(ctx, SignalResolveStart,
		KeyTypeName.Field(typeName),
		KeyRelation.Field(relation),
	)
}

func emitResolveComplete(ctx context.Context, typeName, relation string, duration time.Duration, err error) {
	f := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyRelation.Field(relation),
		KeyDuration.Field(duration),
	}
	if err != nil {
		f = append(f, KeyError.Field(err))
		capitan.Error(ctx, SignalResolveComplete, f...)
		return
	}
	capitan.Emit(ctx, SignalResolveComplete, f...)
}

func emitRequestStart(ctx context.Context, typeName, operation string, req *Request) {
	capitan.Emit(ctx, SignalRequestStart,
		KeyTypeName.Field(typeName),
		KeyOperation.Field(operation),
		KeyMethod.Field(req.Method),
		KeyURL.Field(req.URL),
	)
}

func emitRequestComplete(ctx context.Context, typeName, operation string, req *Request, duration time.Duration, err error) {
	f := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyOperation.Field(operation),
		KeyMethod.Field(req.Method),
		KeyURL.Field(req.URL),
		KeyDuration.Field(duration),
	}
	if err != nil {
		f = append(f, KeyError.Field(err))
		capitan.Error(ctx, SignalRequestComplete, f...)
		return
	}
	capitan.Emit(ctx, SignalRequestComplete, f...)
}

func emitSaveComplete(ctx context.Context, typeName, operation string, err error) {
	f := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyOperation.Field(operation),
	}
	if err != nil {
		f = append(f, KeyError.Field(err))
		capitan.Error(ctx, SignalSaveComplete, f...)
		return
	}
	capitan.Emit(ctx, SignalSaveComplete, f...)
}

func emitInvalidated(ctx context.Context, typeName, relation string) {
	capitan.Emit(ctx, SignalInvalidated,
		KeyTypeName.Field(typeName),
		KeyRelation.Field(relation),
	)
}

package requestctx

import "context"

type ctxKey string

const metaKey ctxKey = "request_meta"

// Meta is the per-request information that outlives the HTTP layer, e.g. in audit rows.
type Meta struct {
	RequestID string
	ClientIP  string
}

func With(ctx context.Context, meta Meta) context.Context {
	return context.WithValue(ctx, metaKey, meta)
}

func From(ctx context.Context) Meta {
	if value, ok := ctx.Value(metaKey).(Meta); ok {
		return value
	}
	return Meta{}
}

func RequestID(ctx context.Context) string {
	return From(ctx).RequestID
}

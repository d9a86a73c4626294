// Package correlation carries the id that ties the logs and spans of one
// request or onboarding run together.
package correlation

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type ctxKey struct{}

// FromContext returns the correlation id, or "" when none is set.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// WithID replaces the correlation id. An empty id leaves ctx untouched.
func WithID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

// WithDefault sets id only when ctx has no correlation id yet, keeping an
// inbound request id in front of a run id.
func WithDefault(ctx context.Context, id string) context.Context {
	if FromContext(ctx) != "" {
		return ctx
	}
	return WithID(ctx, id)
}

// NewID returns a ULID: 26 characters, sortable by creation time.
func NewID() string {
	return ulid.Make().String()
}

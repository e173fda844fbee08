package sink

import (
	"context"
	"fmt"

	"github.com/goliatone/go-diagnostic/pkg/session"
)

// Sink receives a flattened submission.
type Sink interface {
	Deliver(ctx context.Context, entries session.Entries) error
}

// Func adapts a function into a Sink.
type Func func(ctx context.Context, entries session.Entries) error

// Deliver calls the underlying function.
func (fn Func) Deliver(ctx context.Context, entries session.Entries) error {
	return fn(ctx, entries)
}

// Nop accepts every submission without sending it anywhere.
type Nop struct{}

// Deliver implements Sink.
func (Nop) Deliver(ctx context.Context, _ session.Entries) error {
	return ctx.Err()
}

// StatusError reports a non-2xx response from the sink endpoint.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sink: %s responded with status %d", e.Endpoint, e.StatusCode)
}

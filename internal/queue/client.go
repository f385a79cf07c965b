package queue

import "context"

// Client delivers generation messages to the worker queue. Implementations
// must be safe for concurrent use.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

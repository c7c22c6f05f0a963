package event

import "context"

// Fire sends event to the Listener in ctx, if there is one.
func Fire(ctx context.Context, event Event) {
	FromContext(ctx).Fire(event)
}

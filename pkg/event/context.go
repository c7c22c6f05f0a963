package event

import "context"

type listenerKey struct{}

// FromContext returns the Listener stored in ctx, or nil.
func FromContext(ctx context.Context) *Listener {
	l, _ := ctx.Value(listenerKey{}).(*Listener)
	return l
}

func SetContext(ctx context.Context, l *Listener) context.Context {
	return context.WithValue(ctx, listenerKey{}, l)
}

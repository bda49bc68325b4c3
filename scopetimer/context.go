package scopetimer

import "context"

type contextKey struct{}

// NewContext returns a copy of ctx carrying l.
// A context carrying a Local must not be handed to another goroutine that
// times scopes with it; such a goroutine attaches its own Local from [New].
func NewContext(ctx context.Context, l *Local) context.Context {
	if ctx == nil {
		panic("context must be defined")
	}
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the Local carried by ctx, if any.
func FromContext(ctx context.Context) (*Local, bool) {
	if ctx == nil {
		return nil, false
	}
	l, ok := ctx.Value(contextKey{}).(*Local)
	return l, ok && l != nil
}

// Ensure returns ctx and the Local it carries, or a copy of ctx carrying a
// new Local when it has none. A goroutine starting its own timing tree calls
// Ensure once and passes the returned context down.
func Ensure(ctx context.Context, opts ...Option) (context.Context, *Local) {
	if l, ok := FromContext(ctx); ok {
		return ctx, l
	}
	l := New(opts...)
	return NewContext(ctx, l), l
}

package diagram

import "context"

type storeKey struct{}

// WithStore returns a context carrying s.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

// FromContext returns the store placed in ctx by WithStore. It panics when
// there is none: reaching the editor without constructing a store is a
// programming error.
func FromContext(ctx context.Context) *Store {
	if s, ok := ctx.Value(storeKey{}).(*Store); ok && s != nil {
		return s
	}
	panic("diagram: store missing from context")
}

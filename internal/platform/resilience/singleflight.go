package resilience

import "golang.org/x/sync/singleflight"

// Group collapses concurrent calls that share a key into one execution.
type Group[T any] struct {
	g singleflight.Group
}

// Do runs fn once per in-flight key; shared reports whether the result
// was handed to more than one caller.
func (g *Group[T]) Do(key string, fn func() (T, error)) (value T, shared bool, err error) {
	raw, err, shared := g.g.Do(key, func() (any, error) {
		return fn()
	})
	if raw != nil {
		value = raw.(T)
	}
	return value, shared, err
}

func (g *Group[T]) Forget(key string) {
	g.g.Forget(key)
}

package pipeline

// KeyFunc extracts the key used to order, join, or group a value.
// An error aborts the traversal that invoked it.
type KeyFunc[T, K any] func(T) (K, error)

// Key adapts an accessor that cannot fail into a KeyFunc.
//
//	pipeline.Key(func(u User) string { return u.City })
//
// Composite keys are plain comparable structs built at the call site; two keys
// are equal only when every field is equal.
//
//	pipeline.Key(func(u User) struct{ City string; Code int } {
//	    return struct{ City string; Code int }{u.LocationID, u.CountryCode}
//	})
func Key[T, K any](fn func(T) K) KeyFunc[T, K] {
	return func(v T) (K, error) { return fn(v), nil }
}

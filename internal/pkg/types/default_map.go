package types

// DefaultMap is a map wrapper that materializes missing keys with a
// user-provided default function, avoiding explicit existence checks at call
// sites. The flow accumulator uses it to initialize per-label entries on
// first touch.
type DefaultMap[K comparable, V any] struct {
	data        map[K]V  // underlying key-value storage
	defaultFunc func() V // produces the value stored for missing keys
}

// NewDefaultMap creates an empty DefaultMap using defaultFunc for missing keys.
func NewDefaultMap[K comparable, V any](defaultFunc func() V) DefaultMap[K, V] {
	return DefaultMap[K, V]{
		data:        make(map[K]V),
		defaultFunc: defaultFunc,
	}
}

// Get retrieves the value for key. If the key is absent, the default function
// is invoked, its result stored under the key, and then returned.
func (d *DefaultMap[K, V]) Get(key K) V {
	val, ok := d.data[key]
	if ok {
		return val
	}

	val = d.defaultFunc()
	d.data[key] = val
	return val
}

// Set assigns val to key.
func (d *DefaultMap[K, V]) Set(key K, val V) {
	d.data[key] = val
}

// Len returns the number of keys currently stored.
func (d *DefaultMap[K, V]) Len() int {
	return len(d.data)
}

// ToMap exposes the underlying map for iteration or bulk operations.
func (d *DefaultMap[K, V]) ToMap() map[K]V {
	return d.data
}

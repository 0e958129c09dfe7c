package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments (for
// example staging and production) can share one durable tier without
// reading each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner uses the
// default keyer; an empty prefix returns inner unchanged.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if prefix == "" {
		return inner
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// Key implements Keyer.
func (k *ScopedKeyer) Key(kind string, parts KeyParts) string {
	return k.prefix + k.inner.Key(kind, parts)
}

package cache

// ScopedKeyer wraps a Keyer with a prefix, for example to keep results of
// different case files apart in a shared Redis:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "benzene-toluene:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SimulationKey generates a prefixed simulation key.
func (k *ScopedKeyer) SimulationKey(simulator string, cfg any) string {
	return k.prefix + k.inner.SimulationKey(simulator, cfg)
}

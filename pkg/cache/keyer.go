package cache

// KeyVersion is bumped whenever the cached result layout changes so that
// stale entries stop matching.
const KeyVersion = "v1"

// Keyer derives cache keys.
type Keyer interface {
	// SimulationKey identifies the result of running simulator on cfg. cfg
	// must marshal to JSON deterministically.
	SimulationKey(simulator string, cfg any) string
}

// DefaultKeyer hashes the simulator name and the JSON form of the
// configuration.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SimulationKey returns "sim:<sha256>".
func (DefaultKeyer) SimulationKey(simulator string, cfg any) string {
	return hashKey("sim", KeyVersion, simulator, cfg)
}

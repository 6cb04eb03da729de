package cache

// Tier identifies which cache level served a hit.
type Tier int

const (
	// TierMemory means the hit was served from the in-process map.
	TierMemory Tier = iota
	// TierDisk means the hit was served from the cache directory.
	TierDisk
)

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit(tier Tier)
	Miss()
	Put()
	// Invalidated reports a memory entry whose stored hash no longer
	// matches the file's current content hash.
	Invalidated()
	Size(entries int)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
// It is safe for concurrent use and intended as the default when
// no observability backend is configured.
type NoopMetrics struct{}

func (NoopMetrics) Hit(Tier)     {}
func (NoopMetrics) Miss()        {}
func (NoopMetrics) Put()         {}
func (NoopMetrics) Invalidated() {}
func (NoopMetrics) Size(int)     {}

// Ensure NoopMetrics implements the Metrics interface at compile time.
var _ Metrics = NoopMetrics{}

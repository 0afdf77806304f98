package csvengine

import (
	"github.com/shapestone/csv-engine/internal/indexer"
)

// IndexerOptions configures an Indexer. Alias of indexer.Options.
type IndexerOptions = indexer.Options

// DevicePool models the indexer's backend resource pool (spec's device
// pool). Alias of indexer.DevicePool.
type DevicePool = indexer.DevicePool

// DefaultIndexerOptions returns the indexer's default configuration.
func DefaultIndexerOptions() IndexerOptions {
	return indexer.DefaultOptions()
}

// NewIndexer constructs the GPU-simulated indexer front end (spec's
// GPU-Parallel Indexer module), backed by the CPU workgroup simulation.
// It falls back to the primary lexer transparently on backend failure
// unless opts.Strict is set.
func NewIndexer(opts IndexerOptions) (*indexer.Indexer, error) {
	return indexer.New(opts)
}

// NewDevicePool constructs a DevicePool around the CPU backend, for
// callers that want explicit reference-counted session lifetimes instead
// of letting NewIndexer manage backend acquisition implicitly.
func NewDevicePool(autoDispose bool) *DevicePool {
	return indexer.NewDevicePool(indexer.NewDefaultBackend(), autoDispose)
}

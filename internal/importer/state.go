// internal/importer/state.go
package importer

import (
	"sync"

	"github.com/stylefeed/inventory-importer/internal/domain"
	"github.com/stylefeed/inventory-importer/pkg/logger"
)

// Coordinator enforces per-source mutual exclusion: one active import per
// source id, any number of sources in parallel.
type Coordinator struct {
	mu     sync.Mutex
	active map[string]bool
}

func NewCoordinator() *Coordinator {
	return &Coordinator{active: make(map[string]bool)}
}

// StartImport claims the source. Returns ErrImportBusy when an import is
// already running for it.
func (c *Coordinator) StartImport(sourceID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active[sourceID] {
		return domain.ErrImportBusy
	}
	c.active[sourceID] = true
	return nil
}

// CompleteImport releases the source after a successful run.
func (c *Coordinator) CompleteImport(sourceID string, itemCount int) {
	logger.Log.Info().Str("source_id", sourceID).Int("items", itemCount).Msg("import completed")
	c.release(sourceID)
}

// FailImport releases the source after a failed or blocked run.
func (c *Coordinator) FailImport(sourceID string, message string) {
	logger.Log.Warn().Str("source_id", sourceID).Str("reason", message).Msg("import failed")
	c.release(sourceID)
}

func (c *Coordinator) release(sourceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, sourceID)
}

// Running reports whether an import is currently active for the source.
func (c *Coordinator) Running(sourceID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active[sourceID]
}

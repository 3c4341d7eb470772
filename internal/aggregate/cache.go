package aggregate

import (
	"sync"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

type cacheKey struct {
	templateID string
	menteeID   string
}

type cacheEntry struct {
	tmpl    *models.RoadmapTemplate
	version int64
	report  *models.RoadmapReport
}

// Cache memoizes reports keyed by (template, mentee, overlay version).
// Only the latest version per mentee/template pair is kept. An entry built
// from a template value that has since been replaced (same ID, new pointer)
// is recomputed. Cached reports are
// shared between callers and must be treated as read-only.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry
}

// NewCache creates an empty report cache
func NewCache() *Cache {
	return &Cache{
		entries: make(map[cacheKey]cacheEntry),
	}
}

// Report returns the cached report for p's version or computes and stores it
func (c *Cache) Report(tmpl *models.RoadmapTemplate, p *models.MenteeRoadmapProgress) (*models.RoadmapReport, error) {
	key := cacheKey{templateID: tmpl.ID}
	var version int64
	if p != nil {
		key.menteeID = p.MenteeID
		version = p.Version
	}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && entry.tmpl == tmpl && entry.version == version {
		return entry.report, nil
	}

	report, err := Summarize(tmpl, p)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{tmpl: tmpl, version: version, report: report}
	c.mu.Unlock()

	return report, nil
}

// Len returns the number of cached reports
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/crosscheck/internal/common"
)

// TabCache maps tab titles to sheet ids for one run.
type TabCache struct {
	ids map[string]int64
	mu  sync.RWMutex
}

// NewTabCache returns an empty cache.
func NewTabCache() *TabCache {
	return &TabCache{ids: make(map[string]int64)}
}

// Load replaces the cache contents with the spreadsheet's current tabs.
func (c *TabCache) Load(ctx context.Context, api TabLister) error {
	tabs, err := api.ListTabs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tabs: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = make(map[string]int64, len(tabs))
	for _, t := range tabs {
		c.ids[t.Title] = t.ID
	}
	return nil
}

// Lookup returns the id of a known tab.
func (c *TabCache) Lookup(title string) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.ids[title]
	return id, ok
}

// Store records a tab.
func (c *TabCache) Store(title string, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[title] = id
}

// Len returns the number of known tabs.
func (c *TabCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ids)
}

// EnsureOptions tunes TabManager.Ensure.
type EnsureOptions struct {
	// FreezeHeader freezes row 1 when the tab is created.
	FreezeHeader bool
}

// TabManager creates or reuses tabs so every builder starts from an empty grid.
type TabManager struct {
	api    API
	logger *slog.Logger
}

// NewTabManager creates a TabManager.
func NewTabManager(api API, logger *slog.Logger) *TabManager {
	return &TabManager{api: api, logger: logger}
}

// Ensure returns the id of an empty tab named title. Existing tabs have
// their values cleared in A1:Z; missing tabs are created and recorded in
// cache.
func (m *TabManager) Ensure(ctx context.Context, cache *TabCache, title string, opts EnsureOptions) (int64, error) {
	if id, ok := cache.Lookup(title); ok {
		if err := m.api.Clear(ctx, A1(title, "A1:Z")); err != nil {
			return 0, fmt.Errorf("failed to clear tab %q: %w", title, err)
		}
		m.logger.Debug("cleared tab", "tab", title, "sheet_id", id)
		return id, nil
	}

	id, err := m.api.AddTab(ctx, title)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", common.ErrTabCreateConflict, title, err)
	}
	cache.Store(title, id)
	m.logger.Info("created tab", "tab", title, "sheet_id", id)

	if opts.FreezeHeader {
		if err := m.api.FreezeRows(ctx, id, 1); err != nil {
			m.logger.Warn("failed to freeze header row", "tab", title, "error", err)
		}
	}

	return id, nil
}

package catalog

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/starford/docnotes/internal/models"
)

// Catalog is an immutable view over one load of the documentation snapshot.
type Catalog struct {
	records  []models.ClassRecord
	tree     []*models.TreeItem
	checksum string
	loadedAt time.Time

	byPath  map[string]*models.TreeItem
	byClass map[string]*models.TreeItem
	leaves  map[*models.TreeItem]struct{}
}

// New builds a catalog from records.
func New(records []models.ClassRecord, sum string) *Catalog {
	c := &Catalog{
		records:  records,
		tree:     BuildTree(records),
		checksum: sum,
		loadedAt: time.Now(),
		byPath:   make(map[string]*models.TreeItem),
		byClass:  make(map[string]*models.TreeItem),
		leaves:   make(map[*models.TreeItem]struct{}),
	}
	c.indexItems(c.tree, 0)
	return c
}

// Empty returns a catalog with no records.
func Empty() *Catalog {
	return New(nil, "")
}

// indexItems records every item by path and every leaf (depth >= 2) by class name.
func (c *Catalog) indexItems(items []*models.TreeItem, depth int) {
	for _, item := range items {
		c.byPath[item.Path] = item
		if depth >= 2 {
			c.byClass[item.Name] = item
			c.leaves[item] = struct{}{}
		}
		c.indexItems(item.Children, depth+1)
	}
}

// Tree returns the navigation tree.
func (c *Catalog) Tree() []*models.TreeItem { return c.tree }

// Records returns the source records.
func (c *Catalog) Records() []models.ClassRecord { return c.records }

// Checksum returns the digest of the source document.
func (c *Catalog) Checksum() string { return c.checksum }

// LoadedAt returns when the catalog was built.
func (c *Catalog) LoadedAt() time.Time { return c.loadedAt }

// Len returns the number of source records.
func (c *Catalog) Len() int { return len(c.records) }

// Search runs Search over the catalog tree.
func (c *Catalog) Search(query string) []*models.TreeItem {
	return Search(c.tree, query)
}

// FindByPath returns the tree item with the given path.
func (c *Catalog) FindByPath(path string) (*models.TreeItem, bool) {
	item, ok := c.byPath[strings.Trim(path, pathSep)]
	return item, ok
}

// Class returns the leaf for a class name.
func (c *Catalog) Class(name string) (*models.TreeItem, bool) {
	item, ok := c.byClass[name]
	return item, ok
}

// IsClass reports whether item is a class leaf of this catalog rather than a
// category. Ids and paths are not compared: a class may be named like its path.
func (c *Catalog) IsClass(item *models.TreeItem) bool {
	_, ok := c.leaves[item]
	return ok
}

// Resolve reports whether a note key points at an existing member: a property
// or function name, or a node's full title.
func (c *Catalog) Resolve(classID, itemID string) bool {
	leaf, ok := c.byClass[classID]
	if !ok {
		return false
	}
	for _, p := range leaf.Properties {
		if p.Name == itemID {
			return true
		}
	}
	for _, f := range leaf.Functions {
		if f.Name == itemID {
			return true
		}
	}
	for _, n := range leaf.Nodes {
		if n.FullTitle == itemID {
			return true
		}
	}
	return false
}

// Holder owns the current catalog and swaps it on reload.
type Holder struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	current *Catalog
}

// Open loads the snapshot at path. A load failure leaves the holder with an
// empty catalog and is returned so the caller can report it.
func Open(path string, logger *slog.Logger) (*Holder, error) {
	h := &Holder{path: path, logger: logger, current: Empty()}
	if err := h.Reload(); err != nil {
		return h, err
	}
	return h, nil
}

// NewHolder wraps an already built catalog. Reload reads from path.
func NewHolder(c *Catalog, path string, logger *slog.Logger) *Holder {
	return &Holder{path: path, logger: logger, current: c}
}

// Path returns the snapshot location.
func (h *Holder) Path() string { return h.path }

// Current returns the catalog in effect.
func (h *Holder) Current() *Catalog {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload rebuilds the catalog from disk. On error the previous catalog stays.
func (h *Holder) Reload() error {
	src, err := LoadFile(h.path)
	if err != nil {
		return err
	}

	for _, rec := range MalformedRecords(src.Records) {
		h.logger.Warn("catalog: record path has no subcategory, not attached",
			slog.String("class", rec.ClassName),
			slog.String("path", rec.Path))
	}

	next := New(src.Records, src.Checksum)

	h.mu.Lock()
	h.current = next
	h.mu.Unlock()

	h.logger.Info("catalog: loaded",
		slog.String("path", h.path),
		slog.Int("records", next.Len()),
		slog.Int("categories", len(next.Tree())),
		slog.String("checksum", next.Checksum()))
	return nil
}

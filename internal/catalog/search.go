package catalog

import (
	"strings"

	"github.com/starford/docnotes/internal/models"
)

// Search returns every item, at any depth, whose name contains query
// case-insensitively. Items are visited pre-order and returned flat.
//
// An empty query returns no results: callers show the full tree instead of a
// filtered list.
func Search(items []*models.TreeItem, query string) []*models.TreeItem {
	out := []*models.TreeItem{}
	if query == "" {
		return out
	}
	return searchInto(out, items, strings.ToLower(query))
}

func searchInto(out, items []*models.TreeItem, needle string) []*models.TreeItem {
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			out = append(out, item)
		}
		out = searchInto(out, item.Children, needle)
	}
	return out
}

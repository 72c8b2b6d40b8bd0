// Package catalog builds the navigation tree over the documentation snapshot
// and answers name searches against it.
package catalog

import (
	"strings"

	"github.com/starford/docnotes/internal/models"
)

const pathSep = "/"

// BuildTree folds flat class records into a category tree keyed by path
// segments. Top-level categories keep first-seen order. Each class becomes a
// leaf under its second-level category regardless of how deep its path is.
//
// A record whose path has a single segment only creates its top-level
// category; see MalformedRecords.
func BuildTree(records []models.ClassRecord) []*models.TreeItem {
	var order []*models.TreeItem
	top := make(map[string]*models.TreeItem)

	for _, rec := range records {
		segments := strings.Split(rec.Path, pathSep)
		first := segments[0]

		root, ok := top[first]
		if !ok {
			root = newCategory(first, first, first)
			top[first] = root
			order = append(order, root)
		}
		if len(segments) < 2 {
			continue
		}

		subPath := strings.Join(segments[:2], pathSep)
		sub := childByPath(root, subPath)
		if sub == nil {
			sub = newCategory(subPath, segments[1], subPath)
			root.Children = append(root.Children, sub)
		}

		appendLeaf(sub, newLeaf(rec))
	}

	if order == nil {
		return []*models.TreeItem{}
	}
	return order
}

// MalformedRecords returns the records BuildTree cannot attach below the top
// level because their path has fewer than two segments.
func MalformedRecords(records []models.ClassRecord) []models.ClassRecord {
	var out []models.ClassRecord
	for _, rec := range records {
		if !strings.Contains(rec.Path, pathSep) {
			out = append(out, rec)
		}
	}
	return out
}

// appendLeaf adds leaf to parent. A leaf with the same id is replaced in place.
func appendLeaf(parent, leaf *models.TreeItem) {
	for i, c := range parent.Children {
		if c.ID == leaf.ID {
			parent.Children[i] = leaf
			return
		}
	}
	parent.Children = append(parent.Children, leaf)
}

func childByPath(parent *models.TreeItem, path string) *models.TreeItem {
	for _, c := range parent.Children {
		if c.Path == path {
			return c
		}
	}
	return nil
}

func newCategory(id, name, path string) *models.TreeItem {
	return &models.TreeItem{
		ID:         id,
		Name:       name,
		Path:       path,
		Children:   []*models.TreeItem{},
		Properties: []models.PropertyRecord{},
		Functions:  []models.FunctionRecord{},
		Nodes:      []models.NodeRecord{},
	}
}

func newLeaf(rec models.ClassRecord) *models.TreeItem {
	return &models.TreeItem{
		ID:         rec.ClassName,
		Name:       rec.ClassName,
		Path:       rec.Path,
		Children:   []*models.TreeItem{},
		Properties: nonNilSlice(rec.Properties),
		Functions:  nonNilSlice(rec.Functions),
		Nodes:      nonNilSlice(rec.Nodes),
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

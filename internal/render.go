package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/starford/docnotes/internal/models"
)

// Output formats for PrintTree.
const (
	FormatJSON  = "json"
	FormatTable = "table"
)

// renderItems writes items in format. isClass tells class leaves from
// categories; recurse descends into children.
func renderItems(w io.Writer, items []*models.TreeItem, isClass func(*models.TreeItem) bool, format string, recurse bool) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case FormatTable:
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Path", "Name", "Kind", "Members"})
		table.SetBorder(false)
		table.SetCenterSeparator("")
		table.SetAutoWrapText(false)
		table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

		rows := appendRows(table, items, isClass, 0, recurse)
		table.SetFooter([]string{fmt.Sprintf("Total %d", rows), "", "", ""})
		table.Render()
		return nil
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", format, FormatJSON, FormatTable)
	}
}

func appendRows(table *tablewriter.Table, items []*models.TreeItem, isClass func(*models.TreeItem) bool, depth int, recurse bool) int {
	rows := 0
	for _, it := range items {
		kind := "category"
		members := strconv.Itoa(len(it.Children))
		if isClass(it) {
			kind = "class"
			members = strconv.Itoa(len(it.Properties) + len(it.Functions) + len(it.Nodes))
		}
		table.Append([]string{it.Path, strings.Repeat("  ", depth) + it.Name, kind, members})
		rows++
		if recurse {
			rows += appendRows(table, it.Children, isClass, depth+1, recurse)
		}
	}
	return rows
}

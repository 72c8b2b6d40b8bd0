package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/starford/docnotes/internal/models"
)

func sampleTree() []*models.TreeItem {
	return BuildTree([]models.ClassRecord{
		rec("WidgetComponent", "UI/Widgets/WidgetComponent"),
		rec("ButtonWidget", "UI/Widgets/ButtonWidget"),
		rec("Character", "Gameplay/Pawns/Character"),
	})
}

func TestSearch_EmptyItems(t *testing.T) {
	got := Search(nil, "anything")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_EmptyQuery(t *testing.T) {
	got := Search(sampleTree(), "")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_CaseInsensitive(t *testing.T) {
	items := []*models.TreeItem{{ID: "w", Name: "Widget", Path: "Widget"}}
	got := Search(items, "WID")
	assert.Equal(t, []string{"Widget"}, names(got))
}

func TestSearch_PreOrderAnyDepth(t *testing.T) {
	got := Search(sampleTree(), "widget")

	// "Widgets" category comes before its children.
	assert.Equal(t, []string{"Widgets", "WidgetComponent", "ButtonWidget"}, names(got))
}

func TestSearch_ResultsCarryOwnPath(t *testing.T) {
	got := Search(sampleTree(), "char")
	if assert.Len(t, got, 1) {
		assert.Equal(t, "Gameplay/Pawns/Character", got[0].Path)
	}
}

func TestSearch_Idempotent(t *testing.T) {
	tree := sampleTree()
	first := Search(tree, "ui")
	second := Search(tree, "ui")
	assert.Equal(t, names(first), names(second))
	assert.Equal(t, []string{"UI"}, names(first))
}

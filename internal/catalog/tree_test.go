package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/docnotes/internal/models"
)

func rec(className, path string) models.ClassRecord {
	return models.ClassRecord{
		ClassName:  className,
		Path:       path,
		Properties: []models.PropertyRecord{},
		Functions:  []models.FunctionRecord{},
		Nodes:      []models.NodeRecord{},
	}
}

func names(items []*models.TreeItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestBuildTree_SingleRecordShape(t *testing.T) {
	tree := BuildTree([]models.ClassRecord{rec("Foo", "Cat/Sub/Foo")})

	got, err := json.Marshal(tree)
	require.NoError(t, err)

	want := `[{"id":"Cat","name":"Cat","path":"Cat","children":[` +
		`{"id":"Cat/Sub","name":"Sub","path":"Cat/Sub","children":[` +
		`{"id":"Foo","name":"Foo","path":"Cat/Sub/Foo","children":[],"properties":[],"functions":[],"nodes":[]}` +
		`],"properties":[],"functions":[],"nodes":[]}` +
		`],"properties":[],"functions":[],"nodes":[]}]`
	assert.JSONEq(t, want, string(got))
}

func TestBuildTree_FirstSeenOrder(t *testing.T) {
	tree := BuildTree([]models.ClassRecord{
		rec("Z1", "Zeta/A/Z1"),
		rec("A1", "Alpha/A/A1"),
		rec("Z2", "Zeta/B/Z2"),
		rec("M1", "Mid/A/M1"),
		rec("A2", "Alpha/A/A2"),
	})

	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, names(tree))
	assert.Equal(t, []string{"A", "B"}, names(tree[0].Children))
	assert.Equal(t, []string{"A1", "A2"}, names(tree[1].Children[0].Children))
}

func TestBuildTree_LeafPathEqualsRecordPath(t *testing.T) {
	records := []models.ClassRecord{
		rec("Foo", "Cat/Sub/Foo"),
		rec("Deep", "Cat/Sub/More/Levels/Deep"),
		rec("Bar", "Other/X/Bar"),
	}
	tree := BuildTree(records)

	byName := map[string]*models.TreeItem{}
	for _, top := range tree {
		for _, sub := range top.Children {
			for _, leaf := range sub.Children {
				byName[leaf.Name] = leaf
			}
		}
	}
	for _, r := range records {
		leaf, ok := byName[r.ClassName]
		require.True(t, ok, "leaf %s missing", r.ClassName)
		assert.Equal(t, r.Path, leaf.Path)
		assert.Equal(t, r.ClassName, leaf.ID)
	}
}

func TestBuildTree_DeepPathAttachesToSecondLevel(t *testing.T) {
	tree := BuildTree([]models.ClassRecord{rec("Deep", "Cat/Sub/More/Deep")})

	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	sub := tree[0].Children[0]
	assert.Equal(t, "Cat/Sub", sub.Path)
	require.Len(t, sub.Children, 1)
	assert.Equal(t, "Deep", sub.Children[0].ID)
}

func TestBuildTree_SingleSegmentOnlyCreatesCategory(t *testing.T) {
	records := []models.ClassRecord{rec("Lonely", "Lonely")}
	tree := BuildTree(records)

	require.Len(t, tree, 1)
	assert.Equal(t, "Lonely", tree[0].ID)
	assert.Empty(t, tree[0].Children)

	malformed := MalformedRecords(records)
	require.Len(t, malformed, 1)
	assert.Equal(t, "Lonely", malformed[0].ClassName)
}

func TestBuildTree_CollisionReplacesInPlace(t *testing.T) {
	first := rec("Foo", "Cat/Sub/Foo")
	second := rec("Foo", "Cat/Sub/Foo")
	second.Properties = []models.PropertyRecord{{Name: "Speed", Type: "float"}}

	tree := BuildTree([]models.ClassRecord{first, rec("Bar", "Cat/Sub/Bar"), second})

	leaves := tree[0].Children[0].Children
	require.Len(t, leaves, 2)
	assert.Equal(t, []string{"Foo", "Bar"}, names(leaves))
	require.Len(t, leaves[0].Properties, 1)
	assert.Equal(t, "Speed", leaves[0].Properties[0].Name)
}

func TestBuildTree_NilContentNormalised(t *testing.T) {
	tree := BuildTree([]models.ClassRecord{{ClassName: "Foo", Path: "A/B/Foo"}})

	leaf := tree[0].Children[0].Children[0]
	assert.NotNil(t, leaf.Properties)
	assert.NotNil(t, leaf.Functions)
	assert.NotNil(t, leaf.Nodes)
}

func TestBuildTree_Empty(t *testing.T) {
	tree := BuildTree(nil)
	assert.NotNil(t, tree)
	assert.Empty(t, tree)
}

func TestBuildTree_DoesNotMutateInput(t *testing.T) {
	records := []models.ClassRecord{rec("Foo", "Cat/Sub/Foo")}
	_ = BuildTree(records)
	_ = BuildTree(records)
	assert.Equal(t, "Cat/Sub/Foo", records[0].Path)

	tree := BuildTree(records)
	assert.Len(t, tree[0].Children[0].Children, 1, "rebuild must not accumulate leaves")
}

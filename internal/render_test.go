package internal

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/docnotes/internal/models"
)

const treeFixture = `[
  {"className":"CharacterMovement","path":"Gameplay/Movement/CharacterMovement","properties":[{"name":"MaxSpeed","type":"float"}],"functions":[]},
  {"className":"WidgetLibrary","path":"UI/Widgets/WidgetLibrary","properties":[],"functions":[]}
]`

func fixtureConfig(t *testing.T) *Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docs.json")
	if err := os.WriteFile(path, []byte(treeFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := NewDefaultConfig()
	cfg.Catalog.Source = path
	return cfg
}

func TestPrintTree_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintTree(&buf, "", FormatJSON, WithConfig(fixtureConfig(t))); err != nil {
		t.Fatalf("PrintTree: %v", err)
	}
	var tree []models.TreeItem
	if err := json.Unmarshal(buf.Bytes(), &tree); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tree) != 2 || tree[0].Name != "Gameplay" {
		t.Errorf("tree = %+v", tree)
	}
}

func TestPrintTree_SearchTable(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintTree(&buf, "widget", FormatTable, WithConfig(fixtureConfig(t))); err != nil {
		t.Fatalf("PrintTree: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "UI/Widgets/WidgetLibrary") {
		t.Errorf("missing class row:\n%s", out)
	}
	if strings.Contains(out, "CharacterMovement") {
		t.Errorf("non-matching class listed:\n%s", out)
	}
}

func TestPrintTree_UnknownFormat(t *testing.T) {
	if err := PrintTree(&bytes.Buffer{}, "", "yaml", WithConfig(fixtureConfig(t))); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestPrintTree_RequiresConfig(t *testing.T) {
	if err := PrintTree(&bytes.Buffer{}, "", FormatJSON); err == nil {
		t.Error("expected error without config")
	}
}

func TestPrintTree_KindIgnoresIDPathEquality(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.json")
	doc := `[{"className":"Tools/Editor","path":"Tools/Editor","properties":[{"name":"Open","type":"bool"}],"functions":[]}]`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := NewDefaultConfig()
	cfg.Catalog.Source = path

	var buf bytes.Buffer
	if err := PrintTree(&buf, "editor", FormatTable, WithConfig(cfg)); err != nil {
		t.Fatalf("PrintTree: %v", err)
	}

	kinds := map[string]string{}
	for _, line := range strings.Split(buf.String(), "\n") {
		var fields []string
		for _, f := range strings.Fields(line) {
			if f != "|" {
				fields = append(fields, f)
			}
		}
		if len(fields) == 4 && fields[0] == "Tools/Editor" {
			kinds[fields[1]] = fields[2]
		}
	}
	if kinds["Editor"] != "category" || kinds["Tools/Editor"] != "class" {
		t.Errorf("kinds = %v\n%s", kinds, buf.String())
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Limit int    `yaml:"limit"`
}

func (s *sample) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "docs")
	var s sample
	if err := Load(writeFile(t, "name: ${SAMPLE_NAME}\nlimit: 3\n"), &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "docs" || s.Limit != 3 {
		t.Errorf("got %+v", s)
	}
}

func TestLoad_Validates(t *testing.T) {
	var s sample
	err := Load(writeFile(t, "limit: 3\n"), &s)
	if err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Errorf("err = %v, want validation failure", err)
	}
}

func TestLoadOptional_MissingFileKeepsDefaults(t *testing.T) {
	s := sample{Name: "default", Limit: 1}
	read, err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &s)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if read {
		t.Error("read = true for a missing file")
	}
	if s.Name != "default" {
		t.Errorf("defaults changed: %+v", s)
	}
}

func TestLoadOptional_MissingFileStillValidates(t *testing.T) {
	var s sample
	if _, err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &s); err == nil {
		t.Error("expected validation error for empty defaults")
	}
}

func TestLoadOptional_ReadsFile(t *testing.T) {
	s := sample{Name: "default"}
	read, err := LoadOptional(writeFile(t, "limit: 9\n"), &s)
	if err != nil || !read {
		t.Fatalf("read=%v err=%v", read, err)
	}
	if s.Name != "default" || s.Limit != 9 {
		t.Errorf("got %+v", s)
	}
}

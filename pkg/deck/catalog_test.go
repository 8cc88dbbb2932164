package deck

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewCatalog(t *testing.T) {
	c, err := NewCatalog([]Info{
		{ID: "beginner", Title: "Beginner"},
		{ID: "advanced", Title: "Advanced"},
	})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	if !c.Has("beginner") {
		t.Error("catalog should contain beginner")
	}
	if c.Has("legendary") {
		t.Error("catalog should not contain legendary")
	}
	if got := c.IDs(); len(got) != 2 || got[0] != "beginner" || got[1] != "advanced" {
		t.Errorf("IDs() = %v, expected catalog order", got)
	}
}

func TestNewCatalog_RejectsEmpty(t *testing.T) {
	if _, err := NewCatalog(nil); err == nil {
		t.Error("empty catalog should be rejected")
	}
}

func TestNewCatalog_RejectsDuplicateID(t *testing.T) {
	_, err := NewCatalog([]Info{
		{ID: "beginner", Title: "Beginner"},
		{ID: "beginner", Title: "Beginner again"},
	})
	if err == nil {
		t.Error("duplicate deck id should be rejected")
	}
}

func TestNewCatalog_RejectsEmptyID(t *testing.T) {
	if _, err := NewCatalog([]Info{{Title: "No ID"}}); err == nil {
		t.Error("empty deck id should be rejected")
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decks.yaml")
	content := `decks:
  - id: beginner
    title: Beginner
    blurb: Start here
  - id: nolifers
    title: No Lifers
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write catalog file: %v", err)
	}

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	info, ok := c.Get("nolifers")
	if !ok {
		t.Fatal("catalog should contain nolifers")
	}
	if info.Title != "No Lifers" {
		t.Errorf("Title = %q, expected No Lifers", info.Title)
	}
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing catalog file should be an error")
	}
}

package deck

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Info describes one deck in the closed catalog.
type Info struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	Blurb string `yaml:"blurb" json:"blurb,omitempty"`
}

type catalogFile struct {
	Decks []Info `yaml:"decks"`
}

// Catalog is the fixed set of decks the product ships with. Deck IDs outside
// the catalog are rejected everywhere.
type Catalog struct {
	decks []Info
	byID  map[string]Info
}

// LoadCatalog reads and validates the deck catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}

	catalog, err := NewCatalog(file.Decks)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog file %s: %w", path, err)
	}

	logrus.Infof("loaded deck catalog from %s (%d decks)", path, len(file.Decks))
	return catalog, nil
}

// NewCatalog builds a catalog from a deck list, rejecting empty and
// duplicate IDs.
func NewCatalog(decks []Info) (*Catalog, error) {
	if len(decks) == 0 {
		return nil, fmt.Errorf("catalog has no decks")
	}

	byID := make(map[string]Info, len(decks))
	for _, d := range decks {
		if d.ID == "" {
			return nil, fmt.Errorf("deck with empty id (title %q)", d.Title)
		}
		if _, dup := byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate deck id %q", d.ID)
		}
		byID[d.ID] = d
	}

	return &Catalog{decks: decks, byID: byID}, nil
}

// Has reports whether id is part of the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Get returns the deck info for id.
func (c *Catalog) Get(id string) (Info, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// IDs returns every deck ID in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.decks))
	for i, d := range c.decks {
		ids[i] = d.ID
	}
	return ids
}

// Decks returns the full catalog in order.
func (c *Catalog) Decks() []Info {
	out := make([]Info, len(c.decks))
	copy(out, c.decks)
	return out
}

package config

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog lists the categories and locations items can be filed under.
type Catalog struct {
	Categories []string `yaml:"categories"`
	Locations  []string `yaml:"locations"`
}

// ParseCatalog reads a catalog YAML document. Blank and repeated names are
// dropped.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		if err == io.EOF {
			return &Catalog{}, nil
		}
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	c.Categories = cleanNames(c.Categories)
	c.Locations = cleanNames(c.Locations)
	return &c, nil
}

func cleanNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[strings.ToLower(n)] {
			continue
		}
		seen[strings.ToLower(n)] = true
		out = append(out, n)
	}
	return out
}

// Package styles is the built-in catalog of interior styles offered by the
// stylize wizard.
package styles

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// None is the option meaning "no named style".
const None = "None"

type Preset struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}

type Catalog struct {
	Options []string `yaml:"options"`
	Top     []string `yaml:"top"`
	Presets []Preset `yaml:"presets"`
}

//go:embed catalog.yaml
var catalogYAML []byte

var (
	loadOnce sync.Once
	builtin  *Catalog
	loadErr  error
)

// Parse decodes a catalog document.
func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to parse style catalog: %w", err)
	}
	if len(c.Options) == 0 {
		return nil, fmt.Errorf("style catalog has no options")
	}
	return &c, nil
}

// Default returns the embedded catalog. It panics if the embedded file is broken.
func Default() *Catalog {
	loadOnce.Do(func() {
		builtin, loadErr = Parse(catalogYAML)
	})
	if loadErr != nil {
		panic(loadErr)
	}
	return builtin
}

// Filter returns the options containing query, case-insensitively, in
// catalog order. An empty query returns every option.
func (c *Catalog) Filter(query string) []string {
	q := strings.ToLower(query)
	out := make([]string, 0, len(c.Options))
	for _, o := range c.Options {
		if strings.Contains(strings.ToLower(o), q) {
			out = append(out, o)
		}
	}
	return out
}

// Lookup returns the option matching name case-insensitively.
func (c *Catalog) Lookup(name string) (string, bool) {
	for _, o := range c.Options {
		if strings.EqualFold(o, strings.TrimSpace(name)) {
			return o, true
		}
	}
	return "", false
}

func (c *Catalog) Preset(id string) (Preset, bool) {
	for _, p := range c.Presets {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// Package catalog holds the static contract templates and cargo table, and
// answers cargo/trailer and license compatibility questions about them.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/nurpe/freight-market/internal/model"
)

const (
	LicenseBase      = "class_ce"
	LicenseOversize  = "oversize"
	LicenseHazardous = "adr_hazmat"
	LicenseTanker    = "tanker"
)

//go:embed templates.yaml
var templatesYAML []byte

//go:embed cargo.yaml
var cargoYAML []byte

type Catalog struct {
	templates  map[string]model.ContractTemplate
	categories []string
	cargo      map[string]model.CargoKind
}

// Default returns the catalog built from the embedded YAML tables.
func Default() (*Catalog, error) {
	return Parse(templatesYAML, cargoYAML)
}

func Parse(templatesData, cargoData []byte) (*Catalog, error) {
	var templates struct {
		Templates []model.ContractTemplate `yaml:"templates"`
	}
	if err := yaml.Unmarshal(templatesData, &templates); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	var cargo struct {
		Cargo []model.CargoKind `yaml:"cargo"`
	}
	if err := yaml.Unmarshal(cargoData, &cargo); err != nil {
		return nil, fmt.Errorf("parse cargo: %w", err)
	}
	if len(templates.Templates) == 0 {
		return nil, fmt.Errorf("catalog has no templates")
	}
	return New(templates.Templates, cargo.Cargo), nil
}

func New(templates []model.ContractTemplate, cargo []model.CargoKind) *Catalog {
	c := &Catalog{
		templates: make(map[string]model.ContractTemplate, len(templates)),
		cargo:     make(map[string]model.CargoKind, len(cargo)),
	}
	for _, t := range templates {
		c.templates[t.Category] = t
	}
	for _, k := range cargo {
		c.cargo[k.Key] = k
	}
	c.categories = make([]string, 0, len(c.templates))
	for key := range c.templates {
		c.categories = append(c.categories, key)
	}
	// sorted so seeded draws do not depend on map order
	sort.Strings(c.categories)
	return c
}

func (c *Catalog) Template(category string) (model.ContractTemplate, bool) {
	t, ok := c.templates[category]
	return t, ok
}

func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

func (c *Catalog) Cargo(key string) (model.CargoKind, bool) {
	k, ok := c.cargo[key]
	return k, ok
}

// CargoFitsTrailer reports whether cargo may legally be hauled on trailer.
// Unknown cargo fits nothing.
func (c *Catalog) CargoFitsTrailer(cargo, trailer string) bool {
	k, ok := c.cargo[cargo]
	if !ok {
		return false
	}
	for _, t := range k.Trailers {
		if t == trailer {
			return true
		}
	}
	return false
}

// LicensesCover reports whether held contains every required license tag.
func (c *Catalog) LicensesCover(held, required []string) bool {
	set := make(map[string]struct{}, len(held))
	for _, h := range held {
		set[h] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}

// RequiredLicenses derives the license tags a driver needs for cargo.
func RequiredLicenses(cargo model.CargoKind) []string {
	licenses := []string{LicenseBase}
	if cargo.Oversized {
		licenses = append(licenses, LicenseOversize)
	}
	if cargo.Hazardous {
		licenses = append(licenses, LicenseHazardous)
	}
	if cargo.Liquid {
		licenses = append(licenses, LicenseTanker)
	}
	return licenses
}

package catalog

import (
	"reflect"
	"testing"

	"github.com/nurpe/freight-market/internal/model"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if len(c.Categories()) == 0 {
		t.Fatal("expected at least one category")
	}
	for _, key := range []string{"medical_supply", "infrastructure"} {
		if _, ok := c.Template(key); !ok {
			t.Errorf("missing template %q", key)
		}
	}
}

func TestTemplateTrailersFitSomeCargo(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	for _, category := range c.Categories() {
		tpl, _ := c.Template(category)
		if len(tpl.Titles) == 0 || len(tpl.Descriptions) == 0 || len(tpl.CargoKinds) == 0 || len(tpl.TrailerKinds) == 0 {
			t.Errorf("%s: template has an empty variant list", category)
		}
		if tpl.Value.Min <= 0 || tpl.Value.Span <= 0 {
			t.Errorf("%s: invalid value range %+v", category, tpl.Value)
		}
		for _, cargo := range tpl.CargoKinds {
			if _, ok := c.Cargo(cargo); !ok {
				t.Errorf("%s: unknown cargo kind %q", category, cargo)
			}
		}
		for _, trailer := range tpl.TrailerKinds {
			fits := false
			for _, cargo := range tpl.CargoKinds {
				if c.CargoFitsTrailer(cargo, trailer) {
					fits = true
					break
				}
			}
			if !fits {
				t.Errorf("%s: trailer %q fits no cargo of the template", category, trailer)
			}
		}
	}
}

func TestCategoriesSorted(t *testing.T) {
	c := New([]model.ContractTemplate{
		{Category: "zeta"}, {Category: "alpha"}, {Category: "mid"},
	}, nil)
	want := []string{"alpha", "mid", "zeta"}
	if got := c.Categories(); !reflect.DeepEqual(got, want) {
		t.Errorf("Categories() = %v, want %v", got, want)
	}
}

func TestCargoFitsTrailer(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	tests := []struct {
		cargo, trailer string
		want           bool
	}{
		{"vaccines", "reefer", true},
		{"vaccines", "dry_van", false},
		{"fuel", "tanker", true},
		{"heavy_machinery", "flatbed", false},
		{"unknown", "reefer", false},
	}
	for _, tt := range tests {
		if got := c.CargoFitsTrailer(tt.cargo, tt.trailer); got != tt.want {
			t.Errorf("CargoFitsTrailer(%q, %q) = %v, want %v", tt.cargo, tt.trailer, got, tt.want)
		}
	}
}

func TestLicensesCover(t *testing.T) {
	c := New(nil, nil)
	tests := []struct {
		name     string
		held     []string
		required []string
		want     bool
	}{
		{"exact", []string{LicenseBase}, []string{LicenseBase}, true},
		{"superset", []string{LicenseBase, LicenseTanker, LicenseHazardous}, []string{LicenseBase, LicenseTanker}, true},
		{"missing one", []string{LicenseBase}, []string{LicenseBase, LicenseOversize}, false},
		{"none held", nil, []string{LicenseBase}, false},
		{"nothing required", nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.LicensesCover(tt.held, tt.required); got != tt.want {
				t.Errorf("LicensesCover() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequiredLicenses(t *testing.T) {
	tests := []struct {
		name  string
		cargo model.CargoKind
		want  []string
	}{
		{"plain", model.CargoKind{Key: "grain"}, []string{LicenseBase}},
		{"oversized", model.CargoKind{Oversized: true}, []string{LicenseBase, LicenseOversize}},
		{"hazardous liquid", model.CargoKind{Hazardous: true, Liquid: true}, []string{LicenseBase, LicenseHazardous, LicenseTanker}},
		{"liquid", model.CargoKind{Liquid: true}, []string{LicenseBase, LicenseTanker}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RequiredLicenses(tt.cargo); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RequiredLicenses() = %v, want %v", got, tt.want)
			}
		})
	}
}

package model

// ValueRange is the base contract value range of a category, in USD,
// before scaling by duration: [Min, Min+Span).
type ValueRange struct {
	Min  float64 `yaml:"min" json:"min"`
	Span float64 `yaml:"span" json:"span"`
}

type ContractTemplate struct {
	Category     string     `yaml:"category" json:"category"`
	Titles       []string   `yaml:"titles" json:"titles"`
	Descriptions []string   `yaml:"descriptions" json:"descriptions"`
	CargoKinds   []string   `yaml:"cargo_kinds" json:"cargoKinds"`
	TrailerKinds []string   `yaml:"trailer_kinds" json:"trailerKinds"`
	Value        ValueRange `yaml:"value" json:"value"`
}

type CargoKind struct {
	Key          string   `yaml:"key" json:"key"`
	Name         string   `yaml:"name" json:"name"`
	Description  string   `yaml:"description" json:"description"`
	Oversized    bool     `yaml:"oversized" json:"oversized"`
	Hazardous    bool     `yaml:"hazardous" json:"hazardous"`
	Liquid       bool     `yaml:"liquid" json:"liquid"`
	Refrigerated bool     `yaml:"refrigerated" json:"refrigerated"`
	Trailers     []string `yaml:"trailers" json:"trailers"`
}

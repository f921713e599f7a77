package model

import "fmt"

// Assembly is one building construction element ("Bauteil") from an eLCA
// report: a DIN 276 category, the assembly name and report URL, free-text
// properties, and the ordered material components it is built from.
//
// The report gives no stable key for an assembly beyond (category, name,
// URL); every occurrence is a new record and consumers must not assume
// uniqueness.
type Assembly struct {
	CategoryCode string            `json:"category_code"` // e.g. "331"
	CategoryName string            `json:"category_name"` // e.g. "Tragende Außenwände"
	Subcategory  *string           `json:"subcategory,omitempty"`
	Name         string            `json:"name"` // e.g. "Strohballen - Holz"
	URL          string            `json:"url"`
	Properties   map[string]string `json:"properties,omitempty"` // e.g. "Menge im Gebäude" -> "200,00 m²"
	Components   []Component       `json:"components"`
}

func (a Assembly) String() string {
	return a.CategoryCode + " " + a.CategoryName + " - " + a.Name
}

// Component is one material layer of an assembly. The scraper fills the
// text fields; each optional field is nil when the markup did not carry it,
// which is distinct from present-but-empty. Reconciliation adds the
// XML-sourced fields when a lookup key matches.
type Component struct {
	Category string  `json:"category"` // heading of the enclosing component block
	Number   *string `json:"number,omitempty"`
	Name     *string `json:"name,omitempty"`
	Status   *string `json:"status,omitempty"`
	Quantity *string `json:"quantity,omitempty"`
	Lifetime *string `json:"lifetime,omitempty"`

	Processes []LifecycleProcess `json:"lifecycle_processes,omitempty"`

	// Filled by reconciliation from the XML project export. Thickness is in
	// meters; the remaining fields mirror the source component attributes.
	Thickness         *float64 `json:"thickness,omitempty"`
	SourceElementUUID *string  `json:"source_element_uuid,omitempty"`
	SourceUUID        *string  `json:"source_uuid,omitempty"`
	ProcessConfigUUID *string  `json:"process_config_uuid,omitempty"`
	IsExtant          *bool    `json:"is_extant,omitempty"`
	LifeTimeYears     *float64 `json:"life_time_years,omitempty"`
	LifeTimeDelay     *float64 `json:"life_time_delay,omitempty"`
	LayerPosition     *int     `json:"layer_position,omitempty"`
	LayerAreaRatio    *float64 `json:"layer_area_ratio,omitempty"`
	LayerLength       *float64 `json:"layer_length,omitempty"`
	LayerWidth        *float64 `json:"layer_width,omitempty"`
}

// DisplayName returns the component name or a positional fallback when the
// report carried none.
func (c Component) DisplayName(idx int) string {
	if c.Name != nil && *c.Name != "" {
		return *c.Name
	}
	return fmt.Sprintf("Component_%d", idx)
}

// LifecycleProcess is one phase-specific environmental dataset row attached
// to a component. Leaf data, never merged with the XML export.
type LifecycleProcess struct {
	Phase          string `json:"lifecycle_phase"`
	Ratio          string `json:"ratio"`
	ProcessName    string `json:"process_name"`
	ReferenceValue string `json:"reference_value"`
	UUID           string `json:"uuid"`
}

package geo

import "encoding/json"

// FeatureProperties is the attribute set attached to each map feature.
// Every numeric field is always present, defaulting to 0 when the stored
// column is null, so a strongly-typed frontend schema never sees a missing
// key.
type FeatureProperties struct {
	Code string `json:"code"`
	Name string `json:"name"`
	UF   string `json:"uf"`

	Population int `json:"population"`

	GDPTotal     float64 `json:"pib_total"`
	GDPPerCapita float64 `json:"pib_per_capita"`
	GDPYear      int     `json:"pib_year"`

	TotalCompanies int `json:"total_companies"`
	TotalWorkers   int `json:"total_workers"`
	CompaniesYear  int `json:"companies_year"`
}

// Feature is one GeoJSON feature. Geometry is passed through verbatim from
// ST_AsGeoJSON.
type Feature struct {
	Type       string            `json:"type"`
	Geometry   json.RawMessage   `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// FeatureCollection is the /map payload.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection builds a collection, normalizing nil to an empty
// slice so the JSON always carries a "features" array.
func NewFeatureCollection(features []Feature) *FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return &FeatureCollection{Type: "FeatureCollection", Features: features}
}

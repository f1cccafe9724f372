package ibge

import (
	"encoding/json"

	"github.com/paulmach/orb"
)

// Placeholder values used when the localities hierarchy is incomplete or the
// details fetch fails. The catalog sync carries the canonical names, so these
// only surface when a city is imported before the catalog exists.
const (
	PlaceholderName  = "Desconhecido"
	PlaceholderState = "BR"
)

// CityGeometry is the normalized boundary for one municipality. The code is
// always stamped from the request, never trusted from the mesh response.
type CityGeometry struct {
	Code     string
	Boundary orb.MultiPolygon
}

// CityDetails carries the canonical name and state for a municipality.
type CityDetails struct {
	Name      string
	StateAbbr string
}

// CatalogEntry is one row of the full municipality catalog.
type CatalogEntry struct {
	Code      string
	Name      string
	StateAbbr string
}

// DistrictEntry is one administrative sub-district of a municipality.
type DistrictEntry struct {
	Code string
	Name string
}

// GDPResult is the resolved GDP indicator. Total is in thousands of BRL, the
// unit the aggregate table publishes. Found is false when no year in the
// lookback window had a disclosed value.
type GDPResult struct {
	Total float64
	Year  int
	Found bool
}

// BusinessStats is the resolved business-census pair. Year is the most recent
// year with company-count data; Workers is the worker count for that same
// year (0 when the worker series has no value there). Found is false when the
// company series had no data anywhere in the window.
type BusinessStats struct {
	Companies int
	Workers   int
	Year      int
	Found     bool
}

// Upstream DTOs for the localities API. Every intermediate hierarchy level is
// a pointer: the API returns null for some municipalities (notably Brasília
// and state districts), and the parse must degrade instead of panicking.

type localityMunicipality struct {
	ID           json.Number        `json:"id"`
	Nome         string             `json:"nome"`
	Microrregiao *localityMicro     `json:"microrregiao"`
	RegiaoImed   *localityRegiaoIme `json:"regiao-imediata"`
}

type localityMicro struct {
	Mesorregiao *localityMeso `json:"mesorregiao"`
}

type localityMeso struct {
	UF *localityUF `json:"UF"`
}

type localityRegiaoIme struct {
	RegiaoIntermediaria *localityRegiaoInt `json:"regiao-intermediaria"`
}

type localityRegiaoInt struct {
	UF *localityUF `json:"UF"`
}

type localityUF struct {
	Sigla string `json:"sigla"`
}

type localityDistrict struct {
	ID   json.Number `json:"id"`
	Nome string      `json:"nome"`
}

// stateAbbr walks the territorial hierarchy for a state abbreviation,
// preferring the microregion chain and falling back to the newer
// immediate-region chain, then to the placeholder.
func (m localityMunicipality) stateAbbr() string {
	if m.Microrregiao != nil && m.Microrregiao.Mesorregiao != nil && m.Microrregiao.Mesorregiao.UF != nil {
		if s := m.Microrregiao.Mesorregiao.UF.Sigla; s != "" {
			return s
		}
	}
	if m.RegiaoImed != nil && m.RegiaoImed.RegiaoIntermediaria != nil && m.RegiaoImed.RegiaoIntermediaria.UF != nil {
		if s := m.RegiaoImed.RegiaoIntermediaria.UF.Sigla; s != "" {
			return s
		}
	}
	return PlaceholderState
}

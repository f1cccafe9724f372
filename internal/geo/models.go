package geo

import (
	"time"

	"github.com/google/uuid"
)

// City is the aggregate root: one row per imported municipality, fully
// overwritten on each re-import. The geometry column is written through raw
// PostGIS SQL, never through gorm field assignment.
type City struct {
	ID   uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code string    `gorm:"uniqueIndex;size:7;not null" json:"code"` // 7-digit IBGE code
	Name string    `gorm:"not null" json:"name"`
	UF   string    `gorm:"size:2;not null" json:"uf"`

	Population int `gorm:"default:0" json:"population"`

	// GDP is stored in thousands of BRL as published; per-capita is derived
	// at import time. Year columns are null when the lookback window had no
	// data for the indicator.
	GDPTotal     float64 `gorm:"column:gdp_total;default:0" json:"gdp_total"`
	GDPPerCapita float64 `gorm:"column:gdp_per_capita;default:0" json:"gdp_per_capita"`
	GDPYear      *int    `gorm:"column:gdp_year" json:"gdp_year"`

	TotalCompanies int  `gorm:"default:0" json:"total_companies"`
	TotalWorkers   int  `gorm:"default:0" json:"total_workers"`
	CompaniesYear  *int `json:"companies_year"`

	// Always a MultiPolygon in WGS84; single polygons are wrapped upstream.
	Geom string `gorm:"type:geometry(MultiPolygon,4326)" json:"-"`

	Districts []District `gorm:"foreignKey:CityID;constraint:OnDelete:CASCADE" json:"districts,omitempty"`

	ImportedAt time.Time `json:"imported_at"`
}

func (City) TableName() string {
	return "geo.cities"
}

// District is an administrative sub-district, exclusively owned by one city.
// The whole set is replaced on every import; only the IBGE code is stable
// across imports.
type District struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CityID uuid.UUID `gorm:"type:uuid;index;not null" json:"city_id"`
	Code   string    `gorm:"uniqueIndex;not null" json:"code"`
	Name   string    `gorm:"not null" json:"name"`
}

func (District) TableName() string {
	return "geo.districts"
}

// CityCatalogEntry is the flat autocomplete projection. It carries no
// relation to City on purpose: the catalog covers every municipality in the
// country, imported or not, and is refreshed wholesale.
type CityCatalogEntry struct {
	ID   uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code string    `gorm:"uniqueIndex;size:7;not null" json:"code"`
	Name string    `gorm:"index;not null" json:"name"`

	// SearchName is the accent-folded lowercase form of Name, computed at
	// replace time for accent-insensitive autocomplete matching.
	SearchName string `gorm:"index" json:"-"`

	UF string `gorm:"size:2" json:"uf"`
}

func (CityCatalogEntry) TableName() string {
	return "geo.city_catalog"
}

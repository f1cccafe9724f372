package geo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/paulmach/orb/encoding/wkt"
	"gorm.io/gorm"

	"github.com/AtibaiaGeo/GeoInsights-Backend/internal/etl"
)

// Repository is the persistence gateway for cities, districts and the
// catalog. It implements etl.Store.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository on the given connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// upsertCitySQL fully overwrites every mutable column on conflict — last
// write wins for the whole record, no partial-field merge. The geometry
// expression repairs minor topological defects (ring-orientation issues are
// common in the government mesh data) and guarantees a MultiPolygon column
// value even for single-polygon input.
const upsertCitySQL = `
	INSERT INTO geo.cities
		(code, name, uf, population,
		 gdp_total, gdp_per_capita, gdp_year,
		 total_companies, total_workers, companies_year,
		 geom, imported_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
		ST_Multi(ST_CollectionExtract(ST_MakeValid(ST_GeomFromText(?, 4326)), 3)),
		NOW())
	ON CONFLICT (code) DO UPDATE SET
		name            = EXCLUDED.name,
		uf              = EXCLUDED.uf,
		population      = EXCLUDED.population,
		gdp_total       = EXCLUDED.gdp_total,
		gdp_per_capita  = EXCLUDED.gdp_per_capita,
		gdp_year        = EXCLUDED.gdp_year,
		total_companies = EXCLUDED.total_companies,
		total_workers   = EXCLUDED.total_workers,
		companies_year  = EXCLUDED.companies_year,
		geom            = EXCLUDED.geom,
		imported_at     = EXCLUDED.imported_at
	RETURNING id`

// UpsertCity inserts or overwrites the city record keyed by code and
// replaces its district set, all in one transaction so a concurrent reader
// never observes a city with a missing or doubled district set.
func (r *Repository) UpsertCity(ctx context.Context, rec etl.CityRecord, districts []etl.DistrictRecord) (uuid.UUID, error) {
	geomWKT := wkt.MarshalString(rec.Boundary)

	start := time.Now()
	var cityID uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := tx.Raw(upsertCitySQL,
			rec.Code, rec.Name, rec.UF, rec.Population,
			rec.GDPTotal, rec.GDPPerCapita, rec.GDPYear,
			rec.TotalCompanies, rec.TotalWorkers, rec.CompaniesYear,
			geomWKT,
		).Row()
		if err := row.Scan(&cityID); err != nil {
			return fmt.Errorf("upsert city %s: %w", rec.Code, err)
		}

		// Full replace: delete everything owned by this city, then insert
		// the fresh set. No diffing, no orphans.
		if err := tx.Where("city_id = ?", cityID).Delete(&District{}).Error; err != nil {
			return fmt.Errorf("clear districts for %s: %w", rec.Code, err)
		}
		if len(districts) > 0 {
			rows := make([]District, 0, len(districts))
			for _, d := range districts {
				rows = append(rows, District{
					ID:     uuid.New(),
					CityID: cityID,
					Code:   d.Code,
					Name:   d.Name,
				})
			}
			if err := tx.CreateInBatches(&rows, 200).Error; err != nil {
				return fmt.Errorf("insert districts for %s: %w", rec.Code, err)
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	log.Printf("[repo] upserted city %s with %d districts in %dms",
		rec.Code, len(districts), time.Since(start).Milliseconds())
	return cityID, nil
}

// ReplaceCatalog refreshes the whole catalog table: delete-all then bulk
// insert, inside one transaction so there is no visible empty-catalog
// window. An empty input leaves the existing catalog untouched — replacing
// good data with nothing is never acceptable.
func (r *Repository) ReplaceCatalog(ctx context.Context, entries []etl.CatalogRow) error {
	if len(entries) == 0 {
		log.Printf("[repo] refusing catalog replace with 0 entries; existing catalog preserved")
		return nil
	}

	rows := make([]CityCatalogEntry, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, CityCatalogEntry{
			ID:         uuid.New(),
			Code:       e.Code,
			Name:       e.Name,
			SearchName: SearchKey(e.Name),
			UF:         e.UF,
		})
	}

	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM geo.city_catalog`).Error; err != nil {
			return fmt.Errorf("clear catalog: %w", err)
		}
		if err := tx.CreateInBatches(&rows, 500).Error; err != nil {
			return fmt.Errorf("insert catalog: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[repo] replaced catalog with %d entries in %dms",
		len(rows), time.Since(start).Milliseconds())
	return nil
}

// ListFeatures projects every stored city (or the given subset of codes)
// into GeoJSON features. Null numeric columns project as 0 so the feature
// properties schema is always fully populated.
func (r *Repository) ListFeatures(ctx context.Context, codes []string) (*FeatureCollection, error) {
	query := `
		SELECT code, name, uf,
			COALESCE(population, 0),
			COALESCE(gdp_total, 0),
			COALESCE(gdp_per_capita, 0),
			gdp_year,
			COALESCE(total_companies, 0),
			COALESCE(total_workers, 0),
			companies_year,
			ST_AsGeoJSON(geom)
		FROM geo.cities`
	args := []interface{}{}
	if len(codes) > 0 {
		query += ` WHERE code = ANY(?)`
		args = append(args, pq.Array(codes))
	}
	query += ` ORDER BY name`

	rows, err := r.db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, fmt.Errorf("list features: %w", err)
	}
	defer rows.Close()

	var features []Feature
	for rows.Next() {
		var (
			props    FeatureProperties
			gdpYear  sql.NullInt64
			compYear sql.NullInt64
			geomJSON sql.NullString
		)
		if err := rows.Scan(
			&props.Code, &props.Name, &props.UF,
			&props.Population,
			&props.GDPTotal, &props.GDPPerCapita, &gdpYear,
			&props.TotalCompanies, &props.TotalWorkers, &compYear,
			&geomJSON,
		); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		props.GDPYear = int(gdpYear.Int64)
		props.CompaniesYear = int(compYear.Int64)

		geometry := json.RawMessage(`null`)
		if geomJSON.Valid {
			geometry = json.RawMessage(geomJSON.String)
		}
		features = append(features, Feature{
			Type:       "Feature",
			Geometry:   geometry,
			Properties: props,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate features: %w", err)
	}

	return NewFeatureCollection(features), nil
}

// ListCatalog searches the autocomplete catalog, accent-insensitively, and
// returns at most limit entries.
func (r *Repository) ListCatalog(ctx context.Context, search string, limit int) ([]CityCatalogEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	q := r.db.WithContext(ctx).Model(&CityCatalogEntry{}).Order("name").Limit(limit)
	if search != "" {
		q = q.Where("search_name LIKE ?", "%"+SearchKey(search)+"%")
	}

	var entries []CityCatalogEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	return entries, nil
}

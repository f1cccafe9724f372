package etl

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/AtibaiaGeo/GeoInsights-Backend/internal/ibge"
)

// ErrCityNotFound is returned when no boundary exists for the requested
// code. Geometry anchors the record's identity: every other indicator may
// legitimately be unknown, but a city without a locatable boundary is not
// importable.
var ErrCityNotFound = errors.New("city not found")

// GeometryResolver fetches a municipality's normalized boundary.
type GeometryResolver interface {
	FetchCityGeometry(ctx context.Context, cityCode string) (*ibge.CityGeometry, error)
}

// DemographicsResolver fetches population, canonical details and the catalog.
type DemographicsResolver interface {
	FetchPopulation(ctx context.Context, cityCode string) (int, error)
	FetchCityDetails(ctx context.Context, cityCode string) (ibge.CityDetails, error)
	FetchAllMunicipalities(ctx context.Context) ([]ibge.CatalogEntry, error)
}

// EconomicsResolver fetches GDP and business-census indicators.
type EconomicsResolver interface {
	FetchGDP(ctx context.Context, cityCode string) (ibge.GDPResult, error)
	FetchBusinessStats(ctx context.Context, cityCode string) (ibge.BusinessStats, error)
}

// TopologyResolver fetches a municipality's sub-districts.
type TopologyResolver interface {
	FetchDistricts(ctx context.Context, cityCode string) ([]ibge.DistrictEntry, error)
}

// CityRecord is the fully reconciled, denormalized record handed to the
// persistence gateway. Year pointers are nil when no year in the lookback
// window had data for the indicator.
type CityRecord struct {
	Code           string           `json:"code"`
	Name           string           `json:"name"`
	UF             string           `json:"uf"`
	Population     int              `json:"population"`
	GDPTotal       float64          `json:"gdp_total"`
	GDPPerCapita   float64          `json:"gdp_per_capita"`
	GDPYear        *int             `json:"gdp_year"`
	TotalCompanies int              `json:"total_companies"`
	TotalWorkers   int              `json:"total_workers"`
	CompaniesYear  *int             `json:"companies_year"`
	Boundary       orb.MultiPolygon `json:"-"`
}

// DistrictRecord is one sub-district to persist under a city.
type DistrictRecord struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// CatalogRow is one catalog entry to persist during a full refresh.
type CatalogRow struct {
	Code string `json:"code"`
	Name string `json:"name"`
	UF   string `json:"uf"`
}

// Store is the persistence gateway the orchestrator delegates to.
type Store interface {
	// UpsertCity inserts or fully overwrites the city keyed by code and
	// replaces its district set, in one transaction.
	UpsertCity(ctx context.Context, rec CityRecord, districts []DistrictRecord) (uuid.UUID, error)

	// ReplaceCatalog refreshes the whole catalog table. Implementations
	// must leave existing rows untouched when entries is empty.
	ReplaceCatalog(ctx context.Context, entries []CatalogRow) error
}

// ImportResult is the outcome of one city import.
type ImportResult struct {
	Status string     `json:"status"`
	City   string     `json:"city"`
	Data   CityRecord `json:"data"`
}

// SyncResult is the outcome of a catalog sync.
type SyncResult struct {
	Status  string `json:"status"`
	Total   int    `json:"total,omitempty"`
	Message string `json:"message,omitempty"`
}

// Orchestrator drives the fan-out to the four resolvers, merges their
// results into one record and delegates persistence. All collaborators are
// injected; the orchestrator holds no ambient state.
type Orchestrator struct {
	geometry     GeometryResolver
	demographics DemographicsResolver
	economics    EconomicsResolver
	topology     TopologyResolver
	store        Store
}

// NewOrchestrator wires an orchestrator from its collaborators.
func NewOrchestrator(g GeometryResolver, d DemographicsResolver, e EconomicsResolver, t TopologyResolver, store Store) *Orchestrator {
	return &Orchestrator{
		geometry:     g,
		demographics: d,
		economics:    e,
		topology:     t,
		store:        store,
	}
}

// ImportCity runs the full reconciliation for one municipality and persists
// the result. Geometry is resolved first and gates the import; the remaining
// four fetches are independent and run concurrently, each degrading to its
// documented default on failure. Nothing is written until every stage has
// resolved, so an aborted import leaves no partial state.
func (o *Orchestrator) ImportCity(ctx context.Context, cityCode string) (*ImportResult, error) {
	geom, err := o.geometry.FetchCityGeometry(ctx, cityCode)
	if err != nil {
		log.Printf("[etl] geometry fetch failed for %s: %v", cityCode, err)
		return nil, fmt.Errorf("%w: %s", ErrCityNotFound, cityCode)
	}
	if geom == nil {
		return nil, fmt.Errorf("%w: %s", ErrCityNotFound, cityCode)
	}

	var (
		details    ibge.CityDetails
		population int
		gdp        ibge.GDPResult
		business   ibge.BusinessStats
		districts  []ibge.DistrictEntry
	)

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		var err error
		if details, err = o.demographics.FetchCityDetails(ctx, cityCode); err != nil {
			log.Printf("[etl] city details degraded for %s: %v", cityCode, err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if population, err = o.demographics.FetchPopulation(ctx, cityCode); err != nil {
			log.Printf("[etl] population degraded for %s: %v", cityCode, err)
			population = 0
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if gdp, err = o.economics.FetchGDP(ctx, cityCode); err != nil {
			log.Printf("[etl] gdp degraded for %s: %v", cityCode, err)
			gdp = ibge.GDPResult{}
		}
		var berr error
		if business, berr = o.economics.FetchBusinessStats(ctx, cityCode); berr != nil {
			log.Printf("[etl] business stats degraded for %s: %v", cityCode, berr)
			business = ibge.BusinessStats{}
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if districts, err = o.topology.FetchDistricts(ctx, cityCode); err != nil {
			log.Printf("[etl] districts degraded for %s: %v", cityCode, err)
			districts = nil
		}
	}()
	wg.Wait()

	if details.Name == "" {
		details = ibge.CityDetails{Name: ibge.PlaceholderName, StateAbbr: ibge.PlaceholderState}
	}

	rec := CityRecord{
		Code:           cityCode,
		Name:           details.Name,
		UF:             details.StateAbbr,
		Population:     population,
		GDPTotal:       gdp.Total,
		GDPPerCapita:   PerCapita(gdp.Total, population),
		TotalCompanies: business.Companies,
		TotalWorkers:   business.Workers,
		Boundary:       geom.Boundary,
	}
	if gdp.Found {
		year := gdp.Year
		rec.GDPYear = &year
	}
	if business.Found {
		year := business.Year
		rec.CompaniesYear = &year
	}

	districtRecs := make([]DistrictRecord, 0, len(districts))
	for _, d := range districts {
		districtRecs = append(districtRecs, DistrictRecord{Code: d.Code, Name: d.Name})
	}

	id, err := o.store.UpsertCity(ctx, rec, districtRecs)
	if err != nil {
		return nil, fmt.Errorf("persist city %s: %w", cityCode, err)
	}
	log.Printf("[etl] imported city %s (%s/%s) id=%s districts=%d", cityCode, rec.Name, rec.UF, id, len(districtRecs))

	return &ImportResult{Status: "success", City: cityCode, Data: rec}, nil
}

// SyncCatalog refreshes the municipality catalog. An empty or failed bulk
// fetch aborts without touching the stored catalog and reports a warning
// instead of an error: the operation is expected to be retried later.
func (o *Orchestrator) SyncCatalog(ctx context.Context) (*SyncResult, error) {
	entries, err := o.demographics.FetchAllMunicipalities(ctx)
	if err != nil {
		log.Printf("[etl] catalog fetch failed: %v", err)
		entries = nil
	}
	if len(entries) == 0 {
		return &SyncResult{
			Status:  "warning",
			Message: "municipality catalog fetch returned no entries; existing catalog preserved",
		}, nil
	}

	rows := make([]CatalogRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, CatalogRow{Code: e.Code, Name: e.Name, UF: e.StateAbbr})
	}

	if err := o.store.ReplaceCatalog(ctx, rows); err != nil {
		return nil, fmt.Errorf("replace catalog: %w", err)
	}
	return &SyncResult{Status: "success", Total: len(rows)}, nil
}

// PerCapita derives GDP per capita. The aggregate table publishes GDP in
// thousands of BRL while population is a head count, hence the unit
// conversion before dividing. A zero population yields zero.
func PerCapita(gdpTotalThousands float64, population int) float64 {
	if population <= 0 {
		return 0
	}
	return gdpTotalThousands * 1000 / float64(population)
}

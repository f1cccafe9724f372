package etl_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/AtibaiaGeo/GeoInsights-Backend/internal/etl"
	"github.com/AtibaiaGeo/GeoInsights-Backend/internal/ibge"
)

// Fakes implementing the orchestrator's collaborator interfaces without any
// network or database dependency.

type fakeGeometry struct {
	geom *ibge.CityGeometry
	err  error
}

func (f fakeGeometry) FetchCityGeometry(ctx context.Context, code string) (*ibge.CityGeometry, error) {
	return f.geom, f.err
}

type fakeDemographics struct {
	population    int
	populationErr error
	details       ibge.CityDetails
	detailsErr    error
	catalog       []ibge.CatalogEntry
	catalogErr    error
}

func (f fakeDemographics) FetchPopulation(ctx context.Context, code string) (int, error) {
	return f.population, f.populationErr
}

func (f fakeDemographics) FetchCityDetails(ctx context.Context, code string) (ibge.CityDetails, error) {
	return f.details, f.detailsErr
}

func (f fakeDemographics) FetchAllMunicipalities(ctx context.Context) ([]ibge.CatalogEntry, error) {
	return f.catalog, f.catalogErr
}

type fakeEconomics struct {
	gdp      ibge.GDPResult
	gdpErr   error
	stats    ibge.BusinessStats
	statsErr error
}

func (f fakeEconomics) FetchGDP(ctx context.Context, code string) (ibge.GDPResult, error) {
	return f.gdp, f.gdpErr
}

func (f fakeEconomics) FetchBusinessStats(ctx context.Context, code string) (ibge.BusinessStats, error) {
	return f.stats, f.statsErr
}

type fakeTopology struct {
	districts []ibge.DistrictEntry
	err       error
}

func (f fakeTopology) FetchDistricts(ctx context.Context, code string) ([]ibge.DistrictEntry, error) {
	return f.districts, f.err
}

// recordingStore captures what the orchestrator asked to persist.
type recordingStore struct {
	upserted     *etl.CityRecord
	districts    []etl.DistrictRecord
	catalog      []etl.CatalogRow
	catalogCalls int
	upsertErr    error
	replaceErr   error
}

func (s *recordingStore) UpsertCity(ctx context.Context, rec etl.CityRecord, districts []etl.DistrictRecord) (uuid.UUID, error) {
	if s.upsertErr != nil {
		return uuid.Nil, s.upsertErr
	}
	s.upserted = &rec
	s.districts = districts
	return uuid.New(), nil
}

func (s *recordingStore) ReplaceCatalog(ctx context.Context, entries []etl.CatalogRow) error {
	s.catalogCalls++
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.catalog = entries
	return nil
}

func boundary() orb.MultiPolygon {
	return orb.MultiPolygon{{{{-46.7, -23.2}, {-46.5, -23.2}, {-46.5, -23.0}, {-46.7, -23.2}}}}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPerCapita(t *testing.T) {
	// GDP is published in thousands, population is a head count.
	if got := etl.PerCapita(50000.0, 3200); !almostEqual(got, 15625.0) {
		t.Errorf("expected 15625.0, got %v", got)
	}
	if got := etl.PerCapita(50000.0, 0); got != 0 {
		t.Errorf("expected 0 for zero population, got %v", got)
	}
	if got := etl.PerCapita(0, 1000); got != 0 {
		t.Errorf("expected 0 for zero GDP, got %v", got)
	}
}

func TestImportCity_FullScenario(t *testing.T) {
	store := &recordingStore{}
	o := etl.NewOrchestrator(
		fakeGeometry{geom: &ibge.CityGeometry{Code: "3504107", Boundary: boundary()}},
		fakeDemographics{population: 45000, details: ibge.CityDetails{Name: "Atibaia", StateAbbr: "SP"}},
		fakeEconomics{
			gdp:   ibge.GDPResult{Total: 900000.0, Year: 2021, Found: true},
			stats: ibge.BusinessStats{Companies: 2500, Workers: 18000, Year: 2022, Found: true},
		},
		fakeTopology{},
		store,
	)

	result, err := o.ImportCity(context.Background(), "3504107")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != "success" || result.City != "3504107" {
		t.Errorf("unexpected result header: %+v", result)
	}

	rec := store.upserted
	if rec == nil {
		t.Fatal("expected a persisted record")
	}
	if rec.Name != "Atibaia" || rec.UF != "SP" || rec.Population != 45000 {
		t.Errorf("unexpected identity fields: %+v", rec)
	}
	if !almostEqual(rec.GDPPerCapita, 20000.0) {
		t.Errorf("expected gdp_per_capita 20000.0, got %v", rec.GDPPerCapita)
	}
	if rec.GDPYear == nil || *rec.GDPYear != 2021 {
		t.Errorf("expected gdp_year 2021, got %v", rec.GDPYear)
	}
	if rec.CompaniesYear == nil || *rec.CompaniesYear != 2022 {
		t.Errorf("expected companies_year 2022, got %v", rec.CompaniesYear)
	}
	if len(store.districts) != 0 {
		t.Errorf("expected zero districts, got %d", len(store.districts))
	}
	if store.catalogCalls != 0 {
		t.Error("import must not touch the catalog")
	}
}

func TestImportCity_MissingGeometryAborts(t *testing.T) {
	store := &recordingStore{}
	o := etl.NewOrchestrator(
		fakeGeometry{geom: nil},
		fakeDemographics{population: 1000},
		fakeEconomics{},
		fakeTopology{},
		store,
	)

	_, err := o.ImportCity(context.Background(), "9999999")
	if !errors.Is(err, etl.ErrCityNotFound) {
		t.Fatalf("expected ErrCityNotFound, got %v", err)
	}
	if store.upserted != nil {
		t.Error("nothing may be persisted when geometry is absent")
	}
}

func TestImportCity_GeometryTransportFailureAborts(t *testing.T) {
	store := &recordingStore{}
	o := etl.NewOrchestrator(
		fakeGeometry{err: errors.New("connection refused")},
		fakeDemographics{},
		fakeEconomics{},
		fakeTopology{},
		store,
	)

	_, err := o.ImportCity(context.Background(), "3504107")
	if !errors.Is(err, etl.ErrCityNotFound) {
		t.Fatalf("expected ErrCityNotFound, got %v", err)
	}
	if store.upserted != nil {
		t.Error("nothing may be persisted when geometry cannot be fetched")
	}
}

func TestImportCity_DegradedResolversStillImport(t *testing.T) {
	// Every non-geometry resolver fails; the city must still import with
	// documented defaults.
	store := &recordingStore{}
	o := etl.NewOrchestrator(
		fakeGeometry{geom: &ibge.CityGeometry{Code: "3504107", Boundary: boundary()}},
		fakeDemographics{
			populationErr: errors.New("timeout"),
			detailsErr:    errors.New("timeout"),
			details:       ibge.CityDetails{Name: ibge.PlaceholderName, StateAbbr: ibge.PlaceholderState},
		},
		fakeEconomics{gdpErr: errors.New("timeout"), statsErr: errors.New("timeout")},
		fakeTopology{err: errors.New("timeout")},
		store,
	)

	result, err := o.ImportCity(context.Background(), "3504107")
	if err != nil {
		t.Fatalf("degraded import must succeed, got: %v", err)
	}

	rec := result.Data
	if rec.Name != ibge.PlaceholderName || rec.UF != ibge.PlaceholderState {
		t.Errorf("expected placeholder identity, got %s/%s", rec.Name, rec.UF)
	}
	if rec.Population != 0 || rec.GDPTotal != 0 || rec.GDPPerCapita != 0 {
		t.Errorf("expected zeroed indicators, got %+v", rec)
	}
	if rec.GDPYear != nil || rec.CompaniesYear != nil {
		t.Errorf("expected absent years, got gdp=%v companies=%v", rec.GDPYear, rec.CompaniesYear)
	}
	if len(store.districts) != 0 {
		t.Errorf("expected empty district set, got %d", len(store.districts))
	}
}

func TestImportCity_DistrictsPassedThrough(t *testing.T) {
	store := &recordingStore{}
	o := etl.NewOrchestrator(
		fakeGeometry{geom: &ibge.CityGeometry{Code: "3504107", Boundary: boundary()}},
		fakeDemographics{details: ibge.CityDetails{Name: "Atibaia", StateAbbr: "SP"}},
		fakeEconomics{},
		fakeTopology{districts: []ibge.DistrictEntry{
			{Code: "350410705", Name: "Atibaia"},
			{Code: "350410710", Name: "Caetetuba"},
		}},
		store,
	)

	if _, err := o.ImportCity(context.Background(), "3504107"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.districts) != 2 {
		t.Fatalf("expected 2 districts, got %d", len(store.districts))
	}
	if store.districts[1].Code != "350410710" {
		t.Errorf("unexpected district: %+v", store.districts[1])
	}
}

func TestSyncCatalog_Success(t *testing.T) {
	store := &recordingStore{}
	o := etl.NewOrchestrator(fakeGeometry{}, fakeDemographics{catalog: []ibge.CatalogEntry{
		{Code: "3504107", Name: "Atibaia", StateAbbr: "SP"},
		{Code: "3550308", Name: "São Paulo", StateAbbr: "SP"},
	}}, fakeEconomics{}, fakeTopology{}, store)

	result, err := o.SyncCatalog(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != "success" || result.Total != 2 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(store.catalog) != 2 {
		t.Errorf("expected 2 stored rows, got %d", len(store.catalog))
	}
}

func TestSyncCatalog_EmptyFetchPreservesCatalog(t *testing.T) {
	store := &recordingStore{}
	o := etl.NewOrchestrator(fakeGeometry{}, fakeDemographics{catalog: nil}, fakeEconomics{}, fakeTopology{}, store)

	result, err := o.SyncCatalog(context.Background())
	if err != nil {
		t.Fatalf("empty fetch must be a warning, not an error: %v", err)
	}
	if result.Status != "warning" {
		t.Errorf("expected warning status, got %q", result.Status)
	}
	if store.catalogCalls != 0 {
		t.Error("the store must not be touched on an empty fetch")
	}
}

func TestSyncCatalog_TransportFailurePreservesCatalog(t *testing.T) {
	store := &recordingStore{}
	o := etl.NewOrchestrator(fakeGeometry{}, fakeDemographics{catalogErr: errors.New("timeout")}, fakeEconomics{}, fakeTopology{}, store)

	result, err := o.SyncCatalog(context.Background())
	if err != nil {
		t.Fatalf("bulk failure must be a warning, not an error: %v", err)
	}
	if result.Status != "warning" {
		t.Errorf("expected warning status, got %q", result.Status)
	}
	if store.catalogCalls != 0 {
		t.Error("the store must not be touched on a failed fetch")
	}
}

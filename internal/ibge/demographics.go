package ibge

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/text/unicode/norm"
)

const demographicsSource = "ibge-localidades"

// Population comes from the 2022 census aggregate: table 4714, variable 93.
const (
	populationTable    = "4714"
	populationVariable = "93"
	populationPeriod   = "2022"
)

// DemographicsService resolves population, canonical city details and the
// full municipality catalog from the localities and aggregates APIs.
type DemographicsService struct {
	client *Client
}

// NewDemographicsService creates a demographics resolver on the shared client.
func NewDemographicsService(c *Client) *DemographicsService {
	return &DemographicsService{client: c}
}

// FetchPopulation returns the resident population for one municipality.
// Suppressed or missing values resolve to 0; only a transport-level failure
// is returned as an error.
func (s *DemographicsService) FetchPopulation(ctx context.Context, cityCode string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	reqURL := s.client.aggregateURL(populationTable, populationPeriod, populationVariable, cityCode, "")

	var vars []aggregateVariable
	status, err := s.client.getJSON(ctx, demographicsSource, reqURL, &vars)
	if err != nil {
		if status == 0 {
			return 0, err
		}
		return 0, nil
	}
	if status != 200 || len(vars) == 0 {
		return 0, nil
	}

	val, ok := seriesValue(vars[0].serie(), populationPeriod)
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		LogError(demographicsSource, "parse population", fmt.Errorf("value %q for %s", val, cityCode))
		return 0, nil
	}
	return n, nil
}

// FetchCityDetails returns the canonical name and state abbreviation for a
// municipality. The territorial hierarchy in the response may be missing at
// any level; incomplete responses degrade to placeholder values.
func (s *DemographicsService) FetchCityDetails(ctx context.Context, cityCode string) (CityDetails, error) {
	placeholder := CityDetails{Name: PlaceholderName, StateAbbr: PlaceholderState}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	reqURL := fmt.Sprintf("%s/municipios/%s", s.client.localitiesBaseURL, url.PathEscape(cityCode))

	var m localityMunicipality
	status, err := s.client.getJSON(ctx, demographicsSource, reqURL, &m)
	if err != nil {
		if status == 0 {
			return placeholder, err
		}
		return placeholder, nil
	}
	if status != 200 || m.Nome == "" {
		return placeholder, nil
	}

	return CityDetails{
		Name:      norm.NFC.String(m.Nome),
		StateAbbr: m.stateAbbr(),
	}, nil
}

// FetchAllMunicipalities downloads the full municipality catalog (~5,570
// entries). Individually malformed entries are skipped and logged; a failure
// of the bulk request itself is an error so the caller can abort the catalog
// sync instead of replacing good data with nothing.
func (s *DemographicsService) FetchAllMunicipalities(ctx context.Context) ([]CatalogEntry, error) {
	// The catalog payload is large; give it the widest deadline.
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	reqURL := s.client.localitiesBaseURL + "/municipios"

	var raw []localityMunicipality
	status, err := s.client.getJSON(ctx, demographicsSource, reqURL, &raw)
	if err != nil {
		return nil, err
	}
	if status != 200 {
		return nil, fmt.Errorf("catalog fetch: status %d", status)
	}

	entries := make([]CatalogEntry, 0, len(raw))
	for _, m := range raw {
		code := m.ID.String()
		if code == "" || m.Nome == "" {
			LogSkip(demographicsSource, code, "missing id or name")
			continue
		}
		entries = append(entries, CatalogEntry{
			Code:      code,
			Name:      norm.NFC.String(m.Nome),
			StateAbbr: m.stateAbbr(),
		})
	}

	return entries, nil
}

package ibge

import (
	"context"
	"strconv"
	"strings"
	"time"
)

const economicsSource = "ibge-agregados"

// GDP: table 5938, variable 37 (total GDP at current prices, thousands of
// BRL). Business census (CEMPRE): table 1685, variables 153 (local units)
// and 154 (total employed). Classification 12762[0] filters to the
// all-activities total, which some publication years require explicitly.
const (
	gdpTable    = "5938"
	gdpVariable = "37"

	censusTable          = "1685"
	censusCompaniesVar   = "153"
	censusWorkersVar     = "154"
	censusVariables      = censusCompaniesVar + "|" + censusWorkersVar
	censusTotalsCategory = "12762[0]"
)

// Lookback windows, most recent first. The two tables publish on independent
// calendars, so each indicator resolves its own as-of year.
var (
	gdpYears    = []string{"2021", "2020", "2019", "2018", "2017", "2016"}
	censusYears = []string{"2022", "2021", "2020", "2019", "2018", "2017"}
)

// EconomicsService resolves GDP and business-census indicators.
type EconomicsService struct {
	client *Client
}

// NewEconomicsService creates an economics resolver on the shared client.
func NewEconomicsService(c *Client) *EconomicsService {
	return &EconomicsService{client: c}
}

// FetchGDP returns the most recent disclosed GDP value within the lookback
// window, together with its publication year. A result with Found=false
// means no year in the window had data.
func (s *EconomicsService) FetchGDP(ctx context.Context, cityCode string) (GDPResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	reqURL := s.client.aggregateURL(gdpTable, strings.Join(gdpYears, "|"), gdpVariable, cityCode, "")

	var vars []aggregateVariable
	status, err := s.client.getJSON(ctx, economicsSource, reqURL, &vars)
	if err != nil {
		if status == 0 {
			return GDPResult{}, err
		}
		return GDPResult{}, nil
	}
	if status != 200 || len(vars) == 0 {
		return GDPResult{}, nil
	}

	val, year, ok := latestValue(vars[0].serie(), gdpYears)
	if !ok {
		return GDPResult{}, nil
	}
	total, err := strconv.ParseFloat(val, 64)
	if err != nil {
		LogError(economicsSource, "parse gdp", err)
		return GDPResult{}, nil
	}

	return GDPResult{Total: total, Year: year, Found: true}, nil
}

// FetchBusinessStats returns the business-census pair for the most recent
// year in which the company-count series has data. The worker count is taken
// from that same year so the pair describes one reporting year; a worker
// value in a different year is discarded.
//
// The unqualified query is tried first; if it yields no company data the
// classification-qualified variant is retried, since some publication years
// only answer with an explicit category filter.
func (s *EconomicsService) FetchBusinessStats(ctx context.Context, cityCode string) (BusinessStats, error) {
	stats, err := s.fetchCensus(ctx, cityCode, "")
	if err != nil {
		return BusinessStats{}, err
	}
	if stats.Found {
		return stats, nil
	}

	return s.fetchCensus(ctx, cityCode, censusTotalsCategory)
}

func (s *EconomicsService) fetchCensus(ctx context.Context, cityCode, classification string) (BusinessStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	reqURL := s.client.aggregateURL(censusTable, strings.Join(censusYears, "|"), censusVariables, cityCode, classification)

	var vars []aggregateVariable
	status, err := s.client.getJSON(ctx, economicsSource, reqURL, &vars)
	if err != nil {
		if status == 0 {
			return BusinessStats{}, err
		}
		return BusinessStats{}, nil
	}
	if status != 200 {
		return BusinessStats{}, nil
	}

	var companies, workers map[string]string
	for _, v := range vars {
		switch v.ID.String() {
		case censusCompaniesVar:
			companies = v.serie()
		case censusWorkersVar:
			workers = v.serie()
		}
	}

	// The company series anchors the reporting year.
	val, year, ok := latestValue(companies, censusYears)
	if !ok {
		return BusinessStats{}, nil
	}
	companyCount, err := strconv.Atoi(val)
	if err != nil {
		LogError(economicsSource, "parse company count", err)
		return BusinessStats{}, nil
	}

	workerCount := 0
	if wv, has := seriesValue(workers, strconv.Itoa(year)); has {
		if n, err := strconv.Atoi(wv); err == nil {
			workerCount = n
		}
	}

	return BusinessStats{
		Companies: companyCount,
		Workers:   workerCount,
		Year:      year,
		Found:     true,
	}, nil
}

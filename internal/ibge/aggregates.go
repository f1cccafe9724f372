package ibge

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DTOs for the aggregates (SIDRA) API. The response is one element per
// requested variable, each carrying a year→value series keyed by period:
//
//	[{"id":"37","resultados":[{"series":[{"serie":{"2021":"900000"}}]}]}]

type aggregateVariable struct {
	ID         json.Number       `json:"id"`
	Resultados []aggregateResult `json:"resultados"`
}

type aggregateResult struct {
	Series []aggregateSeries `json:"series"`
}

type aggregateSeries struct {
	Serie map[string]string `json:"serie"`
}

// serie returns the first year→value map of the variable, or nil when the
// nested structure is empty at any level.
func (v aggregateVariable) serie() map[string]string {
	for _, r := range v.Resultados {
		for _, s := range r.Series {
			if len(s.Serie) > 0 {
				return s.Serie
			}
		}
	}
	return nil
}

// Sentinels the agency uses for suppressed or not-applicable values. These
// mean "no data", never zero economic activity.
var sentinels = map[string]struct{}{
	"":    {},
	"-":   {},
	"..":  {},
	"...": {},
	"X":   {},
}

// seriesValue returns the value for year and whether it is a real,
// non-sentinel value.
func seriesValue(serie map[string]string, year string) (string, bool) {
	v, ok := serie[year]
	if !ok {
		return "", false
	}
	if _, sentinel := sentinels[strings.TrimSpace(v)]; sentinel {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// latestValue scans the candidate years most-recent-first and returns the
// first non-sentinel value with its year. Different tables publish on
// different calendars, so "most recent with data" is resolved per indicator.
func latestValue(serie map[string]string, years []string) (value string, year int, ok bool) {
	for _, y := range years {
		v, has := seriesValue(serie, y)
		if !has {
			continue
		}
		yr, err := strconv.Atoi(y)
		if err != nil {
			continue
		}
		return v, yr, true
	}
	return "", 0, false
}

// aggregateURL builds an aggregates API query for one municipality (level N6).
// classification is optional.
func (c *Client) aggregateURL(table, periods, variables, cityCode, classification string) string {
	u := fmt.Sprintf("%s/%s/periodos/%s/variaveis/%s?localidades=%s",
		c.aggregatesBaseURL, table, periods, variables,
		url.QueryEscape(fmt.Sprintf("N6[%s]", cityCode)))
	if classification != "" {
		u += "&classificacao=" + url.QueryEscape(classification)
	}
	return u
}

package ibge

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const geometrySource = "ibge-malhas"

// GeometryService resolves municipal boundary polygons from the mesh API.
type GeometryService struct {
	client *Client
}

// NewGeometryService creates a geometry resolver on the shared client.
func NewGeometryService(c *Client) *GeometryService {
	return &GeometryService{client: c}
}

// FetchCityGeometry downloads the boundary of one municipality at the minimal
// quality tier and normalizes it to a multi-polygon.
//
// A nil result with nil error means the mesh has no boundary for the code —
// a business-valid absence, not a fault. An error is returned only when the
// request itself could not complete.
func (s *GeometryService) FetchCityGeometry(ctx context.Context, cityCode string) (*CityGeometry, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	reqURL := fmt.Sprintf("%s/%s?formato=%s&qualidade=minima",
		s.client.meshBaseURL, url.PathEscape(cityCode),
		url.QueryEscape("application/vnd.geo+json"))

	var fc geojson.FeatureCollection
	status, err := s.client.getJSON(ctx, geometrySource, reqURL, &fc)
	if err != nil {
		if status == 0 {
			return nil, err
		}
		// Unparsable body: treat as absent, same as a non-success status.
		LogError(geometrySource, "parse", err)
		return nil, nil
	}
	if status != 200 {
		return nil, nil
	}

	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		mp, ok := NormalizeMultiPolygon(f.Geometry)
		if !ok {
			continue
		}
		// The mesh response often omits the municipality code from the
		// feature properties; stamp it so the merge key always exists.
		return &CityGeometry{Code: cityCode, Boundary: mp}, nil
	}

	return nil, nil
}

// NormalizeMultiPolygon coerces a GeoJSON geometry into a multi-polygon.
// Single polygons are wrapped; an existing multi-polygon passes through
// unchanged, so the operation is idempotent. Non-polygonal geometries are
// rejected.
func NormalizeMultiPolygon(g orb.Geometry) (orb.MultiPolygon, bool) {
	switch geom := g.(type) {
	case orb.Polygon:
		return orb.MultiPolygon{geom}, true
	case orb.MultiPolygon:
		return geom, true
	default:
		return nil, false
	}
}

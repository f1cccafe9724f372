package ibge

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/text/unicode/norm"
)

const topologySource = "ibge-distritos"

// TopologyService resolves the administrative sub-districts of a municipality.
type TopologyService struct {
	client *Client
}

// NewTopologyService creates a topology resolver on the shared client.
func NewTopologyService(c *Client) *TopologyService {
	return &TopologyService{client: c}
}

// FetchDistricts lists the districts of one municipality. A non-success
// status yields an empty list, consistent with absence being business-valid.
func (s *TopologyService) FetchDistricts(ctx context.Context, cityCode string) ([]DistrictEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	reqURL := fmt.Sprintf("%s/municipios/%s/distritos", s.client.localitiesBaseURL, url.PathEscape(cityCode))

	var raw []localityDistrict
	status, err := s.client.getJSON(ctx, topologySource, reqURL, &raw)
	if err != nil {
		if status == 0 {
			return nil, err
		}
		return nil, nil
	}
	if status != 200 {
		return nil, nil
	}

	entries := make([]DistrictEntry, 0, len(raw))
	for _, d := range raw {
		code := d.ID.String()
		if code == "" || d.Nome == "" {
			LogSkip(topologySource, code, "missing id or name")
			continue
		}
		entries = append(entries, DistrictEntry{Code: code, Name: norm.NFC.String(d.Nome)})
	}
	return entries, nil
}

package ibge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchDistricts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/municipios/3504107/distritos" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[
			{"id": 350410705, "nome": "Atibaia"},
			{"id": 350410710, "nome": "Caetetuba"}
		]`))
	}))
	defer srv.Close()

	svc := NewTopologyService(testClient(srv.URL))
	districts, err := svc.FetchDistricts(context.Background(), "3504107")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(districts) != 2 {
		t.Fatalf("expected 2 districts, got %d", len(districts))
	}
	if districts[0].Code != "350410705" || districts[0].Name != "Atibaia" {
		t.Errorf("unexpected first district: %+v", districts[0])
	}
}

func TestFetchDistricts_NotFoundIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such city", http.StatusNotFound)
	}))
	defer srv.Close()

	svc := NewTopologyService(testClient(srv.URL))
	districts, err := svc.FetchDistricts(context.Background(), "0000000")
	if err != nil {
		t.Fatalf("absence must not be an error, got: %v", err)
	}
	if len(districts) != 0 {
		t.Errorf("expected no districts, got %d", len(districts))
	}
}

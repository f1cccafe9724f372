package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AtibaiaGeo/GeoInsights-Backend/internal/etl"
)

// Handler exposes the ETL and map read endpoints over HTTP.
type Handler struct {
	orchestrator *etl.Orchestrator
	repo         *Repository
}

// NewHandler wires a handler from its collaborators.
func NewHandler(orchestrator *etl.Orchestrator, repo *Repository) *Handler {
	return &Handler{orchestrator: orchestrator, repo: repo}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// SyncCatalog runs a full catalog refresh. An empty upstream fetch is a
// warning payload, not an error: the operator retries later.
func (h *Handler) SyncCatalog(w http.ResponseWriter, r *http.Request) {
	result, err := h.orchestrator.SyncCatalog(r.Context())
	if err != nil {
		http.Error(w, "Failed to sync catalog", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ImportCity imports one municipality by its 7-digit code.
func (h *Handler) ImportCity(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	result, err := h.orchestrator.ImportCity(r.Context(), code)
	if err != nil {
		if errors.Is(err, etl.ErrCityNotFound) {
			http.Error(w, fmt.Sprintf("City not found: %s", code), http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to import city", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type bulkImportRequest struct {
	Codes []string `json:"codes"`
}

type bulkImportStatus struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ImportCities imports a batch of municipalities sequentially. Each code
// gets its own status; one failed city never aborts the rest.
func (h *Handler) ImportCities(w http.ResponseWriter, r *http.Request) {
	var req bulkImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Codes) == 0 {
		http.Error(w, "Body must be {\"codes\": [\"...\"]}", http.StatusBadRequest)
		return
	}

	results := make([]bulkImportStatus, 0, len(req.Codes))
	for _, code := range req.Codes {
		st := bulkImportStatus{Code: code, Status: "success"}
		if _, err := h.orchestrator.ImportCity(r.Context(), code); err != nil {
			st.Status = "error"
			if errors.Is(err, etl.ErrCityNotFound) {
				st.Status = "not_found"
			}
			st.Error = err.Error()
		}
		results = append(results, st)
	}
	writeJSON(w, http.StatusOK, results)
}

// MapFeatures returns the stored cities as a GeoJSON FeatureCollection,
// optionally filtered by a comma-separated codes parameter.
func (h *Handler) MapFeatures(w http.ResponseWriter, r *http.Request) {
	var codes []string
	if raw := r.URL.Query().Get("codes"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				codes = append(codes, c)
			}
		}
	}

	fc, err := h.repo.ListFeatures(r.Context(), codes)
	if err != nil {
		http.Error(w, "Failed to load map features", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

// Catalog serves the autocomplete search.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.repo.ListCatalog(r.Context(), r.URL.Query().Get("search"), 10)
	if err != nil {
		http.Error(w, "Failed to search catalog", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []CityCatalogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

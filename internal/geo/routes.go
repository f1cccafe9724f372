package geo

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ETLRoutes mounts the write-side import endpoints.
func (h *Handler) ETLRoutes() http.Handler {
	r := chi.NewRouter()

	r.Post("/catalog/sync", h.SyncCatalog)
	r.Post("/cities/{code}", h.ImportCity)
	r.Post("/cities", h.ImportCities)

	return r
}

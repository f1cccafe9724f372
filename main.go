package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/AtibaiaGeo/GeoInsights-Backend/internal/config"
	"github.com/AtibaiaGeo/GeoInsights-Backend/internal/db"
	"github.com/AtibaiaGeo/GeoInsights-Backend/internal/etl"
	"github.com/AtibaiaGeo/GeoInsights-Backend/internal/geo"
	"github.com/AtibaiaGeo/GeoInsights-Backend/internal/ibge"
	"github.com/AtibaiaGeo/GeoInsights-Backend/internal/middleware"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Geo-Insights API is running")
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	db.Connect()
	if err := geo.Init(db.DB); err != nil {
		log.Fatal("Failed to initialize geo schema: ", err)
	}

	client := ibge.NewClient(cfg.IBGE)
	repo := geo.NewRepository(db.DB)
	orchestrator := etl.NewOrchestrator(
		ibge.NewGeometryService(client),
		ibge.NewDemographicsService(client),
		ibge.NewEconomicsService(client),
		ibge.NewTopologyService(client),
		repo,
	)
	handler := geo.NewHandler(orchestrator, repo)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)
	r.Mount("/etl", handler.ETLRoutes())
	r.Get("/map", handler.MapFeatures)
	r.Get("/catalog", handler.Catalog)

	fmt.Println("Server listening on port :" + port + "...")

	http.ListenAndServe("0.0.0.0:"+port, r)
}

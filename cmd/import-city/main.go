// Command import-city runs the reconciliation pipeline from the command
// line: one or more municipality codes as arguments, optionally preceded by
// a catalog sync.
//
//	go run ./cmd/import-city -sync-catalog 3504107 3550308
package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/AtibaiaGeo/GeoInsights-Backend/internal/config"
	"github.com/AtibaiaGeo/GeoInsights-Backend/internal/db"
	"github.com/AtibaiaGeo/GeoInsights-Backend/internal/etl"
	"github.com/AtibaiaGeo/GeoInsights-Backend/internal/geo"
	"github.com/AtibaiaGeo/GeoInsights-Backend/internal/ibge"
)

func main() {
	syncCatalog := flag.Bool("sync-catalog", false, "refresh the municipality catalog before importing")
	flag.Parse()

	if !*syncCatalog && flag.NArg() == 0 {
		log.Fatal("usage: import-city [-sync-catalog] <city-code> [<city-code>...]")
	}

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
	orchestrator := etl.NewOrchestrator(
		ibge.NewGeometryService(client),
		ibge.NewDemographicsService(client),
		ibge.NewEconomicsService(client),
		ibge.NewTopologyService(client),
		geo.NewRepository(db.DB),
	)

	ctx := context.Background()

	if *syncCatalog {
		result, err := orchestrator.SyncCatalog(ctx)
		if err != nil {
			log.Fatal("Catalog sync failed: ", err)
		}
		log.Printf("Catalog sync: status=%s total=%d %s", result.Status, result.Total, result.Message)
	}

	failed := 0
	for _, code := range flag.Args() {
		result, err := orchestrator.ImportCity(ctx, code)
		switch {
		case errors.Is(err, etl.ErrCityNotFound):
			log.Printf("City %s: not found (no boundary)", code)
			failed++
		case err != nil:
			log.Printf("City %s: import failed: %v", code, err)
			failed++
		default:
			log.Printf("City %s: imported %s/%s population=%d gdp_per_capita=%.1f",
				code, result.Data.Name, result.Data.UF, result.Data.Population, result.Data.GDPPerCapita)
		}
	}

	if failed > 0 {
		log.Fatalf("%d of %d imports failed", failed, flag.NArg())
	}
}

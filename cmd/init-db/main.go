// Command init-db prepares a fresh database: it enables the PostGIS and
// uuid-ossp extensions (which require elevated privileges and therefore run
// through a plain SQL connection) and then creates the geo tables.
package main

import (
	"database/sql"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/AtibaiaGeo/GeoInsights-Backend/internal/db"
	"github.com/AtibaiaGeo/GeoInsights-Backend/internal/geo"
)

func main() {
	_ = godotenv.Load(".env.local")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}

	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	defer conn.Close()

	for _, stmt := range []string{
		`CREATE EXTENSION IF NOT EXISTS "postgis"`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,
		`CREATE SCHEMA IF NOT EXISTS "geo"`,
	} {
		if _, err := conn.Exec(stmt); err != nil {
			log.Fatalf("Failed to run %q: %v", stmt, err)
		}
	}
	log.Println("Extensions and schema ready")

	db.Connect()
	if err := geo.Init(db.DB); err != nil {
		log.Fatal("Failed to create geo tables: ", err)
	}
	log.Println("Tables and indexes ready")
}

package geo

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/AtibaiaGeo/GeoInsights-Backend/internal/db"
)

// Init ensures the geo schema, extensions, tables and spatial index exist.
// Safe to run on every startup.
func Init(d *gorm.DB) error {
	if err := db.EnsureSchema(d, "geo"); err != nil {
		return fmt.Errorf("ensure schema geo: %w", err)
	}

	for _, ext := range []string{"postgis", "uuid-ossp"} {
		if err := d.Exec(fmt.Sprintf(`CREATE EXTENSION IF NOT EXISTS %q`, ext)).Error; err != nil {
			return fmt.Errorf("enable extension %s: %w", ext, err)
		}
	}

	if err := d.AutoMigrate(&City{}, &District{}, &CityCatalogEntry{}); err != nil {
		return fmt.Errorf("auto-migrate geo tables: %w", err)
	}

	// AutoMigrate creates btree indexes only; the map read path needs GiST.
	if err := d.Exec(`
		CREATE INDEX IF NOT EXISTS cities_geom_gist
		ON geo.cities USING GIST (geom)
	`).Error; err != nil {
		return fmt.Errorf("create spatial index: %w", err)
	}

	return nil
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}

func TestLoad_DefaultsWithoutOverlay(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/geo_test")
	t.Setenv("GEOINSIGHTS_CONFIG", "")
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.IBGE.LocalitiesBaseURL != DefaultLocalitiesBaseURL {
		t.Errorf("expected default localities URL, got %q", cfg.IBGE.LocalitiesBaseURL)
	}
	if cfg.IBGE.RequestsPerSecond != DefaultRequestsPerSecond {
		t.Errorf("expected default rate %v, got %v", DefaultRequestsPerSecond, cfg.IBGE.RequestsPerSecond)
	}
}

func TestLoad_YAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `ibge:
  localities_base_url: http://localhost:9000/localidades
  requests_per_second: 2
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/geo_test")
	t.Setenv("GEOINSIGHTS_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.IBGE.LocalitiesBaseURL != "http://localhost:9000/localidades" {
		t.Errorf("overlay not applied: %q", cfg.IBGE.LocalitiesBaseURL)
	}
	if cfg.IBGE.RequestsPerSecond != 2 {
		t.Errorf("expected rate 2, got %v", cfg.IBGE.RequestsPerSecond)
	}
	// Fields absent from the overlay keep their defaults.
	if cfg.IBGE.MeshBaseURL != DefaultMeshBaseURL {
		t.Errorf("expected default mesh URL, got %q", cfg.IBGE.MeshBaseURL)
	}
}

func TestLoad_ExplicitMissingFileIsError(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/geo_test")
	t.Setenv("GEOINSIGHTS_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for an explicitly named missing file")
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("GEOINSIGHTS_CONFIG", "")
	chdir(t, t.TempDir())

	_, err := Load()
	if !errors.Is(err, ErrMissingDatabaseURL) {
		t.Fatalf("expected ErrMissingDatabaseURL, got %v", err)
	}
}

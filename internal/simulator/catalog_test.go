package simulator

import (
	"math/rand"
	"testing"
)

func TestDefaultCatalogValidates(t *testing.T) {
	if errs := DefaultCatalog().Validate(); len(errs) > 0 {
		t.Fatalf("default catalog invalid: %v", errs)
	}
}

func TestCatalogValidateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Catalog)
	}{
		{"no firmware versions", func(c *Catalog) { c.FirmwareVersions = nil }},
		{"no models", func(c *Catalog) { c.VehicleModels = nil }},
		{"no connectivity types", func(c *Catalog) { c.ConnectivityTypes = nil }},
		{"no cities", func(c *Catalog) { c.CityCenters = nil }},
		{"inverted year range", func(c *Catalog) { c.YearMin, c.YearMax = 2025, 2020 }},
		{"unknown distribution version", func(c *Catalog) {
			c.FirmwareDistribution = map[string]float64{"9.9.9": 1.0}
		}},
		{"distribution does not sum to one", func(c *Catalog) {
			c.FirmwareDistribution = map[string]float64{"1.2.0": 0.5}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultCatalog()
			tt.mutate(c)
			if errs := c.Validate(); len(errs) == 0 {
				t.Fatal("expected validation errors, got none")
			}
		})
	}
}

func TestPickFirmwareDrawsFromCatalog(t *testing.T) {
	c := DefaultCatalog()
	rng := rand.New(rand.NewSource(5))

	known := make(map[string]bool, len(c.FirmwareVersions))
	for _, v := range c.FirmwareVersions {
		known[v] = true
	}

	seen := make(map[string]bool)
	for i := 0; i < 2000; i++ {
		v := c.pickFirmware(rng)
		if !known[v] {
			t.Fatalf("picked version %q not in catalog", v)
		}
		seen[v] = true
	}
	// With 2000 draws every weighted version should show up.
	for v, w := range c.FirmwareDistribution {
		if w > 0 && !seen[v] {
			t.Errorf("version %q (weight %v) never drawn", v, w)
		}
	}
}

func TestPickCityStaysWithinCatalog(t *testing.T) {
	c := DefaultCatalog()
	rng := rand.New(rand.NewSource(6))

	for i := 0; i < 100; i++ {
		city := c.pickCity(rng)
		found := false
		for _, known := range c.CityCenters {
			if city.Name == known.Name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("picked city %q not in catalog", city.Name)
		}
	}
}

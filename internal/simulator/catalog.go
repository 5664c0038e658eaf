package simulator

import (
	"fmt"
	"math"
	"math/rand"
)

// City is a named seed location for initial vehicle placement.
type City struct {
	Name      string  `json:"name" mapstructure:"name"`
	Latitude  float64 `json:"latitude" mapstructure:"latitude"`
	Longitude float64 `json:"longitude" mapstructure:"longitude"`
}

// Catalog holds the closed sets the simulator draws from. It is externally
// supplied configuration; the defaults model a small EV fleet.
type Catalog struct {
	// FirmwareVersions is ordered oldest to newest.
	FirmwareVersions []string `json:"firmware-versions" mapstructure:"firmware-versions"`

	// FirmwareDistribution is the initial share of the fleet per version.
	// Shares must sum to 1.0 and skew toward older versions so an update
	// campaign has work to do.
	FirmwareDistribution map[string]float64 `json:"firmware-distribution" mapstructure:"firmware-distribution"`

	VehicleModels []string `json:"vehicle-models" mapstructure:"vehicle-models"`

	ConnectivityTypes []string `json:"connectivity-types" mapstructure:"connectivity-types"`

	CityCenters []City `json:"city-centers" mapstructure:"city-centers"`

	YearMin int `json:"year-min" mapstructure:"year-min"`
	YearMax int `json:"year-max" mapstructure:"year-max"`
}

// DefaultCatalog returns the stock catalog.
func DefaultCatalog() *Catalog {
	return &Catalog{
		FirmwareVersions: []string{"1.2.0", "1.2.1", "1.3.0", "1.3.1", "1.4.0", "2.0.0"},
		FirmwareDistribution: map[string]float64{
			"1.2.0": 0.10,
			"1.2.1": 0.15,
			"1.3.0": 0.25,
			"1.3.1": 0.30,
			"1.4.0": 0.15,
			"2.0.0": 0.05,
		},
		VehicleModels:     []string{"Model-S", "Model-3", "Model-X", "Model-Y", "Cybertruck"},
		ConnectivityTypes: []string{"4G_LTE", "5G", "WiFi", "Satellite"},
		CityCenters: []City{
			{"San Francisco", 37.7749, -122.4194},
			{"Los Angeles", 34.0522, -118.2437},
			{"Chicago", 41.8781, -87.6298},
			{"New York", 40.7128, -74.0060},
			{"Austin", 30.2672, -97.7431},
			{"Seattle", 47.6062, -122.3321},
			{"Detroit", 42.3314, -83.0458},
			{"Boston", 42.3601, -71.0589},
			{"Miami", 25.7617, -80.1918},
			{"Denver", 39.7392, -104.9903},
		},
		YearMin: 2020,
		YearMax: 2025,
	}
}

// Validate checks the catalog invariants. Any error here is fatal at
// startup; the simulator never revalidates mid-run.
func (c *Catalog) Validate() []error {
	errs := []error{}

	if len(c.FirmwareVersions) == 0 {
		errs = append(errs, fmt.Errorf("catalog: firmware-versions must not be empty"))
	}
	if len(c.VehicleModels) == 0 {
		errs = append(errs, fmt.Errorf("catalog: vehicle-models must not be empty"))
	}
	if len(c.ConnectivityTypes) == 0 {
		errs = append(errs, fmt.Errorf("catalog: connectivity-types must not be empty"))
	}
	if len(c.CityCenters) == 0 {
		errs = append(errs, fmt.Errorf("catalog: city-centers must not be empty"))
	}
	if c.YearMin > c.YearMax {
		errs = append(errs, fmt.Errorf("catalog: year-min %d exceeds year-max %d", c.YearMin, c.YearMax))
	}

	if len(c.FirmwareDistribution) > 0 {
		sum := 0.0
		known := make(map[string]bool, len(c.FirmwareVersions))
		for _, v := range c.FirmwareVersions {
			known[v] = true
		}
		for version, share := range c.FirmwareDistribution {
			if !known[version] {
				errs = append(errs, fmt.Errorf("catalog: firmware-distribution references unknown version %q", version))
			}
			sum += share
		}
		if math.Abs(sum-1.0) > 0.01 {
			errs = append(errs, fmt.Errorf("catalog: firmware-distribution sums to %.3f, must sum to 1.0", sum))
		}
	}

	return errs
}

// pickFirmware draws an initial firmware version. With a distribution
// configured it samples by weight; otherwise it falls back to a uniform pick
// over the older two thirds of the catalog.
func (c *Catalog) pickFirmware(rng *rand.Rand) string {
	if len(c.FirmwareDistribution) > 0 {
		r := rng.Float64()
		acc := 0.0
		// Iterate in catalog order so the draw is stable for a given seed.
		for _, version := range c.FirmwareVersions {
			acc += c.FirmwareDistribution[version]
			if r < acc {
				return version
			}
		}
	}

	n := len(c.FirmwareVersions) * 2 / 3
	if n == 0 {
		n = len(c.FirmwareVersions)
	}
	return c.FirmwareVersions[rng.Intn(n)]
}

// pickCity returns a random catalog city.
func (c *Catalog) pickCity(rng *rand.Rand) City {
	return c.CityCenters[rng.Intn(len(c.CityCenters))]
}

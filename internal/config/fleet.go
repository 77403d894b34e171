package config

import (
	"errors"
	"fmt"
	"lot-dispatch-service/internal/domain"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Fleet describes the depot, the two vehicles and routing settings.
type Fleet struct {
	Depot    Point          `yaml:"depot"`
	Vehicles []VehicleEntry `yaml:"vehicles"`
	Routing  RoutingConfig  `yaml:"routing"`
}

type Point struct {
	Lon float64 `yaml:"lon"`
	Lat float64 `yaml:"lat"`
}

type VehicleEntry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type RoutingConfig struct {
	BaseURL string `yaml:"base_url"`
	Profile string `yaml:"profile"`
	Locale  string `yaml:"locale"`
	// Per-request HTTP timeout.
	Timeout time.Duration `yaml:"timeout"`
	// Minimum spacing between consecutive routing requests.
	MinInterval time.Duration `yaml:"min_interval"`
}

// DefaultFleet is the sugar mill depot with its two trucks.
func DefaultFleet() Fleet {
	return Fleet{
		Depot: Point{Lon: -64.245138888888889, Lat: -23.260327777777778},
		Vehicles: []VehicleEntry{
			{ID: "AF820AB", Name: "Truck 1 (Route A)"},
			{ID: "AE898TW", Name: "Truck 2 (Route B)"},
		},
		Routing: RoutingConfig{
			BaseURL:     "https://graphhopper.com/api/1",
			Profile:     "car",
			Locale:      "es",
			Timeout:     30 * time.Second,
			MinInterval: 2 * time.Second,
		},
	}
}

// LoadFleet reads a YAML fleet file. Missing routing fields keep their defaults.
func LoadFleet(path string) (Fleet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fleet{}, fmt.Errorf("load fleet: read %q: %w", path, err)
	}

	fleet := DefaultFleet()
	fleet.Vehicles = nil
	if err := yaml.Unmarshal(data, &fleet); err != nil {
		return Fleet{}, fmt.Errorf("load fleet: parse %q: %w", path, err)
	}

	if err := fleet.Validate(); err != nil {
		return Fleet{}, fmt.Errorf("load fleet: %w", err)
	}

	return fleet, nil
}

func (f Fleet) Validate() error {
	if !f.DepotCoords().Valid() {
		return fmt.Errorf("depot coordinates out of range: lon=%v lat=%v", f.Depot.Lon, f.Depot.Lat)
	}

	if len(f.Vehicles) != domain.FleetSize {
		return fmt.Errorf("expected %d vehicles, got %d", domain.FleetSize, len(f.Vehicles))
	}

	if strings.TrimSpace(f.Vehicles[0].ID) == "" || strings.TrimSpace(f.Vehicles[1].ID) == "" {
		return errors.New("vehicle id must be non-empty")
	}
	if f.Vehicles[0].ID == f.Vehicles[1].ID {
		return fmt.Errorf("vehicle ids must be distinct, got %q twice", f.Vehicles[0].ID)
	}

	if f.Routing.Timeout < 0 || f.Routing.MinInterval < 0 {
		return errors.New("routing durations must be non-negative")
	}

	return nil
}

func (f Fleet) DepotCoords() domain.Coordinates {
	return domain.Coordinates{Lon: f.Depot.Lon, Lat: f.Depot.Lat}
}

// FleetVehicles returns the vehicles in route order (A, B). Call Validate first.
func (f Fleet) FleetVehicles() [domain.FleetSize]domain.Vehicle {
	var out [domain.FleetSize]domain.Vehicle
	for i := 0; i < domain.FleetSize && i < len(f.Vehicles); i++ {
		out[i] = domain.Vehicle{ID: strings.TrimSpace(f.Vehicles[i].ID), Name: f.Vehicles[i].Name}
	}
	return out
}

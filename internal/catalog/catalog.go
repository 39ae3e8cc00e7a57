// Package catalog reads the terrarium model and plant catalog used to seed
// the store.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"io"
	"os"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/glowupgrow/terrarium-api/internal/domain"
)

//go:embed default.yaml
var defaultCatalog []byte

type Catalog struct {
	Models []Model `yaml:"models"`
	Plants []Plant `yaml:"plants"`
}

type Model struct {
	ModelID        int     `yaml:"model_id"`
	SpaceAvailable float64 `yaml:"space_available"`
}

type Plant struct {
	Name             string  `yaml:"name"`
	Temperature      float64 `yaml:"temperature"`
	SoilMoisture     float64 `yaml:"soil_moisture"`
	Humidity         float64 `yaml:"humidity"`
	LightLevel       float64 `yaml:"light_level"`
	GrowthTimeDays   int     `yaml:"growth_time_days"`
	SpaceRequirement float64 `yaml:"space_requirement"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(bytes.NewReader(defaultCatalog))
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, oops.Code("CATALOG_INVALID").With("path", path).Wrap(err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog. Unknown keys are rejected.
func Parse(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, oops.Code("CATALOG_INVALID").Wrap(err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects duplicate keys and negative quantities.
func (c *Catalog) Validate() error {
	modelIDs := make(map[int]bool, len(c.Models))
	for i, m := range c.Models {
		if m.ModelID <= 0 {
			return oops.Code("CATALOG_INVALID").With("index", i).Errorf("model_id must be positive, got %d", m.ModelID)
		}
		if modelIDs[m.ModelID] {
			return oops.Code("CATALOG_INVALID").Errorf("duplicate model_id %d", m.ModelID)
		}
		if m.SpaceAvailable < 0 {
			return oops.Code("CATALOG_INVALID").Errorf("model %d: space_available cannot be negative", m.ModelID)
		}
		modelIDs[m.ModelID] = true
	}

	names := make(map[string]bool, len(c.Plants))
	for i, p := range c.Plants {
		if p.Name == "" {
			return oops.Code("CATALOG_INVALID").With("index", i).Errorf("plant name is required")
		}
		if names[p.Name] {
			return oops.Code("CATALOG_INVALID").Errorf("duplicate plant %q", p.Name)
		}
		if p.GrowthTimeDays < 0 || p.SpaceRequirement < 0 {
			return oops.Code("CATALOG_INVALID").Errorf("plant %q: growth_time_days and space_requirement cannot be negative", p.Name)
		}
		names[p.Name] = true
	}
	return nil
}

// DomainModels converts the catalog models for the store.
func (c *Catalog) DomainModels() []*domain.TerrariumModel {
	out := make([]*domain.TerrariumModel, 0, len(c.Models))
	for _, m := range c.Models {
		out = append(out, &domain.TerrariumModel{
			ModelID:        m.ModelID,
			SpaceAvailable: m.SpaceAvailable,
		})
	}
	return out
}

// DomainPlants converts the catalog plants for the store.
func (c *Catalog) DomainPlants() []*domain.Plant {
	out := make([]*domain.Plant, 0, len(c.Plants))
	for _, p := range c.Plants {
		out = append(out, &domain.Plant{
			Name:             p.Name,
			Temperature:      p.Temperature,
			SoilMoisture:     p.SoilMoisture,
			Humidity:         p.Humidity,
			LightLevel:       p.LightLevel,
			GrowthTimeDays:   p.GrowthTimeDays,
			SpaceRequirement: p.SpaceRequirement,
		})
	}
	return out
}

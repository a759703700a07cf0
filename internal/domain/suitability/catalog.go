package suitability

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bondastefana/farm-management-app/internal/domain/models"
)

//go:embed crops.yaml
var defaultCatalogYAML []byte

type catalogFile struct {
	Crops []models.CropProfile `yaml:"crops"`
}

// DefaultCatalog returns the built-in crop knowledge base.
func DefaultCatalog() []models.CropProfile {
	catalog, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded crop catalog is invalid: %v", err))
	}
	return catalog
}

// LoadCatalog reads a crop knowledge base from a YAML file.
func LoadCatalog(path string) ([]models.CropProfile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read crop catalog %s: %w", path, err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes and validates a YAML crop table. Profiles are returned
// sorted by id.
func ParseCatalog(raw []byte) ([]models.CropProfile, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode crop catalog: %w", err)
	}
	if err := ValidateCatalog(file.Crops); err != nil {
		return nil, err
	}

	crops := file.Crops
	sort.Slice(crops, func(i, j int) bool { return crops[i].ID < crops[j].ID })
	return crops, nil
}

// ValidateCatalog normalizes crop ids in place and checks they are unique
// and that every range and soil type is well formed.
func ValidateCatalog(crops []models.CropProfile) error {
	seen := make(map[string]struct{}, len(crops))

	for i := range crops {
		crop := &crops[i]
		crop.ID = strings.ToLower(strings.TrimSpace(crop.ID))
		if crop.ID == "" {
			return models.NewValidationError(fmt.Sprintf("crops[%d].id", i), nil, "is required")
		}
		if _, dup := seen[crop.ID]; dup {
			return models.NewValidationError(fmt.Sprintf("crops[%d].id", i), crop.ID, "duplicated crop id")
		}
		seen[crop.ID] = struct{}{}

		ranges := []struct {
			param models.Parameter
			r     *models.Range
		}{
			{models.ParamTemperature, crop.Temperature},
			{models.ParamPrecipitation, crop.Precipitation},
			{models.ParamFrostDays, crop.FrostDays},
			{models.ParamPH, crop.PH},
			{models.ParamWaterRetention, crop.WaterRetention},
			{models.ParamNitrogen, crop.Nitrogen},
			{models.ParamElevation, crop.Elevation},
		}
		for _, entry := range ranges {
			r := entry.r
			if r == nil {
				continue
			}
			field := fmt.Sprintf("crops[%s].%s", crop.ID, entry.param)
			if r.Min > r.Max {
				return models.NewValidationError(field, *r, "min must not exceed max")
			}
			if r.Tolerance < 0 {
				return models.NewValidationError(field, *r, "tolerance must not be negative")
			}
		}

		soilTypes := append(append(append([]string(nil), crop.Soil.Good...), crop.Soil.Neutral...), crop.Soil.Bad...)
		for _, st := range soilTypes {
			if !models.SoilType(st).Valid() {
				return models.NewValidationError(fmt.Sprintf("crops[%s].soil", crop.ID), st, "unknown soil type")
			}
		}
	}

	return nil
}

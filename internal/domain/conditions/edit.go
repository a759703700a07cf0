package conditions

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bondastefana/farm-management-app/internal/domain/models"
)

const dateLayout = "2006-01-02"

// Categories and fields accepted by ApplyManualEdit.
const (
	CategoryClimate      = "climate"
	CategorySoil         = "soil"
	CategoryAltitude     = "altitude"
	CategoryPreviousCrop = "previousCrop"
)

type numericLeaf struct {
	min, max float64
	unit     string
	field    func(*models.LocationConditions) *models.Field[float64]
}

var numericLeaves = map[string]numericLeaf{
	"climate.temperature": {
		min:   -50,
		max:   50,
		unit:  models.UnitCelsius,
		field: func(c *models.LocationConditions) *models.Field[float64] { return &c.Climate.Temperature },
	},
	"climate.precipitation": {
		min:   0,
		max:   10000,
		unit:  models.UnitMillimeters,
		field: func(c *models.LocationConditions) *models.Field[float64] { return &c.Climate.Precipitation },
	},
	"climate.frostDays": {
		min:   0,
		max:   365,
		unit:  models.UnitDays,
		field: func(c *models.LocationConditions) *models.Field[float64] { return &c.Climate.FrostDays },
	},
	"soil.pH": {
		min:   0,
		max:   14,
		unit:  models.UnitPH,
		field: func(c *models.LocationConditions) *models.Field[float64] { return &c.Soil.PH },
	},
	"soil.waterRetention": {
		min:   0,
		max:   100,
		unit:  models.UnitPercent,
		field: func(c *models.LocationConditions) *models.Field[float64] { return &c.Soil.WaterRetention },
	},
	"soil.nitrogen": {
		min:   0,
		max:   10,
		unit:  models.UnitGramsPerKilo,
		field: func(c *models.LocationConditions) *models.Field[float64] { return &c.Soil.Nitrogen },
	},
	"altitude.elevation": {
		min:   -500,
		max:   9000,
		unit:  models.UnitMeters,
		field: func(c *models.LocationConditions) *models.Field[float64] { return &c.Altitude.Elevation },
	},
}

// ApplyManualEdit sets a single leaf from user input and marks it manual.
// Sibling leaves are not touched. Nothing is applied when validation fails.
func ApplyManualEdit(current models.LocationConditions, category, field string, value any, now time.Time) (models.LocationConditions, error) {
	key := category + "." + field
	next := current
	modified := now

	if leaf, ok := numericLeaves[key]; ok {
		v, err := toFloat(key, value)
		if err != nil {
			return current, err
		}
		if !(v >= leaf.min && v <= leaf.max) {
			return current, models.NewValidationError(key, v, fmt.Sprintf("must be within [%g, %g]", leaf.min, leaf.max))
		}
		*leaf.field(&next) = models.Field[float64]{Value: &v, Unit: leaf.unit, Source: models.SourceManual, LastModified: &modified}
		next.LastUpdated = now
		return next, nil
	}

	switch key {
	case "soil.soilType":
		types, err := toSoilTypes(key, value)
		if err != nil {
			return current, err
		}
		next.Soil.SoilType = models.Field[[]models.SoilType]{Value: &types, Source: models.SourceManual, LastModified: &modified}
	case "previousCrop.cropId":
		id, ok := value.(string)
		id = strings.TrimSpace(strings.ToLower(id))
		if !ok || id == "" {
			return current, models.NewValidationError(key, value, "must be a non-empty crop id")
		}
		next.PreviousCrop.CropID = models.Field[string]{Value: &id, Source: models.SourceManual, LastModified: &modified}
	case "previousCrop.harvestDate":
		date, err := toDate(key, value)
		if err != nil {
			return current, err
		}
		if date.After(now) {
			return current, models.NewValidationError(key, date.Format(dateLayout), "must not be in the future")
		}
		next.PreviousCrop.HarvestDate = models.Field[time.Time]{Value: &date, Source: models.SourceManual, LastModified: &modified}
	default:
		return current, models.NewValidationError("field", key, "unknown condition field")
	}

	next.LastUpdated = now
	return next, nil
}

// ApplySoilStatistics copies laboratory means into the soil leaves as manual
// values. Analytes without a mean are skipped.
func ApplySoilStatistics(current models.LocationConditions, stats models.SoilStatistics, now time.Time) (models.LocationConditions, error) {
	next := current
	var err error

	if stats.PH != nil {
		if next, err = ApplyManualEdit(next, CategorySoil, "pH", stats.PH.Raw, now); err != nil {
			return current, err
		}
	}
	if stats.Nitrogen != nil {
		if next, err = ApplyManualEdit(next, CategorySoil, "nitrogen", stats.Nitrogen.Raw, now); err != nil {
			return current, err
		}
	}
	return next, nil
}

// toFloat accepts finite numbers only. ParseFloat also accepts "NaN" and "Inf".
func toFloat(key string, value any) (float64, error) {
	f, err := parseFloat(key, value)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, models.NewValidationError(key, value, "must be a finite number")
	}
	return f, nil
}

func parseFloat(key string, value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, models.NewValidationError(key, value, "must be a number")
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, models.NewValidationError(key, value, "must be a number")
		}
		return f, nil
	default:
		return 0, models.NewValidationError(key, value, "must be a number")
	}
}

func toSoilTypes(key string, value any) ([]models.SoilType, error) {
	switch v := value.(type) {
	case string:
		return models.ParseSoilTypes(v)
	case []models.SoilType:
		parts := make([]string, len(v))
		for i, st := range v {
			parts[i] = string(st)
		}
		return models.ParseSoilTypes(strings.Join(parts, ","))
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, models.NewValidationError(key, value, "must be a list of soil types")
			}
			parts = append(parts, s)
		}
		return models.ParseSoilTypes(strings.Join(parts, ","))
	default:
		return nil, models.NewValidationError(key, value, "must be a list of soil types")
	}
}

func toDate(key string, value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		d, err := time.Parse(dateLayout, strings.TrimSpace(v))
		if err != nil {
			return time.Time{}, models.NewValidationError(key, value, "must be a date formatted as YYYY-MM-DD")
		}
		return d, nil
	default:
		return time.Time{}, models.NewValidationError(key, value, "must be a date")
	}
}

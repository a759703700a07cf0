// Package soilstats reduces the samples of one soil analysis into per-analyte
// means.
package soilstats

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bondastefana/farm-management-app/internal/domain/models"
)

// Display precision per analyte.
const (
	phPlaces            = 2
	nitrogenPlaces      = 2
	phosphorusPlaces    = 0
	potassiumPlaces     = 0
	organicMatterPlaces = 2
)

type analyte struct {
	name     string
	places   int32
	min, max float64
	pick     func(models.SoilSample) *float64
	assign   func(*models.SoilStatistics, *models.AnalyteMean)
}

// noUpperBound marks analytes that are only bounded below.
const noUpperBound = -1

var analytes = []analyte{
	{
		name:   "pH",
		places: phPlaces,
		min:    0,
		max:    14,
		pick:   func(s models.SoilSample) *float64 { return s.PH },
		assign: func(st *models.SoilStatistics, m *models.AnalyteMean) { st.PH = m },
	},
	{
		name:   "nitrogen",
		places: nitrogenPlaces,
		min:    0,
		max:    noUpperBound,
		pick:   func(s models.SoilSample) *float64 { return s.Nitrogen },
		assign: func(st *models.SoilStatistics, m *models.AnalyteMean) { st.Nitrogen = m },
	},
	{
		name:   "phosphorus",
		places: phosphorusPlaces,
		min:    0,
		max:    noUpperBound,
		pick:   func(s models.SoilSample) *float64 { return s.Phosphorus },
		assign: func(st *models.SoilStatistics, m *models.AnalyteMean) { st.Phosphorus = m },
	},
	{
		name:   "potassium",
		places: potassiumPlaces,
		min:    0,
		max:    noUpperBound,
		pick:   func(s models.SoilSample) *float64 { return s.Potassium },
		assign: func(st *models.SoilStatistics, m *models.AnalyteMean) { st.Potassium = m },
	},
	{
		name:   "organicMatter",
		places: organicMatterPlaces,
		min:    0,
		max:    100,
		pick:   func(s models.SoilSample) *float64 { return s.OrganicMatter },
		assign: func(st *models.SoilStatistics, m *models.AnalyteMean) { st.OrganicMatter = m },
	},
}

// Aggregate computes the statistics of one analysis. An empty slice yields a
// zero count with every mean left nil. The result does not depend on the
// order of samples.
func Aggregate(samples []models.SoilSample) (models.SoilStatistics, error) {
	if err := Validate(samples); err != nil {
		return models.SoilStatistics{}, err
	}

	stats := models.SoilStatistics{SampleCount: len(samples)}
	if len(samples) == 0 {
		return stats, nil
	}

	values := make([]float64, len(samples))
	for _, a := range analytes {
		for i, s := range samples {
			values[i] = *a.pick(s)
		}
		raw := mean(values)
		a.assign(&stats, &models.AnalyteMean{Raw: raw, Display: round(raw, a.places)})
	}

	return stats, nil
}

// Validate checks every sample for missing or out-of-range analytes and for
// duplicated sample numbers.
func Validate(samples []models.SoilSample) error {
	seen := make(map[int]struct{}, len(samples))

	for i, s := range samples {
		prefix := fmt.Sprintf("samples[%d]", i)

		if s.SampleNumber <= 0 {
			return models.NewValidationError(prefix+".sampleNumber", s.SampleNumber, "must be a positive integer")
		}
		if _, dup := seen[s.SampleNumber]; dup {
			return models.NewValidationError(prefix+".sampleNumber", s.SampleNumber, "duplicated within the analysis")
		}
		seen[s.SampleNumber] = struct{}{}

		if s.DepthCm == nil {
			return models.NewValidationError(prefix+".depthCm", nil, "is required")
		}
		if !(*s.DepthCm >= 0) || math.IsInf(*s.DepthCm, 1) {
			return models.NewValidationError(prefix+".depthCm", *s.DepthCm, "must be a finite number not below 0")
		}

		for _, a := range analytes {
			v := a.pick(s)
			if v == nil {
				return models.NewValidationError(prefix+"."+a.name, nil, "is required")
			}
			if !(*v >= a.min) || math.IsInf(*v, 1) || (a.max != noUpperBound && *v > a.max) {
				return models.NewValidationError(prefix+"."+a.name, *v, rangeReason(a))
			}
		}
	}

	return nil
}

// Compare returns raw deltas between two analyses. A delta is nil whenever one
// side has no mean for that analyte.
func Compare(previous, current models.SoilStatistics) models.SoilTrend {
	return models.SoilTrend{
		PH:            delta(previous.PH, current.PH),
		Nitrogen:      delta(previous.Nitrogen, current.Nitrogen),
		Phosphorus:    delta(previous.Phosphorus, current.Phosphorus),
		Potassium:     delta(previous.Potassium, current.Potassium),
		OrganicMatter: delta(previous.OrganicMatter, current.OrganicMatter),
	}
}

func delta(previous, current *models.AnalyteMean) *float64 {
	if previous == nil || current == nil {
		return nil
	}
	d := current.Raw - previous.Raw
	return &d
}

// mean sums in ascending order so that permutations of the input give
// bit-identical results.
func mean(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return sum / float64(len(sorted))
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func rangeReason(a analyte) string {
	if a.max == noUpperBound {
		return fmt.Sprintf("must be >= %g", a.min)
	}
	return fmt.Sprintf("must be within [%g, %g]", a.min, a.max)
}

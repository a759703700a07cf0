// Package suitability rates crops against a parcel's recorded conditions.
package suitability

import (
	"math"
	"sort"
	"strings"

	"github.com/bondastefana/farm-management-app/internal/domain/models"
)

// Categorical match scores.
const (
	GoodMatchScore    = 100
	NeutralMatchScore = 60
	BadMatchScore     = 20
)

// Level thresholds, shared by overall scores and parameter explanations.
const (
	excellentThreshold  = 80
	goodThreshold       = 65
	moderateThreshold   = 50
	acceptableThreshold = 35
)

// LevelFor classifies a 0-100 score.
func LevelFor(score int) models.Level {
	switch {
	case score >= excellentThreshold:
		return models.LevelExcellent
	case score >= goodThreshold:
		return models.LevelGood
	case score >= moderateThreshold:
		return models.LevelModerate
	case score >= acceptableThreshold:
		return models.LevelAcceptable
	default:
		return models.LevelLow
	}
}

type subScore struct {
	param models.Parameter
	score float64
}

// Score rates every crop of the catalog. Parameters without a recorded value
// or without a crop requirement are skipped, and crops left with nothing to
// evaluate are omitted. Results are ordered by score descending, then by crop
// id. Empty conditions produce an empty list.
func Score(conditions models.LocationConditions, catalog []models.CropProfile) []models.CropRecommendation {
	recommendations := make([]models.CropRecommendation, 0, len(catalog))

	for _, crop := range catalog {
		subs := evaluate(conditions, crop)
		if len(subs) == 0 {
			continue
		}

		var total float64
		explanations := make([]models.ParameterExplanation, 0, len(subs))
		for _, s := range subs {
			total += s.score
			rounded := roundScore(s.score)
			explanations = append(explanations, models.ParameterExplanation{
				Parameter: s.param,
				Level:     LevelFor(rounded),
				Score:     rounded,
			})
		}

		overall := roundScore(total / float64(len(subs)))
		recommendations = append(recommendations, models.CropRecommendation{
			CropID:       crop.ID,
			Name:         crop.Name,
			Score:        overall,
			Level:        LevelFor(overall),
			Explanations: explanations,
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		if recommendations[i].Score != recommendations[j].Score {
			return recommendations[i].Score > recommendations[j].Score
		}
		return recommendations[i].CropID < recommendations[j].CropID
	})

	return recommendations
}

func evaluate(c models.LocationConditions, crop models.CropProfile) []subScore {
	var subs []subScore

	numeric := func(param models.Parameter, field models.Field[float64], r *models.Range) {
		if field.Value == nil || r == nil {
			return
		}
		subs = append(subs, subScore{param: param, score: rangeScore(*field.Value, *r)})
	}

	numeric(models.ParamTemperature, c.Climate.Temperature, crop.Temperature)
	numeric(models.ParamPrecipitation, c.Climate.Precipitation, crop.Precipitation)
	numeric(models.ParamFrostDays, c.Climate.FrostDays, crop.FrostDays)
	numeric(models.ParamPH, c.Soil.PH, crop.PH)

	if c.Soil.SoilType.Value != nil && len(*c.Soil.SoilType.Value) > 0 && !crop.Soil.Empty() {
		best := 0.0
		for _, st := range *c.Soil.SoilType.Value {
			best = math.Max(best, categoryScore(string(st), crop.Soil))
		}
		subs = append(subs, subScore{param: models.ParamSoilType, score: best})
	}

	numeric(models.ParamWaterRetention, c.Soil.WaterRetention, crop.WaterRetention)
	numeric(models.ParamNitrogen, c.Soil.Nitrogen, crop.Nitrogen)
	numeric(models.ParamElevation, c.Altitude.Elevation, crop.Elevation)

	if c.PreviousCrop.CropID.Value != nil && *c.PreviousCrop.CropID.Value != "" && !crop.Rotation.Empty() {
		subs = append(subs, subScore{
			param: models.ParamPreviousCrop,
			score: categoryScore(*c.PreviousCrop.CropID.Value, crop.Rotation),
		})
	}

	return subs
}

// rangeScore is 100 inside the ideal range. Outside it falls linearly to 50
// over the first tolerance width and to 0 over the second.
func rangeScore(v float64, r models.Range) float64 {
	if r.Contains(v) {
		return 100
	}
	if r.Tolerance <= 0 {
		return 0
	}

	distance := r.Min - v
	if v > r.Max {
		distance = v - r.Max
	}

	steps := distance / r.Tolerance
	if steps <= 1 {
		return 100 - 50*steps
	}
	return math.Max(0, 50-50*(steps-1))
}

func categoryScore(value string, c models.Compatibility) float64 {
	value = strings.ToLower(strings.TrimSpace(value))
	switch {
	case contains(c.Good, value):
		return GoodMatchScore
	case contains(c.Bad, value):
		return BadMatchScore
	default:
		return NeutralMatchScore
	}
}

func contains(set []string, value string) bool {
	for _, s := range set {
		if strings.EqualFold(s, value) {
			return true
		}
	}
	return false
}

func roundScore(v float64) int {
	return int(math.Round(math.Min(100, math.Max(0, v))))
}

package models

import (
	"sort"
	"strings"
	"time"
)

// SoilType is one entry of the fixed soil vocabulary.
type SoilType string

const (
	SoilClay      SoilType = "clay"
	SoilLoam      SoilType = "loam"
	SoilSand      SoilType = "sand"
	SoilSilt      SoilType = "silt"
	SoilChalk     SoilType = "chalk"
	SoilPeat      SoilType = "peat"
	SoilClayLoam  SoilType = "clay_loam"
	SoilSandyLoam SoilType = "sandy_loam"
)

var knownSoilTypes = map[SoilType]struct{}{
	SoilClay: {}, SoilLoam: {}, SoilSand: {}, SoilSilt: {},
	SoilChalk: {}, SoilPeat: {}, SoilClayLoam: {}, SoilSandyLoam: {},
}

// Valid reports whether the soil type belongs to the vocabulary.
func (s SoilType) Valid() bool {
	_, ok := knownSoilTypes[s]
	return ok
}

// ParseSoilTypes converts a free-text, comma-separated soil description into a
// sorted, de-duplicated set of known soil types.
func ParseSoilTypes(raw string) ([]SoilType, error) {
	seen := make(map[SoilType]struct{})
	var out []SoilType

	for _, part := range strings.Split(raw, ",") {
		token := strings.ToLower(strings.TrimSpace(part))
		if token == "" {
			continue
		}
		token = strings.ReplaceAll(strings.ReplaceAll(token, " ", "_"), "-", "_")

		st := SoilType(token)
		if !st.Valid() {
			return nil, NewValidationError("soil.soilType", part, "unknown soil type")
		}
		if _, dup := seen[st]; dup {
			continue
		}
		seen[st] = struct{}{}
		out = append(out, st)
	}

	if len(out) == 0 {
		return nil, NewValidationError("soil.soilType", raw, "at least one soil type is required")
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// SoilSample is one physical sample of a soil analysis. Nil analytes are
// treated as missing and rejected by the aggregator.
type SoilSample struct {
	SampleNumber  int      `bson:"sample_number" json:"sampleNumber"`
	DepthCm       *float64 `bson:"depth_cm" json:"depthCm"`
	PH            *float64 `bson:"ph" json:"pH"`
	Nitrogen      *float64 `bson:"nitrogen" json:"nitrogen"`
	Phosphorus    *float64 `bson:"phosphorus" json:"phosphorus"`
	Potassium     *float64 `bson:"potassium" json:"potassium"`
	OrganicMatter *float64 `bson:"organic_matter" json:"organicMatter"`
}

// SoilAnalysis is one sampling event for a parcel.
type SoilAnalysis struct {
	ID             string       `bson:"_id" json:"id"`
	ParcelID       string       `bson:"parcel_id" json:"parcelId"`
	Date           time.Time    `bson:"date" json:"date"`
	Notes          string       `bson:"notes" json:"notes"`
	LaboratoryName string       `bson:"laboratory_name,omitempty" json:"laboratoryName,omitempty"`
	Samples        []SoilSample `bson:"samples" json:"samples"`
	CreatedAt      time.Time    `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time    `bson:"updated_at" json:"updatedAt"`
}

// AnalyteMean keeps the full-precision mean next to its display rounding.
type AnalyteMean struct {
	Raw     float64 `json:"raw"`
	Display float64 `json:"display"`
}

// SoilStatistics is derived from the samples of one analysis and never stored.
type SoilStatistics struct {
	SampleCount   int          `json:"sampleCount"`
	PH            *AnalyteMean `json:"pH"`
	Nitrogen      *AnalyteMean `json:"nitrogen"`
	Phosphorus    *AnalyteMean `json:"phosphorus"`
	Potassium     *AnalyteMean `json:"potassium"`
	OrganicMatter *AnalyteMean `json:"organicMatter"`
}

// SoilTrend holds raw deltas (current - previous) between two analyses.
type SoilTrend struct {
	PH            *float64 `json:"pH"`
	Nitrogen      *float64 `json:"nitrogen"`
	Phosphorus    *float64 `json:"phosphorus"`
	Potassium     *float64 `json:"potassium"`
	OrganicMatter *float64 `json:"organicMatter"`
}

package models

// Range is an ideal interval with a tolerance width used to degrade scores
// outside of it.
type Range struct {
	Min       float64 `yaml:"min" json:"min"`
	Max       float64 `yaml:"max" json:"max"`
	Tolerance float64 `yaml:"tolerance" json:"tolerance"`
}

// Contains reports whether v lies inside [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Compatibility splits categorical values into good, neutral and bad matches.
type Compatibility struct {
	Good    []string `yaml:"good" json:"good"`
	Neutral []string `yaml:"neutral" json:"neutral"`
	Bad     []string `yaml:"bad" json:"bad"`
}

// Empty reports whether no categorical requirement is defined.
func (c Compatibility) Empty() bool {
	return len(c.Good) == 0 && len(c.Neutral) == 0 && len(c.Bad) == 0
}

// CropProfile holds the agronomic requirements of one crop. A nil range means
// the crop has no requirement for that parameter.
type CropProfile struct {
	ID             string        `yaml:"id" json:"id"`
	Name           string        `yaml:"name" json:"name"`
	Temperature    *Range        `yaml:"temperature" json:"temperature,omitempty"`
	Precipitation  *Range        `yaml:"precipitation" json:"precipitation,omitempty"`
	FrostDays      *Range        `yaml:"frostDays" json:"frostDays,omitempty"`
	PH             *Range        `yaml:"pH" json:"pH,omitempty"`
	WaterRetention *Range        `yaml:"waterRetention" json:"waterRetention,omitempty"`
	Nitrogen       *Range        `yaml:"nitrogen" json:"nitrogen,omitempty"`
	Elevation      *Range        `yaml:"elevation" json:"elevation,omitempty"`
	Soil           Compatibility `yaml:"soil" json:"soil"`
	Rotation       Compatibility `yaml:"rotation" json:"rotation"`
}

// Parameter names a scorable condition.
type Parameter string

const (
	ParamTemperature    Parameter = "temperature"
	ParamPrecipitation  Parameter = "precipitation"
	ParamFrostDays      Parameter = "frostDays"
	ParamPH             Parameter = "pH"
	ParamSoilType       Parameter = "soilType"
	ParamWaterRetention Parameter = "waterRetention"
	ParamNitrogen       Parameter = "nitrogen"
	ParamElevation      Parameter = "elevation"
	ParamPreviousCrop   Parameter = "previousCrop"
)

// Level is the qualitative reading of a 0-100 score.
type Level string

const (
	LevelExcellent  Level = "excellent"
	LevelGood       Level = "good"
	LevelModerate   Level = "moderate"
	LevelAcceptable Level = "acceptable"
	LevelLow        Level = "low"
)

// ParameterExplanation is one line of a recommendation breakdown.
type ParameterExplanation struct {
	Parameter Parameter `json:"parameter"`
	Level     Level     `json:"level"`
	Score     int       `json:"score"`
}

// CropRecommendation is the suitability result of one crop.
type CropRecommendation struct {
	CropID       string                 `json:"cropId"`
	Name         string                 `json:"name"`
	Score        int                    `json:"score"`
	Level        Level                  `json:"level"`
	Explanations []ParameterExplanation `json:"explanations"`
}

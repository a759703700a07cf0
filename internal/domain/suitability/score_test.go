package suitability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bondastefana/farm-management-app/internal/domain/models"
)

func num(v float64) models.Field[float64] {
	return models.Field[float64]{Value: &v, Source: models.SourceAuto}
}

func soilTypes(types ...models.SoilType) models.Field[[]models.SoilType] {
	return models.Field[[]models.SoilType]{Value: &types, Source: models.SourceManual}
}

func previous(id string) models.Field[string] {
	return models.Field[string]{Value: &id, Source: models.SourceManual}
}

func testCrop(id string) models.CropProfile {
	return models.CropProfile{
		ID:             id,
		Name:           id,
		Temperature:    &models.Range{Min: 8, Max: 15, Tolerance: 4},
		Precipitation:  &models.Range{Min: 450, Max: 750, Tolerance: 150},
		FrostDays:      &models.Range{Min: 0, Max: 120, Tolerance: 30},
		PH:             &models.Range{Min: 6, Max: 7, Tolerance: 1},
		WaterRetention: &models.Range{Min: 35, Max: 60, Tolerance: 15},
		Nitrogen:       &models.Range{Min: 1.2, Max: 3, Tolerance: 0.6},
		Elevation:      &models.Range{Min: 0, Max: 800, Tolerance: 300},
		Soil:           models.Compatibility{Good: []string{"loam"}, Neutral: []string{"clay"}, Bad: []string{"sand"}},
		Rotation:       models.Compatibility{Good: []string{"soybean"}, Bad: []string{id}},
	}
}

func TestScore_MissingDataIsNeutral(t *testing.T) {
	// three of nine parameters: inside range (100), one tolerance off (50)
	// and a bad soil match (20)
	var c models.LocationConditions
	c.Climate.Temperature = num(10)
	c.Soil.PH = num(8)
	c.Soil.SoilType = soilTypes(models.SoilSand)

	got := Score(c, []models.CropProfile{testCrop("wheat")})
	require.Len(t, got, 1)

	rec := got[0]
	assert.Equal(t, 57, rec.Score) // (100 + 50 + 20) / 3
	assert.Equal(t, models.LevelModerate, rec.Level)
	assert.Equal(t, []models.ParameterExplanation{
		{Parameter: models.ParamTemperature, Level: models.LevelExcellent, Score: 100},
		{Parameter: models.ParamPH, Level: models.LevelModerate, Score: 50},
		{Parameter: models.ParamSoilType, Level: models.LevelLow, Score: 20},
	}, rec.Explanations)
}

func TestScore_AllParameters(t *testing.T) {
	var c models.LocationConditions
	c.Climate.Temperature = num(12)
	c.Climate.Precipitation = num(600)
	c.Climate.FrostDays = num(90)
	c.Soil.PH = num(6.5)
	c.Soil.SoilType = soilTypes(models.SoilLoam)
	c.Soil.WaterRetention = num(45)
	c.Soil.Nitrogen = num(1.8)
	c.Altitude.Elevation = num(150)
	c.PreviousCrop.CropID = previous("soybean")

	got := Score(c, []models.CropProfile{testCrop("wheat")})
	require.Len(t, got, 1)
	assert.Equal(t, 100, got[0].Score)
	assert.Len(t, got[0].Explanations, 9)
	assert.Equal(t, models.LevelExcellent, got[0].Level)
}

func TestScore_EmptyConditions(t *testing.T) {
	got := Score(models.LocationConditions{ParcelID: "p1"}, DefaultCatalog())
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestScore_CropWithoutEvaluableParameters(t *testing.T) {
	var c models.LocationConditions
	c.Climate.Temperature = num(12)

	bare := models.CropProfile{ID: "bare", Name: "No requirements"}
	got := Score(c, []models.CropProfile{bare, testCrop("wheat")})

	require.Len(t, got, 1)
	assert.Equal(t, "wheat", got[0].CropID)
}

func TestScore_DeterministicOrdering(t *testing.T) {
	var c models.LocationConditions
	c.Climate.Temperature = num(18)
	c.Soil.SoilType = soilTypes(models.SoilClay, models.SoilLoam)

	better := testCrop("alpha")
	better.Temperature = &models.Range{Min: 15, Max: 25, Tolerance: 4}

	catalog := []models.CropProfile{testCrop("zeta"), testCrop("beta"), better, testCrop("delta")}

	first := Score(c, catalog)
	second := Score(c, catalog)
	assert.Equal(t, first, second)

	ids := make([]string, len(first))
	for i, r := range first {
		ids[i] = r.CropID
	}
	assert.Equal(t, []string{"alpha", "beta", "delta", "zeta"}, ids)
	assert.Greater(t, first[0].Score, first[1].Score)
	assert.Equal(t, first[1].Score, first[2].Score)
}

func TestScore_BestSoilMatchWins(t *testing.T) {
	var c models.LocationConditions
	c.Soil.SoilType = soilTypes(models.SoilClay, models.SoilLoam, models.SoilSand)

	got := Score(c, []models.CropProfile{testCrop("wheat")})
	require.Len(t, got, 1)
	assert.Equal(t, 100, got[0].Score)
}

func TestScore_Rotation(t *testing.T) {
	tests := []struct {
		name     string
		previous string
		want     int
	}{
		{"good predecessor", "soybean", GoodMatchScore},
		{"monoculture", "wheat", BadMatchScore},
		{"unlisted predecessor", "potato", NeutralMatchScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c models.LocationConditions
			c.PreviousCrop.CropID = previous(tt.previous)

			got := Score(c, []models.CropProfile{testCrop("wheat")})
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Score)
		})
	}
}

func TestRangeScore(t *testing.T) {
	r := models.Range{Min: 10, Max: 20, Tolerance: 4}

	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"lower bound", 10, 100},
		{"inside", 15, 100},
		{"upper bound", 20, 100},
		{"half tolerance below", 8, 75},
		{"one tolerance above", 24, 50},
		{"one and a half tolerances above", 26, 25},
		{"two tolerances below", 2, 0},
		{"far away", 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, rangeScore(tt.value, r), 1e-9)
		})
	}

	hard := models.Range{Min: 0, Max: 1}
	assert.InDelta(t, 0, rangeScore(1.01, hard), 1e-9)
}

func TestRangeScore_Monotonic(t *testing.T) {
	r := models.Range{Min: 6, Max: 7, Tolerance: 0.5}
	last := 100.0
	for v := 7.0; v <= 9.0; v += 0.05 {
		got := rangeScore(v, r)
		assert.LessOrEqual(t, got, last)
		last = got
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		score int
		want  models.Level
	}{
		{100, models.LevelExcellent},
		{80, models.LevelExcellent},
		{79, models.LevelGood},
		{65, models.LevelGood},
		{64, models.LevelModerate},
		{50, models.LevelModerate},
		{49, models.LevelAcceptable},
		{35, models.LevelAcceptable},
		{34, models.LevelLow},
		{0, models.LevelLow},
	}

	for _, tt := range tests {
		if got := LevelFor(tt.score); got != tt.want {
			t.Errorf("LevelFor(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

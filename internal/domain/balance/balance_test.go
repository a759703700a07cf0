package balance

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bondastefana/farm-management-app/internal/domain/models"
)

func TestNeededStock_EndToEnd(t *testing.T) {
	inventory := models.Inventory{models.SpeciesCow: 10, models.SpeciesHorse: 5}
	rates := []models.ConsumptionRate{
		{Species: models.SpeciesCow, FoodType: models.FoodConcentrates, KgPerAnimalPerDay: 2},
	}
	periods := []models.FeedingPeriod{{FoodType: models.FoodConcentrates, DaysPerYear: 300}}

	needed, err := NeededStock(inventory, rates, periods)
	require.NoError(t, err)

	assert.InDelta(t, 6000, needed.ByFoodType[models.FoodConcentrates], 1e-9)
	assert.InDelta(t, 6000, needed.TotalKg, 1e-9)
	assert.InDelta(t, 6000, needed.BySpecies[models.SpeciesCow][models.FoodConcentrates], 1e-9)
	assert.NotContains(t, needed.BySpecies, models.SpeciesHorse)

	plans := []models.ProductionPlan{{
		ID:              "plan-1",
		Culture:         "Triticale",
		CropType:        models.FoodConcentrates,
		SurfaceHectares: 5,
		EstimatedYield:  3,
		LossPercentage:  0,
	}}

	report, err := ProductionBalance(plans, needed)
	require.NoError(t, err)
	require.Len(t, report.Foods, 1)

	food := report.Foods[0]
	assert.InDelta(t, 15, food.PlannedNetTonnes, 1e-9)
	assert.InDelta(t, 15000, food.PlannedNetKg, 1e-9)
	require.NotNil(t, food.CoveragePercent)
	assert.InDelta(t, 250, *food.CoveragePercent, 1e-9)
	assert.InDelta(t, 9000, food.DeficitOrSurplusKg, 1e-9)
	assert.Equal(t, models.StatusSurplus, food.Status)
	assert.Nil(t, report.Plans[0].AdditionalSurfaceHectares)
}

func TestNeededStock_DefaultPeriodAndAggregation(t *testing.T) {
	inventory := models.Inventory{models.SpeciesCow: 2, models.SpeciesSheep: 10}
	rates := []models.ConsumptionRate{
		{Species: models.SpeciesSheep, FoodType: models.FoodHay, KgPerAnimalPerDay: 1.5},
		{Species: models.SpeciesCow, FoodType: models.FoodHay, KgPerAnimalPerDay: 10},
		{Species: models.SpeciesCow, FoodType: models.FoodSilage, KgPerAnimalPerDay: 20},
		{Species: models.SpeciesGoat, FoodType: models.FoodHay, KgPerAnimalPerDay: 2},
	}

	needed, err := NeededStock(inventory, rates, nil)
	require.NoError(t, err)

	assert.InDelta(t, 2*10*365+10*1.5*365, needed.ByFoodType[models.FoodHay], 1e-6)
	assert.InDelta(t, 2*20*365, needed.ByFoodType[models.FoodSilage], 1e-6)
	assert.InDelta(t, 7300+14600+5475, needed.TotalKg, 1e-6)
	assert.InDelta(t, 0, needed.BySpecies[models.SpeciesGoat][models.FoodHay], 1e-9)

	require.Len(t, needed.Lines, 4)
	assert.Equal(t, models.SpeciesCow, needed.Lines[0].Species)
	assert.Equal(t, models.FoodHay, needed.Lines[0].FoodType)
	assert.Equal(t, models.SpeciesSheep, needed.Lines[3].Species)
}

func TestResetConsumptionRates(t *testing.T) {
	inventory := models.Inventory{models.SpeciesCow: 10, models.SpeciesHorse: 5}
	rates := []models.ConsumptionRate{
		{Species: models.SpeciesCow, FoodType: models.FoodHay, KgPerAnimalPerDay: 12},
		{Species: models.SpeciesCow, FoodType: models.FoodConcentrates, KgPerAnimalPerDay: 2},
		{Species: models.SpeciesHorse, FoodType: models.FoodHay, KgPerAnimalPerDay: 8},
	}

	reset := ResetConsumptionRates(rates, models.SpeciesCow)
	assert.InDelta(t, 12, rates[0].KgPerAnimalPerDay, 1e-9, "input must not be mutated")

	needed, err := NeededStock(inventory, reset, nil)
	require.NoError(t, err)

	for _, ft := range models.AllFoodTypes {
		assert.InDelta(t, 0, needed.BySpecies[models.SpeciesCow][ft], 1e-9)
	}
	assert.InDelta(t, 5*8*365, needed.BySpecies[models.SpeciesHorse][models.FoodHay], 1e-9)
	assert.InDelta(t, 5*8*365, needed.TotalKg, 1e-9)
}

func TestNeededStock_Validation(t *testing.T) {
	tests := []struct {
		name      string
		inventory models.Inventory
		rates     []models.ConsumptionRate
		periods   []models.FeedingPeriod
	}{
		{
			name:      "negative animals",
			inventory: models.Inventory{models.SpeciesCow: -1},
		},
		{
			name:  "negative rate",
			rates: []models.ConsumptionRate{{Species: models.SpeciesCow, FoodType: models.FoodHay, KgPerAnimalPerDay: -1}},
		},
		{
			name:  "NaN rate",
			rates: []models.ConsumptionRate{{Species: models.SpeciesCow, FoodType: models.FoodHay, KgPerAnimalPerDay: math.NaN()}},
		},
		{
			name:  "infinite rate",
			rates: []models.ConsumptionRate{{Species: models.SpeciesCow, FoodType: models.FoodHay, KgPerAnimalPerDay: math.Inf(1)}},
		},
		{
			name:  "unknown food type",
			rates: []models.ConsumptionRate{{Species: models.SpeciesCow, FoodType: "straw", KgPerAnimalPerDay: 1}},
		},
		{
			name:  "unknown species",
			rates: []models.ConsumptionRate{{Species: "llama", FoodType: models.FoodHay, KgPerAnimalPerDay: 1}},
		},
		{
			name: "duplicate rate",
			rates: []models.ConsumptionRate{
				{Species: models.SpeciesCow, FoodType: models.FoodHay, KgPerAnimalPerDay: 1},
				{Species: models.SpeciesCow, FoodType: models.FoodHay, KgPerAnimalPerDay: 2},
			},
		},
		{
			name:    "zero day period",
			periods: []models.FeedingPeriod{{FoodType: models.FoodHay, DaysPerYear: 0}},
		},
		{
			name:    "period longer than a year",
			periods: []models.FeedingPeriod{{FoodType: models.FoodHay, DaysPerYear: 366}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NeededStock(tt.inventory, tt.rates, tt.periods)
			var verr *models.ValidationError
			assert.True(t, errors.As(err, &verr), "got %v", err)
		})
	}
}

func TestProductionBalance_UnitConversion(t *testing.T) {
	needed := models.NeededStockReport{
		ByFoodType: map[models.FoodType]float64{models.FoodGrains: 15000},
		TotalKg:    15000,
	}
	plans := []models.ProductionPlan{{
		ID:              "p",
		CropType:        models.FoodGrains,
		SurfaceHectares: 10,
		EstimatedYield:  2,
		LossPercentage:  10,
	}}

	report, err := ProductionBalance(plans, needed)
	require.NoError(t, err)

	plan := report.Plans[0]
	assert.InDelta(t, 20, plan.GrossTonnes, 1e-9)
	assert.InDelta(t, 2, plan.LossesTonnes, 1e-9)
	assert.InDelta(t, 18, plan.NetTonnes, 1e-9)

	food := report.Foods[0]
	assert.InDelta(t, 18000, food.PlannedNetKg, 1e-9)
	assert.InDelta(t, 120, *food.CoveragePercent, 1e-9)
	assert.InDelta(t, 3000, food.DeficitOrSurplusKg, 1e-9)
	assert.Equal(t, models.StatusSurplus, food.Status)
}

func TestProductionBalance_Deficit(t *testing.T) {
	needed := models.NeededStockReport{
		ByFoodType: map[models.FoodType]float64{models.FoodHay: 100000, models.FoodSilage: 30000},
	}
	plans := []models.ProductionPlan{
		{ID: "a", Culture: "Meadow", CropType: models.FoodHay, SurfaceHectares: 10, EstimatedYield: 4, LossPercentage: 0},
		{ID: "b", Culture: "Alfalfa", CropType: models.FoodHay, SurfaceHectares: 5, EstimatedYield: 8, LossPercentage: 0},
	}

	report, err := ProductionBalance(plans, needed)
	require.NoError(t, err)
	require.Len(t, report.Foods, 2)

	hay := report.Foods[0]
	assert.Equal(t, models.FoodHay, hay.FoodType)
	assert.InDelta(t, 80, *hay.CoveragePercent, 1e-9)
	assert.InDelta(t, -20000, hay.DeficitOrSurplusKg, 1e-9)
	assert.Equal(t, models.StatusDeficit, hay.Status)
	assert.Equal(t, 2, hay.Plans)

	// 20 t missing: 5 ha at 4 t/ha or 2.5 ha at 8 t/ha
	require.NotNil(t, report.Plans[0].AdditionalSurfaceHectares)
	assert.InDelta(t, 5, *report.Plans[0].AdditionalSurfaceHectares, 1e-9)
	assert.InDelta(t, 2.5, *report.Plans[1].AdditionalSurfaceHectares, 1e-9)
	assert.True(t, report.Plans[0].SharedCropType)
	assert.True(t, report.Plans[1].SharedCropType)

	silage := report.Foods[1]
	assert.Equal(t, models.FoodSilage, silage.FoodType)
	assert.InDelta(t, 0, *silage.CoveragePercent, 1e-9)
	assert.Equal(t, models.StatusDeficit, silage.Status)
	assert.Equal(t, 0, silage.Plans)
}

func TestProductionBalance_ZeroNeed(t *testing.T) {
	plans := []models.ProductionPlan{
		{ID: "a", CropType: models.FoodGrains, SurfaceHectares: 1, EstimatedYield: 5, LossPercentage: 100},
		{ID: "b", CropType: models.FoodHay, SurfaceHectares: 1, EstimatedYield: 5, LossPercentage: 0},
	}

	report, err := ProductionBalance(plans, models.NeededStockReport{})
	require.NoError(t, err)
	require.Len(t, report.Foods, 2)

	hay, grains := report.Foods[0], report.Foods[1]

	assert.Equal(t, models.FoodHay, hay.FoodType)
	require.NotNil(t, hay.CoveragePercent)
	assert.InDelta(t, 0, *hay.CoveragePercent, 1e-9)
	assert.Equal(t, models.StatusSurplus, hay.Status)

	assert.Equal(t, models.FoodGrains, grains.FoodType)
	assert.Nil(t, grains.CoveragePercent)
	assert.Equal(t, models.StatusSufficient, grains.Status)
}

func TestProductionBalance_OrderIndependent(t *testing.T) {
	needed := models.NeededStockReport{ByFoodType: map[models.FoodType]float64{models.FoodGrains: 12345.6}}
	plans := []models.ProductionPlan{
		{ID: "a", CropType: models.FoodGrains, SurfaceHectares: 1.1, EstimatedYield: 3.3, LossPercentage: 7},
		{ID: "b", CropType: models.FoodGrains, SurfaceHectares: 2.2, EstimatedYield: 4.4, LossPercentage: 3},
		{ID: "c", CropType: models.FoodGrains, SurfaceHectares: 0.7, EstimatedYield: 5.1, LossPercentage: 11},
	}
	reversed := []models.ProductionPlan{plans[2], plans[1], plans[0]}

	first, err := ProductionBalance(plans, needed)
	require.NoError(t, err)
	second, err := ProductionBalance(reversed, needed)
	require.NoError(t, err)

	assert.Equal(t, first.Foods, second.Foods)
}

func TestProductionBalance_InvalidPlan(t *testing.T) {
	tests := []struct {
		name  string
		plan  models.ProductionPlan
		field string
	}{
		{"unknown crop type", models.ProductionPlan{CropType: "beets", SurfaceHectares: 1, EstimatedYield: 1}, "plans[0].cropType"},
		{"zero surface", models.ProductionPlan{CropType: models.FoodHay, EstimatedYield: 1}, "plans[0].surfaceHectares"},
		{"zero yield", models.ProductionPlan{CropType: models.FoodHay, SurfaceHectares: 1}, "plans[0].estimatedYield"},
		{"loss above 100", models.ProductionPlan{CropType: models.FoodHay, SurfaceHectares: 1, EstimatedYield: 1, LossPercentage: 120}, "plans[0].lossPercentage"},
		{"NaN surface", models.ProductionPlan{CropType: models.FoodHay, SurfaceHectares: math.NaN(), EstimatedYield: 1}, "plans[0].surfaceHectares"},
		{"infinite yield", models.ProductionPlan{CropType: models.FoodHay, SurfaceHectares: 1, EstimatedYield: math.Inf(1)}, "plans[0].estimatedYield"},
		{"NaN loss", models.ProductionPlan{CropType: models.FoodHay, SurfaceHectares: 1, EstimatedYield: 1, LossPercentage: math.NaN()}, "plans[0].lossPercentage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ProductionBalance([]models.ProductionPlan{tt.plan}, models.NeededStockReport{})
			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestUnitBoundary(t *testing.T) {
	assert.InDelta(t, 15000, tonnesToKg(15), 1e-9)
	assert.InDelta(t, 15, kgToTonnes(15000), 1e-9)
}

package models

import "time"

// Species enumerates the animals tracked by the inventory.
type Species string

const (
	SpeciesCow     Species = "cow"
	SpeciesHorse   Species = "horse"
	SpeciesSheep   Species = "sheep"
	SpeciesGoat    Species = "goat"
	SpeciesPig     Species = "pig"
	SpeciesChicken Species = "chicken"
)

// AllSpecies lists the species vocabulary in a stable order.
var AllSpecies = []Species{SpeciesCow, SpeciesHorse, SpeciesSheep, SpeciesGoat, SpeciesPig, SpeciesChicken}

// Valid reports whether the species belongs to the vocabulary.
func (s Species) Valid() bool {
	for _, known := range AllSpecies {
		if s == known {
			return true
		}
	}
	return false
}

// FoodType enumerates the feed categories. Production plans use the same ids
// as their crop type.
type FoodType string

const (
	FoodHay          FoodType = "hay"
	FoodSilage       FoodType = "silage"
	FoodConcentrates FoodType = "concentrates"
	FoodGrains       FoodType = "grains"
)

// AllFoodTypes lists the food vocabulary in a stable order.
var AllFoodTypes = []FoodType{FoodHay, FoodSilage, FoodConcentrates, FoodGrains}

// Valid reports whether the food type belongs to the vocabulary.
func (f FoodType) Valid() bool {
	for _, known := range AllFoodTypes {
		if f == known {
			return true
		}
	}
	return false
}

// DefaultFeedingDays applies when no feeding period is configured.
const DefaultFeedingDays = 365

// Inventory holds animal counts per species.
type Inventory map[Species]int

// ConsumptionRate is the daily ration of one food type for one animal.
type ConsumptionRate struct {
	Species           Species  `bson:"species" json:"species"`
	FoodType          FoodType `bson:"food_type" json:"foodType"`
	KgPerAnimalPerDay float64  `bson:"kg_per_animal_per_day" json:"kgPerAnimalPerDay"`
}

// FeedingPeriod is the number of days per year a food type is fed.
type FeedingPeriod struct {
	FoodType    FoodType `bson:"_id" json:"foodType"`
	DaysPerYear int      `bson:"days_per_year" json:"daysPerYear"`
}

// ProductionPlan is a planned crop for feed production.
type ProductionPlan struct {
	ID              string     `bson:"_id" json:"id"`
	Culture         string     `bson:"culture" json:"culture"`
	CropType        FoodType   `bson:"crop_type" json:"cropType"`
	SurfaceHectares float64    `bson:"surface_hectares" json:"surfaceHectares"`
	EstimatedYield  float64    `bson:"estimated_yield" json:"estimatedYield"`
	LossPercentage  float64    `bson:"loss_percentage" json:"lossPercentage"`
	HarvestDate     *time.Time `bson:"harvest_date,omitempty" json:"harvestDate,omitempty"`
	HarvestSeason   string     `bson:"harvest_season" json:"harvestSeason"`
	CreatedAt       time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `bson:"updated_at" json:"updatedAt"`
}

// NeededStockLine is the yearly need of one species for one food type.
type NeededStockLine struct {
	Species         Species  `json:"species"`
	FoodType        FoodType `json:"foodType"`
	Animals         int      `json:"animals"`
	AnnualPerAnimal float64  `json:"annualPerAnimalKg"`
	TotalKg         float64  `json:"totalKg"`
}

// NeededStockReport is the yearly feed need of the inventory, in kilograms.
type NeededStockReport struct {
	Lines      []NeededStockLine                `json:"lines"`
	BySpecies  map[Species]map[FoodType]float64 `json:"bySpecies"`
	ByFoodType map[FoodType]float64             `json:"byFoodType"`
	TotalKg    float64                          `json:"totalKg"`
}

// BalanceStatus summarises planned production against need.
type BalanceStatus string

const (
	StatusDeficit    BalanceStatus = "deficit"
	StatusSufficient BalanceStatus = "sufficient"
	StatusSurplus    BalanceStatus = "surplus"
)

// PlanProduction is the computed output of one production plan.
type PlanProduction struct {
	PlanID                    string   `json:"planId"`
	Culture                   string   `json:"culture"`
	CropType                  FoodType `json:"cropType"`
	GrossTonnes               float64  `json:"grossTonnes"`
	LossesTonnes              float64  `json:"lossesTonnes"`
	NetTonnes                 float64  `json:"netTonnes"`
	AdditionalSurfaceHectares *float64 `json:"additionalSurfaceHectares,omitempty"`
	SharedCropType            bool     `json:"sharedCropType"`
}

// FoodBalance compares planned production and need for one food type.
type FoodBalance struct {
	FoodType           FoodType      `json:"foodType"`
	NeededKg           float64       `json:"neededKg"`
	PlannedNetTonnes   float64       `json:"plannedNetTonnes"`
	PlannedNetKg       float64       `json:"plannedNetKg"`
	CoveragePercent    *float64      `json:"coveragePercent"`
	DeficitOrSurplusKg float64       `json:"deficitOrSurplusKg"`
	Status             BalanceStatus `json:"status"`
	Plans              int           `json:"plans"`
}

// ProductionBalanceReport is the outcome of comparing all plans with need.
type ProductionBalanceReport struct {
	Plans []PlanProduction `json:"plans"`
	Foods []FoodBalance    `json:"foods"`
}

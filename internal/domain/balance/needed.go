// Package balance computes the yearly feed need of the animal inventory and
// compares it with planned crop production.
package balance

import (
	"fmt"
	"math"
	"sort"

	"github.com/bondastefana/farm-management-app/internal/domain/models"
)

type rateKey struct {
	species  models.Species
	foodType models.FoodType
}

// NeededStock computes the yearly need, in kilograms, of every species and
// food type. Species without rates and rates without animals contribute 0.
func NeededStock(inventory models.Inventory, rates []models.ConsumptionRate, periods []models.FeedingPeriod) (models.NeededStockReport, error) {
	for species, count := range inventory {
		if count < 0 {
			return models.NeededStockReport{}, models.NewValidationError("inventory."+string(species), count, "animal count must not be negative")
		}
	}

	days, err := feedingDays(periods)
	if err != nil {
		return models.NeededStockReport{}, err
	}

	seen := make(map[rateKey]struct{}, len(rates))
	for i, r := range rates {
		field := fmt.Sprintf("rates[%d]", i)
		if !r.Species.Valid() {
			return models.NeededStockReport{}, models.NewValidationError(field+".species", r.Species, "unknown species")
		}
		if !r.FoodType.Valid() {
			return models.NeededStockReport{}, models.NewValidationError(field+".foodType", r.FoodType, "unknown food type")
		}
		if !(r.KgPerAnimalPerDay >= 0) || math.IsInf(r.KgPerAnimalPerDay, 1) {
			return models.NeededStockReport{}, models.NewValidationError(field+".kgPerAnimalPerDay", r.KgPerAnimalPerDay, "must be a finite number not below 0")
		}
		key := rateKey{species: r.Species, foodType: r.FoodType}
		if _, dup := seen[key]; dup {
			return models.NeededStockReport{}, models.NewValidationError(field, fmt.Sprintf("%s/%s", r.Species, r.FoodType), "duplicated rate")
		}
		seen[key] = struct{}{}
	}

	report := models.NeededStockReport{
		Lines:      []models.NeededStockLine{},
		BySpecies:  make(map[models.Species]map[models.FoodType]float64),
		ByFoodType: make(map[models.FoodType]float64),
	}

	for _, r := range rates {
		if r.KgPerAnimalPerDay == 0 {
			continue
		}
		animals := inventory[r.Species]
		annualPerAnimal := r.KgPerAnimalPerDay * float64(days[r.FoodType])
		total := annualPerAnimal * float64(animals)

		report.Lines = append(report.Lines, models.NeededStockLine{
			Species:         r.Species,
			FoodType:        r.FoodType,
			Animals:         animals,
			AnnualPerAnimal: annualPerAnimal,
			TotalKg:         total,
		})
	}

	sort.Slice(report.Lines, func(i, j int) bool {
		if report.Lines[i].Species != report.Lines[j].Species {
			return report.Lines[i].Species < report.Lines[j].Species
		}
		return report.Lines[i].FoodType < report.Lines[j].FoodType
	})

	// sums follow the sorted lines so the totals do not depend on input order
	for _, line := range report.Lines {
		perSpecies, ok := report.BySpecies[line.Species]
		if !ok {
			perSpecies = make(map[models.FoodType]float64)
			report.BySpecies[line.Species] = perSpecies
		}
		perSpecies[line.FoodType] += line.TotalKg
		report.ByFoodType[line.FoodType] += line.TotalKg
		report.TotalKg += line.TotalKg
	}

	return report, nil
}

// ResetConsumptionRates returns a copy of rates where every rate of species
// is zero. Rates of other species are unchanged.
func ResetConsumptionRates(rates []models.ConsumptionRate, species models.Species) []models.ConsumptionRate {
	out := make([]models.ConsumptionRate, len(rates))
	for i, r := range rates {
		if r.Species == species {
			r.KgPerAnimalPerDay = 0
		}
		out[i] = r
	}
	return out
}

func feedingDays(periods []models.FeedingPeriod) (map[models.FoodType]int, error) {
	days := make(map[models.FoodType]int, len(models.AllFoodTypes))
	for _, ft := range models.AllFoodTypes {
		days[ft] = models.DefaultFeedingDays
	}

	for _, p := range periods {
		if !p.FoodType.Valid() {
			return nil, models.NewValidationError("periods.foodType", p.FoodType, "unknown food type")
		}
		if p.DaysPerYear < 1 || p.DaysPerYear > 365 {
			return nil, models.NewValidationError("periods."+string(p.FoodType), p.DaysPerYear, "days per year must be within [1, 365]")
		}
		days[p.FoodType] = p.DaysPerYear
	}

	return days, nil
}

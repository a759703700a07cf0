package balance

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/bondastefana/farm-management-app/internal/domain/models"
)

// balanceEpsilon absorbs float noise when deciding between deficit, surplus
// and an exact match, in kilograms.
const balanceEpsilon = 1e-6

// ValidatePlan checks a production plan against its documented ranges.
func ValidatePlan(p models.ProductionPlan) error {
	switch {
	case !p.CropType.Valid():
		return models.NewValidationError("cropType", p.CropType, "unknown food type")
	case !finitePositive(p.SurfaceHectares):
		return models.NewValidationError("surfaceHectares", p.SurfaceHectares, "must be a finite number greater than 0")
	case !finitePositive(p.EstimatedYield):
		return models.NewValidationError("estimatedYield", p.EstimatedYield, "must be a finite number greater than 0")
	case !(p.LossPercentage >= 0 && p.LossPercentage <= 100):
		return models.NewValidationError("lossPercentage", p.LossPercentage, "must be within [0, 100]")
	}
	return nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// ProductionBalance compares the net production of the plans with the needed
// stock, per food type.
//
// Coverage is planned/needed*100. With no need and no production the coverage
// is undefined (nil) and the status sufficient; with no need but some
// production the coverage is reported as 0 and the status surplus.
//
// When a food type is in deficit, each of its plans reports the extra surface
// it alone would need at its own yield. If several plans share the food type
// that figure is an approximation and SharedCropType is set.
func ProductionBalance(plans []models.ProductionPlan, needed models.NeededStockReport) (models.ProductionBalanceReport, error) {
	report := models.ProductionBalanceReport{
		Plans: make([]models.PlanProduction, 0, len(plans)),
		Foods: []models.FoodBalance{},
	}

	for i, p := range plans {
		if err := ValidatePlan(p); err != nil {
			var verr *models.ValidationError
			if errors.As(err, &verr) {
				verr.Field = fmt.Sprintf("plans[%d].%s", i, verr.Field)
			}
			return models.ProductionBalanceReport{}, err
		}

		gross := p.SurfaceHectares * p.EstimatedYield
		losses := gross * p.LossPercentage / 100
		report.Plans = append(report.Plans, models.PlanProduction{
			PlanID:       p.ID,
			Culture:      p.Culture,
			CropType:     p.CropType,
			GrossTonnes:  gross,
			LossesTonnes: losses,
			NetTonnes:    gross - losses,
		})
	}

	plannedTonnes, planCount := sumByFoodType(report.Plans)

	for _, ft := range models.AllFoodTypes {
		neededKg := needed.ByFoodType[ft]
		if neededKg == 0 && planCount[ft] == 0 {
			continue
		}

		plannedKg := tonnesToKg(plannedTonnes[ft])
		food := models.FoodBalance{
			FoodType:           ft,
			NeededKg:           neededKg,
			PlannedNetTonnes:   plannedTonnes[ft],
			PlannedNetKg:       plannedKg,
			CoveragePercent:    coverage(plannedKg, neededKg),
			DeficitOrSurplusKg: plannedKg - neededKg,
			Status:             status(plannedKg, neededKg),
			Plans:              planCount[ft],
		}
		report.Foods = append(report.Foods, food)

		if food.Status != models.StatusDeficit {
			continue
		}
		missingTonnes := kgToTonnes(math.Abs(food.DeficitOrSurplusKg))
		for i := range report.Plans {
			if report.Plans[i].CropType != ft {
				continue
			}
			surface := missingTonnes / plans[i].EstimatedYield
			report.Plans[i].AdditionalSurfaceHectares = &surface
		}
	}

	for i := range report.Plans {
		report.Plans[i].SharedCropType = planCount[report.Plans[i].CropType] > 1
	}

	return report, nil
}

// sumByFoodType adds net production in plan id order so the totals do not
// depend on the order plans were listed in.
func sumByFoodType(rows []models.PlanProduction) (map[models.FoodType]float64, map[models.FoodType]int) {
	sorted := append([]models.PlanProduction(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PlanID < sorted[j].PlanID })

	tonnes := make(map[models.FoodType]float64)
	counts := make(map[models.FoodType]int)
	for _, row := range sorted {
		tonnes[row.CropType] += row.NetTonnes
		counts[row.CropType]++
	}
	return tonnes, counts
}

func coverage(plannedKg, neededKg float64) *float64 {
	if neededKg == 0 {
		if plannedKg == 0 {
			return nil
		}
		zero := 0.0
		return &zero
	}
	pct := plannedKg / neededKg * 100
	return &pct
}

func status(plannedKg, neededKg float64) models.BalanceStatus {
	switch diff := plannedKg - neededKg; {
	case diff < -balanceEpsilon:
		return models.StatusDeficit
	case diff > balanceEpsilon:
		return models.StatusSurplus
	default:
		return models.StatusSufficient
	}
}

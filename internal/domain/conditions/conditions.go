// Package conditions owns every write to a parcel's LocationConditions:
// automatic refreshes, reverts and manual edits.
package conditions

import (
	"time"

	"github.com/bondastefana/farm-management-app/internal/domain/models"
)

// leafMerger applies one fetched leaf onto the current record. It reports
// whether the fetch carried a value for that leaf.
type leafMerger func(cur *models.LocationConditions, in models.LocationConditions, force bool, now time.Time) bool

// autoLeaves lists the leaves the external data source may provide.
var autoLeaves = []leafMerger{
	func(c *models.LocationConditions, in models.LocationConditions, force bool, now time.Time) bool {
		return mergeField(&c.Climate.Temperature, in.Climate.Temperature, force, now)
	},
	func(c *models.LocationConditions, in models.LocationConditions, force bool, now time.Time) bool {
		return mergeField(&c.Climate.Precipitation, in.Climate.Precipitation, force, now)
	},
	func(c *models.LocationConditions, in models.LocationConditions, force bool, now time.Time) bool {
		return mergeField(&c.Climate.FrostDays, in.Climate.FrostDays, force, now)
	},
	func(c *models.LocationConditions, in models.LocationConditions, force bool, now time.Time) bool {
		return mergeField(&c.Soil.PH, in.Soil.PH, force, now)
	},
	func(c *models.LocationConditions, in models.LocationConditions, force bool, now time.Time) bool {
		return mergeField(&c.Soil.SoilType, in.Soil.SoilType, force, now)
	},
	func(c *models.LocationConditions, in models.LocationConditions, force bool, now time.Time) bool {
		return mergeField(&c.Soil.WaterRetention, in.Soil.WaterRetention, force, now)
	},
	func(c *models.LocationConditions, in models.LocationConditions, force bool, now time.Time) bool {
		return mergeField(&c.Soil.Nitrogen, in.Soil.Nitrogen, force, now)
	},
	func(c *models.LocationConditions, in models.LocationConditions, force bool, now time.Time) bool {
		return mergeField(&c.Altitude.Elevation, in.Altitude.Elevation, force, now)
	},
}

// MergeAutoUpdate folds a fresh automatic fetch into current. Leaves holding
// a manual override are left untouched; every other leaf offered by the fetch
// is replaced and tagged auto.
func MergeAutoUpdate(current, fetched models.LocationConditions, now time.Time) models.LocationConditions {
	return apply(current, fetched, false, now)
}

// RevertToAuto replaces every leaf offered by the fetch, manual or not. Leaves
// the fetch could not provide keep their current value.
func RevertToAuto(current, fetched models.LocationConditions, now time.Time) models.LocationConditions {
	return apply(current, fetched, true, now)
}

func apply(current, fetched models.LocationConditions, force bool, now time.Time) models.LocationConditions {
	next := current
	if !next.Location.HasCoordinates() && fetched.Location.HasCoordinates() {
		next.Location.Latitude = fetched.Location.Latitude
		next.Location.Longitude = fetched.Location.Longitude
	}
	if next.Location.Address == "" {
		next.Location.Address = fetched.Location.Address
	}

	offered := false
	for _, merge := range autoLeaves {
		if merge(&next, fetched, force, now) {
			offered = true
		}
	}

	if offered {
		fetchedAt := now
		next.LastAutoFetch = &fetchedAt
		next.LastUpdated = now
	}
	return next
}

func mergeField[T any](cur *models.Field[T], in models.Field[T], force bool, now time.Time) bool {
	if in.Value == nil {
		return false
	}
	if cur.IsManual() && !force {
		return true
	}

	modified := now
	*cur = models.Field[T]{
		Value:        in.Value,
		Unit:         in.Unit,
		Source:       models.SourceAuto,
		LastModified: &modified,
	}
	return true
}

// IsEmpty reports whether no scorable leaf holds a value yet.
func IsEmpty(c models.LocationConditions) bool {
	return !c.Climate.Temperature.Present() &&
		!c.Climate.Precipitation.Present() &&
		!c.Climate.FrostDays.Present() &&
		!c.Soil.PH.Present() &&
		!c.Soil.SoilType.Present() &&
		!c.Soil.WaterRetention.Present() &&
		!c.Soil.Nitrogen.Present() &&
		!c.Altitude.Elevation.Present() &&
		!c.PreviousCrop.CropID.Present()
}

package models

import "time"

// Source tags where a measurement came from.
type Source string

const (
	SourceAuto   Source = "auto"
	SourceManual Source = "manual"
)

// Field is one leaf measurement of a parcel's conditions. A nil Value means
// nothing has been recorded yet.
type Field[T any] struct {
	Value        *T         `bson:"value,omitempty" json:"value"`
	Unit         string     `bson:"unit,omitempty" json:"unit,omitempty"`
	Source       Source     `bson:"source,omitempty" json:"source,omitempty"`
	LastModified *time.Time `bson:"last_modified,omitempty" json:"lastModified,omitempty"`
}

// Present reports whether the field carries a value.
func (f Field[T]) Present() bool {
	return f.Value != nil
}

// IsManual reports whether the value was set by a user override.
func (f Field[T]) IsManual() bool {
	return f.Source == SourceManual
}

// Location identifies the parcel geographically.
type Location struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
	Address   string  `bson:"address,omitempty" json:"address,omitempty"`
}

// HasCoordinates reports whether a latitude/longitude pair was set.
func (l Location) HasCoordinates() bool {
	return l.Latitude != 0 || l.Longitude != 0
}

// Climate groups yearly climate figures.
type Climate struct {
	Temperature   Field[float64] `bson:"temperature" json:"temperature"`
	Precipitation Field[float64] `bson:"precipitation" json:"precipitation"`
	FrostDays     Field[float64] `bson:"frost_days" json:"frostDays"`
}

// SoilConditions groups the parcel's soil figures.
type SoilConditions struct {
	PH             Field[float64]    `bson:"ph" json:"pH"`
	SoilType       Field[[]SoilType] `bson:"soil_type" json:"soilType"`
	WaterRetention Field[float64]    `bson:"water_retention" json:"waterRetention"`
	Nitrogen       Field[float64]    `bson:"nitrogen" json:"nitrogen"`
}

// Altitude groups elevation data.
type Altitude struct {
	Elevation Field[float64] `bson:"elevation" json:"elevation"`
}

// PreviousCrop records what grew on the parcel last season.
type PreviousCrop struct {
	CropID      Field[string]    `bson:"crop_id" json:"cropId"`
	HarvestDate Field[time.Time] `bson:"harvest_date" json:"harvestDate"`
}

// LocationConditions is the typed record of a parcel's growing conditions.
type LocationConditions struct {
	ParcelID      string         `bson:"_id" json:"parcelId"`
	Location      Location       `bson:"location" json:"location"`
	Climate       Climate        `bson:"climate" json:"climate"`
	Soil          SoilConditions `bson:"soil" json:"soil"`
	Altitude      Altitude       `bson:"altitude" json:"altitude"`
	PreviousCrop  PreviousCrop   `bson:"previous_crop" json:"previousCrop"`
	LastAutoFetch *time.Time     `bson:"last_auto_fetch,omitempty" json:"lastAutoFetch,omitempty"`
	LastUpdated   time.Time      `bson:"last_updated" json:"lastUpdated"`
}

// AutoFetch is the normalized response of the external data source. Errors
// lists the categories that could not be fetched; the rest is still usable.
type AutoFetch struct {
	Conditions LocationConditions `json:"conditions"`
	Errors     []string           `json:"errors,omitempty"`
}

// Units used for the leaf measurements.
const (
	UnitCelsius      = "°C"
	UnitMillimeters  = "mm/yr"
	UnitDays         = "days"
	UnitPH           = "pH"
	UnitPercent      = "%"
	UnitMeters       = "m"
	UnitGramsPerKilo = "g/kg"
)

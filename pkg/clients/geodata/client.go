package geodata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/bondastefana/farm-management-app/internal/config"
	"github.com/bondastefana/farm-management-app/internal/domain/models"
)

// Categories reported in AutoFetch.Errors.
const (
	CategoryClimate  = "climate"
	CategorySoil     = "soil"
	CategoryAltitude = "altitude"
)

var (
	// ErrNoCoordinates is returned when a parcel has no latitude/longitude.
	ErrNoCoordinates = errors.New("parcel has no coordinates")
	// ErrAllSourcesFailed is returned when no category could be fetched.
	ErrAllSourcesFailed = errors.New("no external data source answered")
)

// archiveLag is how far behind the climate archive runs.
const archiveLag = 7 * 24 * time.Hour

// Client fetches the automatically available conditions of a location.
type Client interface {
	Fetch(ctx context.Context, location models.Location) (models.AutoFetch, error)
}

// APIClient is a resty-backed implementation of Client talking to Open-Meteo
// and ISRIC SoilGrids.
type APIClient struct {
	httpClient *resty.Client
	cfg        config.GeoDataConfig
	now        func() time.Time
	logger     *zap.Logger
}

// NewClient builds a geodata client from configuration.
func NewClient(cfg config.GeoDataConfig, logger *zap.Logger) *APIClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New()
	restyClient.
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	return &APIClient{
		httpClient: restyClient,
		cfg:        cfg,
		now:        time.Now,
		logger:     logger,
	}
}

// HTTPClient exposes the underlying resty client.
func (c *APIClient) HTTPClient() *resty.Client {
	return c.httpClient
}

// Fetch collects climate, soil and altitude figures for a location. A failing
// category is listed in the result's Errors and the other categories are
// still returned.
func (c *APIClient) Fetch(ctx context.Context, location models.Location) (models.AutoFetch, error) {
	if !location.HasCoordinates() {
		return models.AutoFetch{}, ErrNoCoordinates
	}

	result := models.AutoFetch{
		Conditions: models.LocationConditions{Location: location},
	}

	if climate, err := c.fetchClimate(ctx, location); err != nil {
		c.logger.Warn("climate fetch failed", zap.Error(err))
		result.Errors = append(result.Errors, CategoryClimate)
	} else {
		result.Conditions.Climate = climate
	}

	if soil, err := c.fetchSoil(ctx, location); err != nil {
		c.logger.Warn("soil fetch failed", zap.Error(err))
		result.Errors = append(result.Errors, CategorySoil)
	} else {
		result.Conditions.Soil = soil
	}

	if altitude, err := c.fetchAltitude(ctx, location); err != nil {
		c.logger.Warn("altitude fetch failed", zap.Error(err))
		result.Errors = append(result.Errors, CategoryAltitude)
	} else {
		result.Conditions.Altitude = altitude
	}

	if len(result.Errors) == 3 {
		return result, ErrAllSourcesFailed
	}

	return result, nil
}

type elevationResponse struct {
	Elevation []float64 `json:"elevation"`
}

func (c *APIClient) fetchAltitude(ctx context.Context, location models.Location) (models.Altitude, error) {
	endpoint := strings.TrimSuffix(c.cfg.OpenMeteoBaseURL, "/") + "/v1/elevation"

	var payload elevationResponse
	if err := c.getJSON(ctx, endpoint, coordinates(location, "latitude", "longitude"), &payload); err != nil {
		return models.Altitude{}, err
	}
	if len(payload.Elevation) == 0 {
		return models.Altitude{}, errors.New("elevation response is empty")
	}

	return models.Altitude{
		Elevation: autoField(payload.Elevation[0], models.UnitMeters),
	}, nil
}

type archiveResponse struct {
	Daily struct {
		Time        []string   `json:"time"`
		MeanTemp    []*float64 `json:"temperature_2m_mean"`
		MinTemp     []*float64 `json:"temperature_2m_min"`
		Precipitate []*float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

func (c *APIClient) fetchClimate(ctx context.Context, location models.Location) (models.Climate, error) {
	endpoint := strings.TrimSuffix(c.cfg.OpenMeteoArchiveURL, "/") + "/v1/archive"

	end := c.now().UTC().Add(-archiveLag)
	start := end.AddDate(-1, 0, 1)

	params := coordinates(location, "latitude", "longitude")
	params.Set("start_date", start.Format(time.DateOnly))
	params.Set("end_date", end.Format(time.DateOnly))
	params.Set("daily", "temperature_2m_mean,temperature_2m_min,precipitation_sum")
	params.Set("timezone", "auto")

	var payload archiveResponse
	if err := c.getJSON(ctx, endpoint, params, &payload); err != nil {
		return models.Climate{}, err
	}

	var (
		tempSum   float64
		tempDays  int
		rain      float64
		frostDays int
	)
	for _, v := range payload.Daily.MeanTemp {
		if v != nil {
			tempSum += *v
			tempDays++
		}
	}
	for _, v := range payload.Daily.MinTemp {
		if v != nil && *v < 0 {
			frostDays++
		}
	}
	for _, v := range payload.Daily.Precipitate {
		if v != nil {
			rain += *v
		}
	}

	if tempDays == 0 {
		return models.Climate{}, errors.New("climate archive returned no daily values")
	}

	return models.Climate{
		Temperature:   autoField(tempSum/float64(tempDays), models.UnitCelsius),
		Precipitation: autoField(rain, models.UnitMillimeters),
		FrostDays:     autoField(float64(frostDays), models.UnitDays),
	}, nil
}

type soilGridsResponse struct {
	Properties struct {
		Layers []struct {
			Name        string `json:"name"`
			UnitMeasure struct {
				DFactor float64 `json:"d_factor"`
			} `json:"unit_measure"`
			Depths []struct {
				Label  string `json:"label"`
				Values struct {
					Mean *float64 `json:"mean"`
				} `json:"values"`
			} `json:"depths"`
		} `json:"layers"`
	} `json:"properties"`
}

// topsoil returns the mapped values of the first depth interval, converted
// with each layer's d_factor.
func (r soilGridsResponse) topsoil() map[string]float64 {
	out := make(map[string]float64, len(r.Properties.Layers))
	for _, layer := range r.Properties.Layers {
		if len(layer.Depths) == 0 || layer.Depths[0].Values.Mean == nil {
			continue
		}
		factor := layer.UnitMeasure.DFactor
		if factor == 0 {
			factor = 1
		}
		out[layer.Name] = *layer.Depths[0].Values.Mean / factor
	}
	return out
}

func (c *APIClient) fetchSoil(ctx context.Context, location models.Location) (models.SoilConditions, error) {
	endpoint := strings.TrimSuffix(c.cfg.SoilGridsBaseURL, "/") + "/soilgrids/v2.0/properties/query"

	params := coordinates(location, "lat", "lon")
	for _, property := range []string{"phh2o", "nitrogen", "clay", "sand", "silt", "wv0033"} {
		params.Add("property", property)
	}
	params.Set("depth", "0-5cm")
	params.Set("value", "mean")

	var payload soilGridsResponse
	if err := c.getJSON(ctx, endpoint, params, &payload); err != nil {
		return models.SoilConditions{}, err
	}

	values := payload.topsoil()
	if len(values) == 0 {
		return models.SoilConditions{}, errors.New("soilgrids returned no values for this location")
	}

	var soil models.SoilConditions
	if v, ok := values["phh2o"]; ok {
		soil.PH = autoField(v, models.UnitPH)
	}
	if v, ok := values["nitrogen"]; ok {
		soil.Nitrogen = autoField(v, models.UnitGramsPerKilo)
	}
	if v, ok := values["wv0033"]; ok {
		soil.WaterRetention = autoField(v, models.UnitPercent)
	}
	clay, okClay := values["clay"]
	sand, okSand := values["sand"]
	silt, okSilt := values["silt"]
	if okClay && okSand && okSilt {
		soil.SoilType = autoField([]models.SoilType{TextureClass(sand, silt, clay)}, "")
	}

	return soil, nil
}

// TextureClass maps sand/silt/clay percentages to the closest soil type.
func TextureClass(sand, silt, clay float64) models.SoilType {
	switch {
	case clay >= 40:
		return models.SoilClay
	case clay >= 27:
		return models.SoilClayLoam
	case silt >= 80:
		return models.SoilSilt
	case sand >= 85:
		return models.SoilSand
	case sand >= 43 && clay < 20:
		return models.SoilSandyLoam
	default:
		return models.SoilLoam
	}
}

func (c *APIClient) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		Get(endpoint)
	if err != nil {
		return fmt.Errorf("request %s: %w", endpoint, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("request %s failed with status %d", endpoint, resp.StatusCode())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}

	return nil
}

func coordinates(location models.Location, latKey, lonKey string) url.Values {
	params := url.Values{}
	params.Set(latKey, strconv.FormatFloat(location.Latitude, 'f', 4, 64))
	params.Set(lonKey, strconv.FormatFloat(location.Longitude, 'f', 4, 64))
	return params
}

func autoField[T any](v T, unit string) models.Field[T] {
	return models.Field[T]{Value: &v, Unit: unit, Source: models.SourceAuto}
}

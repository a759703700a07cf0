package geodata

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bondastefana/farm-management-app/internal/config"
	"github.com/bondastefana/farm-management-app/internal/domain/models"
)

const (
	elevationURL = "https://meteo.test/v1/elevation"
	archiveURL   = "https://archive.test/v1/archive"
	soilURL      = "https://soil.test/soilgrids/v2.0/properties/query"
)

var cluj = models.Location{Latitude: 46.77, Longitude: 23.59}

func newTestClient(t *testing.T) *APIClient {
	t.Helper()

	client := NewClient(config.GeoDataConfig{
		OpenMeteoBaseURL:    "https://meteo.test",
		OpenMeteoArchiveURL: "https://archive.test/",
		SoilGridsBaseURL:    "https://soil.test",
		Timeout:             time.Second,
	}, nil)
	client.now = func() time.Time { return time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC) }

	httpmock.ActivateNonDefault(client.HTTPClient().GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)

	return client
}

func registerAll(t *testing.T) {
	t.Helper()

	httpmock.RegisterResponder("GET", elevationURL,
		httpmock.NewStringResponder(http.StatusOK, `{"elevation":[412.0]}`))
	httpmock.RegisterResponder("GET", archiveURL,
		httpmock.NewStringResponder(http.StatusOK, `{"daily":{
			"time":["2025-03-02","2025-03-03","2025-03-04","2025-03-05"],
			"temperature_2m_mean":[2.0,4.0,null,12.0],
			"temperature_2m_min":[-3.0,0.5,-1.0,6.0],
			"precipitation_sum":[1.5,0,null,3.5]}}`))
	httpmock.RegisterResponder("GET", soilURL,
		httpmock.NewStringResponder(http.StatusOK, `{"properties":{"layers":[
			{"name":"phh2o","unit_measure":{"d_factor":10},"depths":[{"label":"0-5cm","values":{"mean":65}}]},
			{"name":"nitrogen","unit_measure":{"d_factor":100},"depths":[{"label":"0-5cm","values":{"mean":180}}]},
			{"name":"clay","unit_measure":{"d_factor":10},"depths":[{"label":"0-5cm","values":{"mean":220}}]},
			{"name":"sand","unit_measure":{"d_factor":10},"depths":[{"label":"0-5cm","values":{"mean":380}}]},
			{"name":"silt","unit_measure":{"d_factor":10},"depths":[{"label":"0-5cm","values":{"mean":400}}]},
			{"name":"wv0033","unit_measure":{"d_factor":10},"depths":[{"label":"0-5cm","values":{"mean":310}}]}
		]}}`))
}

func TestFetch_Success(t *testing.T) {
	client := newTestClient(t)
	registerAll(t)

	result, err := client.Fetch(context.Background(), cluj)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)

	c := result.Conditions
	require.True(t, c.Altitude.Elevation.Present())
	assert.InDelta(t, 412.0, *c.Altitude.Elevation.Value, 1e-9)
	assert.Equal(t, models.UnitMeters, c.Altitude.Elevation.Unit)

	require.True(t, c.Climate.Temperature.Present())
	assert.InDelta(t, 6.0, *c.Climate.Temperature.Value, 1e-9)
	assert.InDelta(t, 5.0, *c.Climate.Precipitation.Value, 1e-9)
	assert.InDelta(t, 2.0, *c.Climate.FrostDays.Value, 1e-9)

	assert.InDelta(t, 6.5, *c.Soil.PH.Value, 1e-9)
	assert.InDelta(t, 1.8, *c.Soil.Nitrogen.Value, 1e-9)
	assert.InDelta(t, 31.0, *c.Soil.WaterRetention.Value, 1e-9)
	assert.Equal(t, []models.SoilType{models.SoilLoam}, *c.Soil.SoilType.Value)
	assert.Equal(t, models.SourceAuto, c.Soil.PH.Source)

	assert.Equal(t, cluj, c.Location)
}

func TestFetch_ArchiveWindow(t *testing.T) {
	client := newTestClient(t)
	registerAll(t)

	var query url.Values
	httpmock.RegisterResponder("GET", archiveURL, func(req *http.Request) (*http.Response, error) {
		query = req.URL.Query()
		return httpmock.NewStringResponse(http.StatusOK, `{"daily":{"temperature_2m_mean":[1.0]}}`), nil
	})

	_, err := client.Fetch(context.Background(), cluj)
	require.NoError(t, err)

	require.NotNil(t, query)
	assert.Equal(t, "2025-03-02", query.Get("start_date"))
	assert.Equal(t, "2026-03-01", query.Get("end_date"))
	assert.Equal(t, "46.7700", query.Get("latitude"))
	assert.Equal(t, "23.5900", query.Get("longitude"))
}

func TestFetch_PartialFailure(t *testing.T) {
	client := newTestClient(t)
	registerAll(t)
	httpmock.RegisterResponder("GET", soilURL,
		httpmock.NewStringResponder(http.StatusServiceUnavailable, `{"detail":"down"}`))

	result, err := client.Fetch(context.Background(), cluj)
	require.NoError(t, err)

	assert.Equal(t, []string{CategorySoil}, result.Errors)
	assert.False(t, result.Conditions.Soil.PH.Present())
	assert.True(t, result.Conditions.Climate.Temperature.Present())
	assert.True(t, result.Conditions.Altitude.Elevation.Present())
}

func TestFetch_AllFailed(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterNoResponder(httpmock.NewStringResponder(http.StatusInternalServerError, ""))

	result, err := client.Fetch(context.Background(), cluj)
	require.ErrorIs(t, err, ErrAllSourcesFailed)
	assert.ElementsMatch(t, []string{CategoryClimate, CategorySoil, CategoryAltitude}, result.Errors)
}

func TestFetch_InvalidJSON(t *testing.T) {
	client := newTestClient(t)
	registerAll(t)
	httpmock.RegisterResponder("GET", elevationURL, httpmock.NewStringResponder(http.StatusOK, `{invalid json`))

	result, err := client.Fetch(context.Background(), cluj)
	require.NoError(t, err)
	assert.Equal(t, []string{CategoryAltitude}, result.Errors)
}

func TestFetch_NoCoordinates(t *testing.T) {
	client := newTestClient(t)

	_, err := client.Fetch(context.Background(), models.Location{Address: "somewhere"})
	require.ErrorIs(t, err, ErrNoCoordinates)
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestTextureClass(t *testing.T) {
	tests := []struct {
		name             string
		sand, silt, clay float64
		want             models.SoilType
	}{
		{"heavy clay", 20, 30, 50, models.SoilClay},
		{"clay loam", 30, 40, 30, models.SoilClayLoam},
		{"silt", 5, 88, 7, models.SoilSilt},
		{"sand", 90, 5, 5, models.SoilSand},
		{"sandy loam", 65, 25, 10, models.SoilSandyLoam},
		{"loam", 40, 40, 20, models.SoilLoam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TextureClass(tt.sand, tt.silt, tt.clay))
		})
	}
}

package forecast

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cesargomez89/weathercache/internal/domain"
)

func TestParse(t *testing.T) {
	f, err := Parse("94043", []byte(sampleForecast))
	require.NoError(t, err)

	assert.Equal(t, "94043", f.Location.LocationSetting)
	assert.Equal(t, "Mountain View", f.Location.CityName)
	assert.InDelta(t, 37.3861, f.Location.Latitude, 1e-9)
	assert.InDelta(t, -122.0839, f.Location.Longitude, 1e-9)

	require.Len(t, f.Days, 2)
	first := f.Days[0]
	assert.Equal(t, "20141205", first.Date)
	assert.Equal(t, "Rain", first.ShortDesc)
	assert.Equal(t, 500, first.WeatherID)
	assert.Equal(t, 9.5, first.MinTemp)
	assert.Equal(t, 16.1, first.MaxTemp)
	assert.Equal(t, 81.0, first.Humidity)
	assert.Equal(t, 1012.4, first.Pressure)
	assert.Equal(t, 3.6, first.WindSpeed)
	assert.Equal(t, 200.0, first.Degrees)
	assert.Zero(t, first.LocationID)

	// A zero temperature is present, not missing.
	assert.Equal(t, "20141206", f.Days[1].Date)
	assert.Equal(t, 0.0, f.Days[1].MinTemp)
}

func TestParse_CityFallback(t *testing.T) {
	f, err := Parse("99705", []byte(`{"list":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "99705", f.Location.CityName)
	assert.Empty(t, f.Days)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		index int
		field string
	}{
		{"not json", `<html>`, -1, "body"},
		{"no list", `{"city":{"name":"X"}}`, -1, "list"},
		{"missing temp on first entry", `{"list":[{"dt":1417780800,"weather":[{"main":"Rain"}]}]}`, 0, "temp"},
		{"missing max", `{"list":[{"dt":1417780800,"temp":{"min":1},"weather":[{"main":"Rain"}]}]}`, 0, "temp.max"},
		{"missing dt", `{"list":[{"temp":{"min":1,"max":2},"weather":[{"main":"Rain"}]}]}`, 0, "dt"},
		{"missing weather", `{"list":[{"dt":1,"temp":{"min":1,"max":2}}]}`, 0, "weather"},
		{"empty weather", `{"list":[{"dt":1,"temp":{"min":1,"max":2},"weather":[]}]}`, 0, "weather"},
		{"missing description", `{"list":[{"dt":1,"temp":{"min":1,"max":2},"weather":[{"id":800}]}]}`, 0, "weather[0].main"},
		{"second entry broken", `{"list":[{"dt":1,"temp":{"min":1,"max":2},"weather":[{"main":"Clear"}]},{"dt":2,"weather":[{"main":"Clear"}]}]}`, 1, "temp"},
		{"wrong type", `{"list":[{"dt":"today","temp":{"min":1,"max":2},"weather":[{"main":"Clear"}]}]}`, 0, "entry"},
		{"same day twice", `{"list":[{"dt":1417780800,"temp":{"min":1,"max":2},"weather":[{"main":"Clear"}]},{"dt":1417791600,"temp":{"min":1,"max":2},"weather":[{"main":"Rain"}]}]}`, 1, "dt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse("94043", []byte(tt.body))
			assert.Nil(t, f)

			var malformed *domain.MalformedPayloadError
			require.True(t, errors.As(err, &malformed), "err = %v", err)
			assert.Equal(t, "94043", malformed.Location)
			assert.Equal(t, tt.index, malformed.Index)
			assert.Equal(t, tt.field, malformed.Field)
		})
	}
}

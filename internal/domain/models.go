package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/cesargomez89/weathercache/internal/constants"
)

var validate = validator.New()

// SyncState is a state of the forecast sync task.
type SyncState string

const (
	SyncStateIdle      SyncState = "idle"
	SyncStateFetching  SyncState = "fetching"
	SyncStateParsing   SyncState = "parsing"
	SyncStateUpserting SyncState = "upserting"
	SyncStateFailed    SyncState = "failed"
)

// Active reports whether the task is doing work in this state.
func (s SyncState) Active() bool {
	return s == SyncStateFetching || s == SyncStateParsing || s == SyncStateUpserting
}

// Location is a place forecasts are cached for, keyed by its location setting.
type Location struct {
	ID              int64   `json:"id" db:"_id"`
	LocationSetting string  `json:"location_setting" db:"location_setting" validate:"required"`
	CityName        string  `json:"city_name" db:"city_name" validate:"required"`
	Latitude        float64 `json:"coord_lat" db:"coord_lat" validate:"gte=-90,lte=90"`
	Longitude       float64 `json:"coord_long" db:"coord_long" validate:"gte=-180,lte=180"`
}

// Normalize trims the key fields so equal settings compare equal.
func (l *Location) Normalize() {
	l.LocationSetting = strings.TrimSpace(l.LocationSetting)
	l.CityName = strings.TrimSpace(l.CityName)
}

// Validate checks the record before it is written.
func (l *Location) Validate() error {
	return validate.Struct(l)
}

// Weather is one forecast day for one location.
type Weather struct {
	ID         int64   `json:"id" db:"_id"`
	LocationID int64   `json:"location_id" db:"location_id" validate:"required"`
	Date       string  `json:"date" db:"date" validate:"required,len=8,numeric"`
	ShortDesc  string  `json:"short_desc" db:"short_desc" validate:"required"`
	WeatherID  int     `json:"weather_id" db:"weather_id"`
	MinTemp    float64 `json:"min" db:"min"`
	MaxTemp    float64 `json:"max" db:"max"`
	Humidity   float64 `json:"humidity" db:"humidity"`
	Pressure   float64 `json:"pressure" db:"pressure"`
	WindSpeed  float64 `json:"wind" db:"wind"`
	Degrees    float64 `json:"degrees" db:"degrees"`
}

// Validate checks the record before it is written.
func (w *Weather) Validate() error {
	return validate.Struct(w)
}

// DateText renders t as the canonical stored day, in UTC.
func DateText(t time.Time) string {
	return t.UTC().Format(constants.DateLayout)
}

// DateFromUnix renders a Unix timestamp as the canonical stored day.
func DateFromUnix(sec int64) string {
	return DateText(time.Unix(sec, 0))
}

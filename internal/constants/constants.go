// Package constants contains application-wide defaults to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort            = "8080"
	DefaultDBPath          = "weather.db"
	DefaultForecastURL     = "http://api.openweathermap.org/data/2.5/forecast/daily"
	DefaultLocation        = "94043"
	DefaultUnits           = UnitsMetric
	DefaultSyncInterval    = 3 * time.Hour
	DefaultFetchTimeout    = 20 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
	DefaultMinRequestGap   = 1 * time.Second
)

// Unit systems understood by the forecast API
const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

// Forecast request
const (
	ForecastDays   = 14
	ForecastFormat = "json"
)

// DateLayout is the canonical textual form of a stored day (YYYYMMDD).
const DateLayout = "20060102"

// Forecast API query parameter names
const (
	ParamQuery  = "q"
	ParamFormat = "mode"
	ParamUnits  = "units"
	ParamDays   = "cnt"
	ParamAPIKey = "appid"
)

// Circuit breaker around the forecast API
const (
	BreakerMaxRequests = 1
	BreakerInterval    = 1 * time.Minute
	BreakerTimeout     = 2 * time.Minute
	BreakerMaxFailures = 5
)

// HTTP
const (
	MaxRequestBody = 1 << 20 // 1MB
	MaxPayloadSize = 4 << 20
)

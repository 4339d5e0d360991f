package forecast

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cesargomez89/weathercache/internal/domain"
)

// Forecast is a parsed payload: the location it describes and its days, oldest first.
// Days carry no LocationID yet; the normalizer sets it once the location row exists.
type Forecast struct {
	Location domain.Location
	Days     []domain.Weather
}

type payload struct {
	City struct {
		Name  string `json:"name"`
		Coord struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
	} `json:"city"`
	List []json.RawMessage `json:"list"`
}

// Pointer fields tell a missing value apart from a zero one.
type dailyEntry struct {
	Dt       *int64      `json:"dt" validate:"required"`
	Temp     *dailyTemp  `json:"temp" validate:"required"`
	Weather  []condition `json:"weather" validate:"required,min=1,dive"`
	Pressure float64     `json:"pressure"`
	Humidity float64     `json:"humidity"`
	Speed    float64     `json:"speed"`
	Deg      float64     `json:"deg"`
}

type dailyTemp struct {
	Min *float64 `json:"min" validate:"required"`
	Max *float64 `json:"max" validate:"required"`
}

type condition struct {
	ID   int     `json:"id"`
	Main *string `json:"main" validate:"required,min=1"`
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Parse turns a forecast body into records for location. Any entry lacking its timestamp,
// description or min/max temperature rejects the whole body with a MalformedPayloadError,
// as do two entries falling on the same UTC day.
func Parse(location string, body []byte) (*Forecast, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &domain.MalformedPayloadError{Location: location, Index: -1, Field: "body", Err: err}
	}
	if p.List == nil {
		return nil, &domain.MalformedPayloadError{Location: location, Index: -1, Field: "list", Err: errors.New("missing list")}
	}

	f := &Forecast{
		Location: domain.Location{
			LocationSetting: location,
			CityName:        p.City.Name,
			Latitude:        p.City.Coord.Lat,
			Longitude:       p.City.Coord.Lon,
		},
		Days: make([]domain.Weather, 0, len(p.List)),
	}
	if strings.TrimSpace(f.Location.CityName) == "" {
		f.Location.CityName = location
	}

	seen := make(map[string]int, len(p.List))
	for i, raw := range p.List {
		var e dailyEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, &domain.MalformedPayloadError{Location: location, Index: i, Field: "entry", Err: err}
		}
		if err := validate.Struct(e); err != nil {
			return nil, &domain.MalformedPayloadError{Location: location, Index: i, Field: failedField(err), Err: err}
		}

		date := domain.DateFromUnix(*e.Dt)
		if first, dup := seen[date]; dup {
			return nil, &domain.MalformedPayloadError{Location: location, Index: i, Field: "dt", Err: fmt.Errorf("date %s repeats entry %d", date, first)}
		}
		seen[date] = i

		f.Days = append(f.Days, domain.Weather{
			Date:      date,
			ShortDesc: *e.Weather[0].Main,
			WeatherID: e.Weather[0].ID,
			MinTemp:   *e.Temp.Min,
			MaxTemp:   *e.Temp.Max,
			Humidity:  e.Humidity,
			Pressure:  e.Pressure,
			WindSpeed: e.Speed,
			Degrees:   e.Deg,
		})
	}
	return f, nil
}

// failedField returns the JSON path of the first failed field, e.g. "temp.min".
func failedField(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "entry"
	}
	ns := verrs[0].Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// Package contract holds the names shared by the store, the router and their callers:
// tables, columns, resource path segments and content-type tags.
package contract

import (
	"net/url"
	"strconv"
	"strings"
)

// Resource path segments
const (
	PathLocation = "location"
	PathWeather  = "weather"
)

// Content-type tags. Dir tags announce zero or more rows, item tags zero or one.
const (
	contentBase = "weathercache"

	LocationContentType = "vnd." + contentBase + ".dir/" + PathLocation
	LocationItemType    = "vnd." + contentBase + ".item/" + PathLocation
	WeatherContentType  = "vnd." + contentBase + ".dir/" + PathWeather
	WeatherItemType     = "vnd." + contentBase + ".item/" + PathWeather
)

// ColumnID is the generated row identity shared by both tables.
const ColumnID = "_id"

// Location table
const (
	LocationTable         = "location"
	LocationSettingColumn = "location_setting"
	LocationCityColumn    = "city_name"
	LocationLatColumn     = "coord_lat"
	LocationLongColumn    = "coord_long"
)

// Weather table
const (
	WeatherTable           = "weather"
	WeatherLocationKey     = "location_id"
	WeatherDateColumn      = "date"
	WeatherShortDescColumn = "short_desc"
	WeatherConditionColumn = "weather_id"
	WeatherMinTempColumn   = "min"
	WeatherMaxTempColumn   = "max"
	WeatherHumidityColumn  = "humidity"
	WeatherPressureColumn  = "pressure"
	WeatherWindSpeedColumn = "wind"
	WeatherDegreesColumn   = "degrees"
)

// LocationColumns lists the location table columns in declaration order.
var LocationColumns = []string{
	ColumnID,
	LocationSettingColumn,
	LocationCityColumn,
	LocationLatColumn,
	LocationLongColumn,
}

// WeatherColumns lists the weather table columns in declaration order.
var WeatherColumns = []string{
	ColumnID,
	WeatherLocationKey,
	WeatherDateColumn,
	WeatherShortDescColumn,
	WeatherConditionColumn,
	WeatherMinTempColumn,
	WeatherMaxTempColumn,
	WeatherHumidityColumn,
	WeatherPressureColumn,
	WeatherWindSpeedColumn,
	WeatherDegreesColumn,
}

// Columns returns the declared columns of table, or nil for an unknown table.
func Columns(table string) []string {
	switch table {
	case LocationTable:
		return LocationColumns
	case WeatherTable:
		return WeatherColumns
	}
	return nil
}

// Qualified returns "table.column".
func Qualified(table, column string) string {
	return table + "." + column
}

// LocationPath is "/location".
func LocationPath() string {
	return "/" + PathLocation
}

// LocationIDPath is "/location/{id}".
func LocationIDPath(id int64) string {
	return LocationPath() + "/" + strconv.FormatInt(id, 10)
}

// WeatherPath is "/weather".
func WeatherPath() string {
	return "/" + PathWeather
}

// WeatherLocationPath is "/weather/{locationSetting}" with the setting escaped.
func WeatherLocationPath(locationSetting string) string {
	return WeatherPath() + "/" + url.PathEscape(locationSetting)
}

// WeatherLocationDatePath is "/weather/{locationSetting}/{date}" with both escaped.
func WeatherLocationDatePath(locationSetting, date string) string {
	return WeatherLocationPath(locationSetting) + "/" + url.PathEscape(date)
}

// Segments splits an escaped resource path into its non-empty, unescaped segments,
// so "/weather/a%2Fb" has the two segments "weather" and "a/b".
func Segments(path string) ([]string, error) {
	raw := strings.Split(path, "/")
	segs := make([]string, 0, len(raw))
	for _, s := range raw {
		if s == "" {
			continue
		}
		seg, err := url.PathUnescape(s)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

// Package router maps resource paths onto store queries.
//
// Paths are matched segment by segment against an ordered route table; the first
// route whose segment count and structure fit wins. A route never matches by prefix,
// so /weather/94043/20141205/extra is unsupported rather than a weather-by-date query.
package router

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cesargomez89/weathercache/internal/contract"
	"github.com/cesargomez89/weathercache/internal/domain"
	"github.com/cesargomez89/weathercache/internal/logger"
	"github.com/cesargomez89/weathercache/internal/metrics"
	"github.com/cesargomez89/weathercache/internal/store"
)

// Shape names one of the supported query shapes.
type Shape string

const (
	ShapeLocation            Shape = "location"
	ShapeLocationByID        Shape = "location_by_id"
	ShapeWeather             Shape = "weather"
	ShapeWeatherLocation     Shape = "weather_location"
	ShapeWeatherLocationDate Shape = "weather_location_date"
)

// Segment patterns
const (
	anySegment     = "*"
	numericSegment = "#"
)

// QueryOptions carries the caller-side query arguments. All fields are optional.
type QueryOptions struct {
	Projection    []string
	Selection     string
	SelectionArgs []interface{}
	SortOrder     string
}

// Result is a dispatched query: its content type and the rows.
type Result struct {
	Shape       Shape
	ContentType string
	Rows        *store.RowSet
}

type queryFunc func(ctx context.Context, params []string, opts QueryOptions) (*store.RowSet, error)

type route struct {
	shape       Shape
	pattern     []string
	contentType string
	query       queryFunc
}

// Router dispatches resource paths to the store.
type Router struct {
	db     *store.DB
	routes []route
	logger *logger.Logger
}

func NewRouter(db *store.DB, log *logger.Logger) *Router {
	r := &Router{
		db:     db,
		logger: log.WithComponent("router"),
	}
	r.routes = []route{
		{ShapeLocation, []string{contract.PathLocation}, contract.LocationContentType, r.queryLocations},
		{ShapeLocationByID, []string{contract.PathLocation, numericSegment}, contract.LocationItemType, r.queryLocationByID},
		{ShapeWeather, []string{contract.PathWeather}, contract.WeatherContentType, r.queryWeather},
		{ShapeWeatherLocation, []string{contract.PathWeather, anySegment}, contract.WeatherContentType, r.queryWeatherForLocation},
		{ShapeWeatherLocationDate, []string{contract.PathWeather, anySegment, anySegment}, contract.WeatherItemType, r.queryWeatherForDate},
	}
	return r
}

// match returns the first route fitting path and the values of its variable segments.
func (r *Router) match(path string) (*route, []string, error) {
	segs, err := contract.Segments(path)
	if err != nil {
		return nil, nil, &domain.UnsupportedResourceError{Path: path}
	}
	for i := range r.routes {
		rt := &r.routes[i]
		if params, ok := matchSegments(rt.pattern, segs); ok {
			return rt, params, nil
		}
	}
	return nil, nil, &domain.UnsupportedResourceError{Path: path}
}

func matchSegments(pattern, segs []string) ([]string, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}
	var params []string
	for i, p := range pattern {
		switch p {
		case anySegment:
			params = append(params, segs[i])
		case numericSegment:
			if _, err := strconv.ParseInt(segs[i], 10, 64); err != nil {
				return nil, false
			}
			params = append(params, segs[i])
		default:
			if p != segs[i] {
				return nil, false
			}
		}
	}
	return params, true
}

// Type returns the content-type tag for path.
func (r *Router) Type(path string) (string, error) {
	rt, _, err := r.match(path)
	if err != nil {
		return "", err
	}
	return rt.contentType, nil
}

// Query resolves path to one of the five shapes and runs it. An empty result is not an error.
func (r *Router) Query(ctx context.Context, path string, opts QueryOptions) (*Result, error) {
	rt, params, err := r.match(path)
	if err != nil {
		return nil, err
	}
	metrics.RouterQueriesTotal.WithLabelValues(string(rt.shape)).Inc()
	r.logger.WithResource(path).Debug("Dispatching query", "shape", rt.shape)

	rows, err := rt.query(ctx, params, opts)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", path, err)
	}
	return &Result{Shape: rt.shape, ContentType: rt.contentType, Rows: rows}, nil
}

func (r *Router) queryLocations(ctx context.Context, _ []string, opts QueryOptions) (*store.RowSet, error) {
	return r.db.Query(ctx, contract.LocationTable, opts.Projection, opts.Selection, opts.SelectionArgs, opts.SortOrder)
}

func (r *Router) queryLocationByID(ctx context.Context, params []string, opts QueryOptions) (*store.RowSet, error) {
	id, _ := strconv.ParseInt(params[0], 10, 64)
	selection := contract.ColumnID + " = ?"
	args := []interface{}{id}
	if opts.Selection != "" {
		selection += " AND (" + opts.Selection + ")"
		args = append(args, opts.SelectionArgs...)
	}
	return r.db.Query(ctx, contract.LocationTable, opts.Projection, selection, args, opts.SortOrder)
}

func (r *Router) queryWeather(ctx context.Context, _ []string, opts QueryOptions) (*store.RowSet, error) {
	return r.db.Query(ctx, contract.WeatherTable, opts.Projection, opts.Selection, opts.SelectionArgs, opts.SortOrder)
}

// The joined shapes take their filter from the path; opts.Selection does not apply.
func (r *Router) queryWeatherForLocation(ctx context.Context, params []string, opts QueryOptions) (*store.RowSet, error) {
	return r.db.QueryJoin(ctx, opts.Projection, params[0], "", opts.SortOrder)
}

func (r *Router) queryWeatherForDate(ctx context.Context, params []string, opts QueryOptions) (*store.RowSet, error) {
	return r.db.QueryJoin(ctx, opts.Projection, params[0], params[1], opts.SortOrder)
}

// Insert adds a row through /location or /weather and returns its id. A duplicate location
// resolves to the existing row; a duplicate weather day replaces the stored one.
func (r *Router) Insert(ctx context.Context, path string, values domain.Row) (int64, error) {
	rt, _, err := r.match(path)
	if err != nil {
		return 0, err
	}
	metrics.RouterQueriesTotal.WithLabelValues(string(rt.shape)).Inc()

	switch rt.shape {
	case ShapeLocation:
		loc, err := locationFromValues(values)
		if err != nil {
			return 0, err
		}
		return r.db.InsertLocation(ctx, loc)
	case ShapeWeather:
		w, err := weatherFromValues(values)
		if err != nil {
			return 0, err
		}
		return r.db.InsertWeather(ctx, w)
	default:
		return 0, &domain.UnsupportedResourceError{Path: path}
	}
}

// Delete removes the rows matching selection from /location or /weather and returns the count.
func (r *Router) Delete(ctx context.Context, path, selection string, selectionArgs []interface{}) (int64, error) {
	rt, _, err := r.match(path)
	if err != nil {
		return 0, err
	}
	metrics.RouterQueriesTotal.WithLabelValues(string(rt.shape)).Inc()

	var table string
	switch rt.shape {
	case ShapeLocation:
		table = contract.LocationTable
	case ShapeWeather:
		table = contract.WeatherTable
	default:
		return 0, &domain.UnsupportedResourceError{Path: path}
	}

	n, err := r.db.Delete(ctx, table, selection, selectionArgs)
	if err != nil {
		return 0, err
	}
	r.logger.WithResource(path).Info("Deleted rows", "count", n)
	return n, nil
}

func requireValues(values domain.Row, cols []string) error {
	for _, c := range cols {
		if c == contract.ColumnID {
			continue
		}
		if v, ok := values[c]; !ok || v == nil {
			return fmt.Errorf("%w: missing value for %s", domain.ErrInvalidRecord, c)
		}
	}
	return nil
}

// rowReader pulls typed values out of a Row and remembers the first column that
// did not convert.
type rowReader struct {
	values domain.Row
	bad    string
}

func (rr *rowReader) float(col string) float64 {
	f, ok := rr.values.Float64(col)
	if !ok && rr.bad == "" {
		rr.bad = col
	}
	return f
}

func (rr *rowReader) int(col string) int64 {
	n, ok := rr.values.Int64(col)
	if !ok && rr.bad == "" {
		rr.bad = col
	}
	return n
}

func (rr *rowReader) err() error {
	if rr.bad == "" {
		return nil
	}
	return fmt.Errorf("%w: %s has the wrong type (%T)", domain.ErrInvalidRecord, rr.bad, rr.values[rr.bad])
}

func locationFromValues(values domain.Row) (*domain.Location, error) {
	if err := requireValues(values, contract.LocationColumns); err != nil {
		return nil, err
	}
	rr := &rowReader{values: values}
	loc := &domain.Location{
		LocationSetting: values.String(contract.LocationSettingColumn),
		CityName:        values.String(contract.LocationCityColumn),
		Latitude:        rr.float(contract.LocationLatColumn),
		Longitude:       rr.float(contract.LocationLongColumn),
	}
	if err := rr.err(); err != nil {
		return nil, err
	}
	return loc, nil
}

func weatherFromValues(values domain.Row) (*domain.Weather, error) {
	if err := requireValues(values, contract.WeatherColumns); err != nil {
		return nil, err
	}
	rr := &rowReader{values: values}
	w := &domain.Weather{
		LocationID: rr.int(contract.WeatherLocationKey),
		Date:       values.String(contract.WeatherDateColumn),
		ShortDesc:  values.String(contract.WeatherShortDescColumn),
		WeatherID:  int(rr.int(contract.WeatherConditionColumn)),
		MinTemp:    rr.float(contract.WeatherMinTempColumn),
		MaxTemp:    rr.float(contract.WeatherMaxTempColumn),
		Humidity:   rr.float(contract.WeatherHumidityColumn),
		Pressure:   rr.float(contract.WeatherPressureColumn),
		WindSpeed:  rr.float(contract.WeatherWindSpeedColumn),
		Degrees:    rr.float(contract.WeatherDegreesColumn),
	}
	if err := rr.err(); err != nil {
		return nil, err
	}
	return w, nil
}

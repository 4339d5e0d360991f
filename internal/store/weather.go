package store

import (
	"context"
	"fmt"

	"github.com/cesargomez89/weathercache/internal/domain"
)

const upsertWeatherQuery = `
	INSERT INTO weather (
		location_id, date, short_desc, weather_id,
		min, max, humidity, pressure, wind, degrees
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(date, location_id) DO UPDATE SET
		short_desc = excluded.short_desc,
		weather_id = excluded.weather_id,
		min = excluded.min,
		max = excluded.max,
		humidity = excluded.humidity,
		pressure = excluded.pressure,
		wind = excluded.wind,
		degrees = excluded.degrees
	RETURNING _id`

// InsertWeather stores w, replacing the non-key columns of any row for the same
// (date, location) pair. The returned id is stable across replacements.
func (db *DB) InsertWeather(ctx context.Context, w *domain.Weather) (int64, error) {
	if err := w.Validate(); err != nil {
		return 0, fmt.Errorf("%w: weather: %w", domain.ErrInvalidRecord, err)
	}

	var id int64
	err := db.QueryRowxContext(ctx, upsertWeatherQuery,
		w.LocationID, w.Date, w.ShortDesc, w.WeatherID,
		w.MinTemp, w.MaxTemp, w.Humidity, w.Pressure, w.WindSpeed, w.Degrees,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert weather for %s: %w", w.Date, err)
	}
	w.ID = id
	return id, nil
}

// BulkInsertWeather upserts every record in one transaction: all of them land or none do.
func (db *DB) BulkInsertWeather(ctx context.Context, records []domain.Weather) (int, error) {
	count := 0
	err := db.RunInTx(ctx, func(txDB *DB) error {
		for i := range records {
			if _, err := txDB.InsertWeather(ctx, &records[i]); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (db *DB) GetWeather(ctx context.Context, id int64) (*domain.Weather, error) {
	var w domain.Weather
	err := db.GetContext(ctx, &w, `SELECT * FROM weather WHERE _id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (db *DB) CountWeather(ctx context.Context) (int, error) {
	var count int
	err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM weather`)
	return count, err
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cesargomez89/weathercache/internal/domain"
)

// InsertLocation adds loc unless its location setting is already stored. Either way it
// returns the id of the stored row; an existing row is never modified.
func (db *DB) InsertLocation(ctx context.Context, loc *domain.Location) (int64, error) {
	loc.Normalize()
	if err := loc.Validate(); err != nil {
		return 0, fmt.Errorf("%w: location: %w", domain.ErrInvalidRecord, err)
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO location (location_setting, city_name, coord_lat, coord_long)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(location_setting) DO NOTHING`,
		loc.LocationSetting, loc.CityName, loc.Latitude, loc.Longitude)
	if err != nil {
		return 0, fmt.Errorf("failed to insert location: %w", err)
	}

	var id int64
	if err := db.GetContext(ctx, &id, `SELECT _id FROM location WHERE location_setting = ?`, loc.LocationSetting); err != nil {
		return 0, fmt.Errorf("failed to resolve location id: %w", err)
	}
	loc.ID = id
	return id, nil
}

func (db *DB) GetLocation(ctx context.Context, id int64) (*domain.Location, error) {
	var loc domain.Location
	err := db.GetContext(ctx, &loc, `SELECT * FROM location WHERE _id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// GetLocationBySetting returns nil, nil when the setting is unknown.
func (db *DB) GetLocationBySetting(ctx context.Context, setting string) (*domain.Location, error) {
	var loc domain.Location
	err := db.GetContext(ctx, &loc, `SELECT * FROM location WHERE location_setting = ?`, setting)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (db *DB) CountLocations(ctx context.Context) (int, error) {
	var count int
	err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM location`)
	return count, err
}

package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord marks a record rejected before it reached storage.
var ErrInvalidRecord = errors.New("invalid record")

// StorageInitError reports a failed schema statement while opening or upgrading the store.
// The cache is unusable until the open is retried.
type StorageInitError struct {
	Stmt string
	Err  error
}

func (e *StorageInitError) Error() string {
	return fmt.Sprintf("storage init failed (%s): %v", e.Stmt, e.Err)
}

func (e *StorageInitError) Unwrap() error { return e.Err }

// UnsupportedResourceError is returned for a path that matches no known shape.
type UnsupportedResourceError struct {
	Path string
}

func (e *UnsupportedResourceError) Error() string {
	return fmt.Sprintf("unsupported resource: %q", e.Path)
}

// FetchError covers network failures, timeouts and non-success responses of the forecast API.
// StatusCode is 0 when no response was received.
type FetchError struct {
	Location   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch forecast for %q: HTTP %d: %v", e.Location, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch forecast for %q: %v", e.Location, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MalformedPayloadError means a daily entry lacks a required field. The whole batch is dropped.
type MalformedPayloadError struct {
	Location string
	Index    int
	Field    string
	Err      error
}

func (e *MalformedPayloadError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed forecast payload for %q: %v", e.Location, e.Err)
	}
	return fmt.Sprintf("malformed forecast payload for %q: entry %d: missing %s", e.Location, e.Index, e.Field)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

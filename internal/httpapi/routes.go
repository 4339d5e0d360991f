package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cesargomez89/weathercache/internal/constants"
	"github.com/cesargomez89/weathercache/internal/domain"
	"github.com/cesargomez89/weathercache/internal/router"
)

type queryResponse struct {
	ContentType string       `json:"content_type"`
	Rows        []domain.Row `json:"rows"`
}

type insertResponse struct {
	ID int64 `json:"id"`
}

type deleteResponse struct {
	Deleted int64 `json:"deleted"`
}

type syncResponse struct {
	RunID      string `json:"run_id"`
	Location   string `json:"location"`
	Units      string `json:"units"`
	LocationID int64  `json:"location_id"`
	Days       int    `json:"days"`
	State      string `json:"state"`
}

// resourcePath is the escaped part of the URL after /content. The router unescapes
// each segment, so an encoded slash stays inside its segment.
func resourcePath(r *http.Request) string {
	return strings.TrimPrefix(r.URL.EscapedPath(), contentPrefix)
}

// selectionArgs reads the repeated arg parameter.
func selectionArgs(r *http.Request) []interface{} {
	raw := r.URL.Query()["arg"]
	args := make([]interface{}, len(raw))
	for i, a := range raw {
		args[i] = a
	}
	return args
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	v, err := h.DB.StoredVersion(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"schema_version": v,
	})
}

func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := router.QueryOptions{
		Selection:     q.Get("selection"),
		SelectionArgs: selectionArgs(r),
		SortOrder:     q.Get("sort"),
	}
	if p := q.Get("projection"); p != "" {
		opts.Projection = strings.Split(p, ",")
	}

	res, err := h.Router.Query(r.Context(), resourcePath(r), opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rows, err := res.Rows.All()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{ContentType: res.ContentType, Rows: rows})
}

func (h *Handler) Insert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxRequestBody)

	var values domain.Row
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidRecord, err))
		return
	}

	id, err := h.Router.Insert(r.Context(), resourcePath(r), values)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, insertResponse{ID: id})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	n, err := h.Router.Delete(r.Context(), resourcePath(r), r.URL.Query().Get("selection"), selectionArgs(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: n})
}

func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		location = h.DefaultLocation
	}
	units := r.URL.Query().Get("units")
	if units == "" {
		units = h.DefaultUnits
	}
	if units != constants.UnitsMetric && units != constants.UnitsImperial {
		h.writeError(w, r, fmt.Errorf("%w: units must be metric or imperial, got %q", domain.ErrInvalidRecord, units))
		return
	}

	// Other callers may join this run, so it must outlive a disconnecting client.
	report, err := h.Syncer.Sync(context.WithoutCancel(r.Context()), location, units)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, syncResponse{
		RunID:      report.RunID,
		Location:   report.Location,
		Units:      report.Units,
		LocationID: report.LocationID,
		Days:       report.Days,
		State:      string(report.State),
	})
}

func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.ClearCache(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.Logger.Info("Cache cleared")
	w.WriteHeader(http.StatusNoContent)
}

// Package calendar serves the shared event calendar: a day-bucketed listing,
// creation, full-replacement edits, deletion, and a live stream.
package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/roomiehq/roomies/internal/app/features/errors"
	eventstore "github.com/roomiehq/roomies/internal/app/store/events"
	"github.com/roomiehq/roomies/internal/app/system/authz"
	"github.com/roomiehq/roomies/internal/app/system/membership"
	"github.com/roomiehq/roomies/internal/app/system/sanitize"
	"github.com/roomiehq/roomies/internal/app/system/timeouts"
	"github.com/roomiehq/roomies/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Events     *eventstore.Store
	Membership *membership.Service
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger

	// now is replaceable in tests for the past-date check.
	now func() time.Time
}

func NewHandler(events *eventstore.Store, ms *membership.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events:     events,
		Membership: ms,
		ErrLog:     errLog,
		Log:        logger,
		now:        time.Now,
	}
}

func (h *Handler) resolveGroup(w http.ResponseWriter, r *http.Request, ctx context.Context) (*membership.Resolution, bool) {
	userID, _, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderError(w, http.StatusUnauthorized, "sign in required")
		return nil, false
	}
	res, err := h.Membership.Resolve(ctx, userID)
	if err == membership.ErrNoGroup {
		uierrors.RenderError(w, http.StatusConflict, "You are not in a group.")
		return nil, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "resolve membership", err, "A server error occurred.")
		return nil, false
	}
	return res, true
}

// dayBucket is one calendar day in the listing.
type dayBucket struct {
	Day    string         `json:"day"`
	Events []models.Event `json:"events"`
}

// HandleList handles GET /calendar: events grouped by calendar day, days
// ascending, events within a day ascending.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, ok := h.resolveGroup(w, r, ctx)
	if !ok {
		return
	}

	events, err := h.Events.ListByGroup(ctx, res.Group.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list events", err, "A server error occurred.")
		return
	}

	keys, buckets := eventstore.GroupByDay(events)
	days := make([]dayBucket, 0, len(keys))
	for _, k := range keys {
		days = append(days, dayBucket{Day: k, Events: buckets[k]})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(days)
}

type eventRequest struct {
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Attendees []string  `json:"attendees"`
}

// validate checks an event payload shared by add and edit. A response is
// written when ok=false. The past-date rule applies to creation only, so it
// lives in HandleAdd; an event whose date has elapsed must stay editable.
func (h *Handler) validate(w http.ResponseWriter, req *eventRequest) bool {
	req.Title = sanitize.Text(req.Title)
	if req.Title == "" {
		uierrors.RenderError(w, http.StatusUnprocessableEntity, "Please enter an event title.")
		return false
	}
	if req.Date.IsZero() {
		uierrors.RenderError(w, http.StatusUnprocessableEntity, "Please pick a date and time.")
		return false
	}
	if req.Attendees == nil {
		req.Attendees = []string{}
	}
	return true
}

// withCreator puts the creator's email at the front of the attendee list
// unless the client already listed it.
func withCreator(attendees []string, email string) []string {
	for _, a := range attendees {
		if a == email {
			return attendees
		}
	}
	return append([]string{email}, attendees...)
}

// HandleAdd handles POST /calendar.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	userID, name, email, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderError(w, http.StatusUnauthorized, "sign in required")
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode add event body", err, "Invalid request body.")
		return
	}
	if !h.validate(w, &req) {
		return
	}
	// New events must be in the future; the rejection happens before any
	// store access.
	if req.Date.Before(h.now()) {
		uierrors.RenderError(w, http.StatusUnprocessableEntity, "Event date must be in the future.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Membership.Resolve(ctx, userID)
	if err == membership.ErrNoGroup {
		uierrors.RenderError(w, http.StatusConflict, "You are not in a group.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "resolve membership", err, "A server error occurred.")
		return
	}

	ev, err := h.Events.Add(ctx, res.Group.ID, req.Title, req.Date,
		models.Creator{ID: userID, Email: email, Name: name}, withCreator(req.Attendees, email))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "add event", err, "A server error occurred.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(ev)
}

// HandleEdit handles POST /calendar/{id}/edit: a full replacement of title,
// date, and attendees. There are no partial edits.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderError(w, http.StatusNotFound, "Event not found")
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode edit event body", err, "Invalid request body.")
		return
	}
	if !h.validate(w, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, ok := h.resolveGroup(w, r, ctx)
	if !ok {
		return
	}

	if err := h.Events.Overwrite(ctx, res.Group.ID, id, req.Title, req.Date, req.Attendees); err != nil {
		if err == eventstore.ErrNotFound {
			uierrors.RenderError(w, http.StatusNotFound, "Event not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "edit event", err, "A server error occurred.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// HandleDelete handles POST /calendar/{id}/delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderError(w, http.StatusNotFound, "Event not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, ok := h.resolveGroup(w, r, ctx)
	if !ok {
		return
	}

	if err := h.Events.Delete(ctx, res.Group.ID, id); err != nil {
		if err == eventstore.ErrNotFound {
			uierrors.RenderError(w, http.StatusNotFound, "Event not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "delete event", err, "A server error occurred.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

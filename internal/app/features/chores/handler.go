// Package chores serves the shared chore list: listing, adding, toggling
// completion, deleting completed chores, and a live stream of the list.
package chores

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/roomiehq/roomies/internal/app/features/errors"
	chorestore "github.com/roomiehq/roomies/internal/app/store/chores"
	"github.com/roomiehq/roomies/internal/app/system/authz"
	"github.com/roomiehq/roomies/internal/app/system/membership"
	"github.com/roomiehq/roomies/internal/app/system/sanitize"
	"github.com/roomiehq/roomies/internal/app/system/timeouts"
	"github.com/roomiehq/roomies/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Chores     *chorestore.Store
	Membership *membership.Service
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(chores *chorestore.Store, ms *membership.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Chores: chores, Membership: ms, ErrLog: errLog, Log: logger}
}

// resolveGroup loads the caller's active group, writing the error response
// itself when there is none. ok=false means the response was already sent.
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

// HandleList handles GET /chores.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, ok := h.resolveGroup(w, r, ctx)
	if !ok {
		return
	}

	chores, err := h.Chores.ListByGroup(ctx, res.Group.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list chores", err, "A server error occurred.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(chores)
}

type addRequest struct {
	Text      string   `json:"text"`
	Assignees []string `json:"assignees"`
}

// HandleAdd handles POST /chores. A blank text after trimming is a silent
// no-op, not an error: the client clears the input either way.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	userID, name, email, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderError(w, http.StatusUnauthorized, "sign in required")
		return
	}

	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode add chore body", err, "Invalid request body.")
		return
	}

	req.Text = sanitize.Text(req.Text)
	if req.Text == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Membership.Resolve(ctx, userID)
	if err == membership.ErrNoGroup {
		// Without a group there is nowhere to put the chore.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "resolve membership", err, "A server error occurred.")
		return
	}

	if req.Assignees == nil {
		req.Assignees = []string{}
	}
	ch, err := h.Chores.Add(ctx, res.Group.ID, req.Text,
		models.Creator{ID: userID, Email: email, Name: name}, req.Assignees)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "add chore", err, "A server error occurred.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(ch)
}

// HandleToggle handles POST /chores/{id}/toggle.
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderError(w, http.StatusNotFound, "Chore not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, ok := h.resolveGroup(w, r, ctx)
	if !ok {
		return
	}

	completed, err := h.Chores.Toggle(ctx, res.Group.ID, id)
	if err == chorestore.ErrNotFound {
		uierrors.RenderError(w, http.StatusNotFound, "Chore not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "toggle chore", err, "A server error occurred.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"completed": completed})
}

// HandleDelete handles POST /chores/{id}/delete. Only completed chores can
// be deleted.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderError(w, http.StatusNotFound, "Chore not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, ok := h.resolveGroup(w, r, ctx)
	if !ok {
		return
	}

	switch err := h.Chores.Delete(ctx, res.Group.ID, id); err {
	case nil:
	case chorestore.ErrNotFound:
		uierrors.RenderError(w, http.StatusNotFound, "Chore not found")
		return
	case chorestore.ErrNotCompleted:
		uierrors.RenderError(w, http.StatusConflict, "Only completed chores can be deleted.")
		return
	default:
		h.ErrLog.LogServerError(w, r, "delete chore", err, "A server error occurred.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

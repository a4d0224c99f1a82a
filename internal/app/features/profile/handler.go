package profile

import (
	"context"
	"encoding/json"
	"net/http"

	uierrors "github.com/roomiehq/roomies/internal/app/features/errors"
	userstore "github.com/roomiehq/roomies/internal/app/store/users"
	"github.com/roomiehq/roomies/internal/app/system/auth"
	"github.com/roomiehq/roomies/internal/app/system/authz"
	"github.com/roomiehq/roomies/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, SessionMgr: sessionMgr, ErrLog: errLog, Log: logger}
}

type profileResponse struct {
	ID       string  `json:"id"`
	FullName string  `json:"full_name"`
	Email    string  `json:"email"`
	Theme    string  `json:"theme"`
	GroupID  *string `json:"group_id"`
}

// Serve handles GET /profile.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	userID, _, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderError(w, http.StatusUnauthorized, "sign in required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load profile", err, "A server error occurred.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(profileResponse{
		ID:       u.ID.Hex(),
		FullName: u.FullName,
		Email:    u.Email,
		Theme:    u.Theme,
		GroupID:  u.GroupID,
	})
}

type themeRequest struct {
	Theme string `json:"theme"`
}

// HandleTheme handles POST /profile/theme. The theme is persisted and the
// session cookie refreshed so the preference survives sign-out.
func (h *Handler) HandleTheme(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderError(w, http.StatusUnauthorized, "sign in required")
		return
	}
	userID, _, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderError(w, http.StatusUnauthorized, "sign in required")
		return
	}

	var req themeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode theme body", err, "Invalid request body.")
		return
	}
	if req.Theme != "light" && req.Theme != "dark" {
		uierrors.RenderError(w, http.StatusUnprocessableEntity, `Theme must be "light" or "dark".`)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.SetTheme(ctx, userID, req.Theme); err != nil {
		h.ErrLog.LogServerError(w, r, "set theme", err, "A server error occurred.")
		return
	}

	refreshed := *su
	refreshed.Theme = req.Theme
	if err := h.SessionMgr.SignIn(w, r, refreshed); err != nil {
		h.Log.Warn("refresh session after theme change failed", zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"theme": req.Theme})
}

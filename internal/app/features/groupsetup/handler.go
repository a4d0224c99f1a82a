// Package groupsetup serves group creation, joining by invite code, and
// leaving. All three endpoints operate on the caller's own membership only.
package groupsetup

import (
	"context"
	"encoding/json"
	"net/http"

	uierrors "github.com/roomiehq/roomies/internal/app/features/errors"
	userstore "github.com/roomiehq/roomies/internal/app/store/users"
	"github.com/roomiehq/roomies/internal/app/system/authz"
	"github.com/roomiehq/roomies/internal/app/system/inputval"
	"github.com/roomiehq/roomies/internal/app/system/membership"
	"github.com/roomiehq/roomies/internal/app/system/sanitize"
	"github.com/roomiehq/roomies/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	Membership *membership.Service
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, ms *membership.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Membership: ms, ErrLog: errLog, Log: logger}
}

type createRequest struct {
	Name string `json:"name" validate:"required,max=80" label:"group name"`
}

type joinRequest struct {
	Code string `json:"code" validate:"required,max=120" label:"invite code"`
}

type groupResponse struct {
	GroupID    string `json:"group_id"`
	GroupName  string `json:"group_name"`
	InviteCode string `json:"invite_code"`
}

// HandleCreate handles POST /groups: create a group with the caller as sole
// member.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderError(w, http.StatusUnauthorized, "sign in required")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode create group body", err, "Invalid request body.")
		return
	}
	req.Name = sanitize.Text(req.Name)
	if res := inputval.Validate(req); res.HasErrors() {
		uierrors.RenderError(w, http.StatusUnprocessableEntity, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user", err, "A server error occurred.")
		return
	}

	group, err := h.Membership.CreateGroup(ctx, user, req.Name)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create group", err, "A server error occurred.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(groupResponse{
		GroupID:    group.ID,
		GroupName:  group.Name,
		InviteCode: group.InviteCode,
	})
}

// HandleJoin handles POST /groups/join. An unknown code is a plain 404 with
// no writes; a membership write that never confirms is a gateway timeout.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	userID, _, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderError(w, http.StatusUnauthorized, "sign in required")
		return
	}

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode join group body", err, "Invalid request body.")
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		uierrors.RenderError(w, http.StatusUnprocessableEntity, res.First())
		return
	}

	// Joining can poll for several seconds; budget accordingly.
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user", err, "A server error occurred.")
		return
	}

	group, err := h.Membership.JoinGroup(ctx, user, req.Code)
	switch err {
	case nil:
	case membership.ErrGroupNotFound:
		uierrors.RenderError(w, http.StatusNotFound, "Group not found")
		return
	case membership.ErrJoinTimeout:
		h.Log.Error("join confirmation timed out",
			zap.String("user_id", userID.Hex()))
		uierrors.RenderError(w, http.StatusGatewayTimeout, "Joining the group took too long. Please try again.")
		return
	default:
		h.ErrLog.LogServerError(w, r, "join group", err, "A server error occurred.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(groupResponse{
		GroupID:    group.ID,
		GroupName:  group.Name,
		InviteCode: group.InviteCode,
	})
}

// HandleLeave handles POST /groups/leave.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	userID, _, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderError(w, http.StatusUnauthorized, "sign in required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user", err, "A server error occurred.")
		return
	}

	if err := h.Membership.LeaveGroup(ctx, user); err != nil {
		if err == membership.ErrNoGroup {
			uierrors.RenderError(w, http.StatusConflict, "You are not in a group.")
			return
		}
		h.ErrLog.LogServerError(w, r, "leave group", err, "A server error occurred.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

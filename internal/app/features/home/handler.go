package home

import (
	"context"
	"encoding/json"
	"net/http"

	uierrors "github.com/roomiehq/roomies/internal/app/features/errors"
	"github.com/roomiehq/roomies/internal/app/system/authz"
	"github.com/roomiehq/roomies/internal/app/system/membership"
	"github.com/roomiehq/roomies/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Membership *membership.Service
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(ms *membership.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Membership: ms, ErrLog: errLog, Log: logger}
}

type homeResponse struct {
	InGroup    bool     `json:"in_group"`
	GroupID    string   `json:"group_id,omitempty"`
	GroupName  string   `json:"group_name,omitempty"`
	InviteCode string   `json:"invite_code,omitempty"`
	Roommates  []string `json:"roommates,omitempty"`
}

// Serve handles GET /home: the landing view. A user without a group gets
// in_group=false and the client routes them to group setup.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	userID, _, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderError(w, http.StatusUnauthorized, "sign in required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Membership.Resolve(ctx, userID)
	w.Header().Set("Content-Type", "application/json")
	if err == membership.ErrNoGroup {
		_ = json.NewEncoder(w).Encode(homeResponse{InGroup: false})
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "resolve membership", err, "A server error occurred.")
		return
	}

	_ = json.NewEncoder(w).Encode(homeResponse{
		InGroup:    true,
		GroupID:    res.Group.ID,
		GroupName:  res.Group.Name,
		InviteCode: res.Group.InviteCode,
		Roommates:  res.MemberEmails,
	})
}

package signup

import (
	"context"
	"encoding/json"
	"net/http"

	uierrors "github.com/roomiehq/roomies/internal/app/features/errors"
	userstore "github.com/roomiehq/roomies/internal/app/store/users"
	"github.com/roomiehq/roomies/internal/app/system/auth"
	"github.com/roomiehq/roomies/internal/app/system/inputval"
	"github.com/roomiehq/roomies/internal/app/system/sanitize"
	"github.com/roomiehq/roomies/internal/app/system/timeouts"
	"github.com/roomiehq/roomies/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Log:        logger,
	}
}

type signupRequest struct {
	FullName string `json:"full_name" validate:"required,max=100" label:"name"`
	Email    string `json:"email" validate:"required,email" label:"email"`
	Password string `json:"password" validate:"required,min=8,max=72" label:"password"`
}

type signupResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// HandleSignup handles POST /signup. On success the new user is signed in
// immediately; a new account always starts without a group.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode signup body", err, "Invalid request body.")
		return
	}

	req.FullName = sanitize.Text(req.FullName)
	if res := inputval.Validate(req); res.HasErrors() {
		uierrors.RenderError(w, http.StatusUnprocessableEntity, res.First())
		return
	}
	if !inputval.IsValidEmail(req.Email) {
		uierrors.RenderError(w, http.StatusUnprocessableEntity, "Please enter a valid email address.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password", err, "A server error occurred.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Theme:        "light",
	})
	if err == userstore.ErrDuplicateEmail {
		uierrors.RenderError(w, http.StatusConflict, "An account with this email already exists.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create user", err, "A server error occurred.")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Theme: u.Theme,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "sign in after signup", err, "A server error occurred.")
		return
	}

	h.Log.Info("user signed up", zap.String("user_id", u.ID.Hex()))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(signupResponse{
		ID:       u.ID.Hex(),
		FullName: u.FullName,
		Email:    u.Email,
	})
}

package login

import (
	"context"
	"encoding/json"
	"net/http"

	uierrors "github.com/roomiehq/roomies/internal/app/features/errors"
	userstore "github.com/roomiehq/roomies/internal/app/store/users"
	"github.com/roomiehq/roomies/internal/app/system/auth"
	"github.com/roomiehq/roomies/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// invalidCredentials is deliberately the same for unknown email and wrong
// password, so the endpoint does not disclose which accounts exist.
const invalidCredentials = "Invalid email or password."

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

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Theme    string `json:"theme"`
}

// HandleLogin handles POST /login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode login body", err, "Invalid request body.")
		return
	}
	if req.Email == "" || req.Password == "" {
		uierrors.RenderError(w, http.StatusUnauthorized, invalidCredentials)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err == mongo.ErrNoDocuments {
		uierrors.RenderError(w, http.StatusUnauthorized, invalidCredentials)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user for login", err, "A server error occurred.")
		return
	}

	// Accounts created through Google sign-in have no password hash.
	if u.PasswordHash == "" {
		uierrors.RenderError(w, http.StatusUnauthorized, invalidCredentials)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		uierrors.RenderError(w, http.StatusUnauthorized, invalidCredentials)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Theme: u.Theme,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "sign in", err, "A server error occurred.")
		return
	}

	h.Log.Info("user logged in", zap.String("user_id", u.ID.Hex()))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(loginResponse{
		ID:       u.ID.Hex(),
		FullName: u.FullName,
		Email:    u.Email,
		Theme:    u.Theme,
	})
}

// Package devtools serves development-only endpoints. The whole package is
// gated: routes are only mounted when dev tools are enabled in config, and
// the handler re-checks on each request.
package devtools

import (
	"context"
	"encoding/json"
	"net/http"

	uierrors "github.com/roomiehq/roomies/internal/app/features/errors"
	"github.com/roomiehq/roomies/internal/app/system/devwipe"
	"github.com/roomiehq/roomies/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB      *mongo.Database
	Enabled bool
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, enabled bool, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Enabled: enabled, ErrLog: errLog, Log: logger}
}

// HandleWipe handles POST /dev/wipe: clear every collection.
func (h *Handler) HandleWipe(w http.ResponseWriter, r *http.Request) {
	if !h.Enabled {
		uierrors.RenderError(w, http.StatusNotFound, "not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	h.Log.Warn("dev wipe requested", zap.String("remote", r.RemoteAddr))
	if err := devwipe.Wipe(ctx, h.DB, h.Log); err != nil {
		h.ErrLog.LogServerError(w, r, "dev wipe", err, "Wipe failed.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

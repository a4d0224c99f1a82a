package chores

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	uierrors "github.com/roomiehq/roomies/internal/app/features/errors"
	roomsync "github.com/roomiehq/roomies/internal/app/system/sync"
	"github.com/roomiehq/roomies/internal/app/system/timeouts"
	"github.com/roomiehq/roomies/internal/domain/models"
	"go.uber.org/zap"
)

// HandleStream handles GET /chores/stream: server-sent events carrying the
// full chore list on connect and after every change, until the client goes
// away. The subscription is stopped on exit; a stream the handler abandons
// would otherwise keep watching forever.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		uierrors.RenderError(w, http.StatusInternalServerError, "Streaming unsupported.")
		return
	}

	resolveCtx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	res, okRes := h.resolveGroup(w, r, resolveCtx)
	cancel()
	if !okRes {
		return
	}
	groupID := res.Group.ID

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	snapshots := make(chan []models.Chore, 1)
	sub := roomsync.New(h.Chores.Collection(), groupID,
		func(ctx context.Context) ([]models.Chore, error) {
			return h.Chores.ListByGroup(ctx, groupID)
		},
		func(chores []models.Chore) {
			// Coalesce: only the latest snapshot matters.
			select {
			case snapshots <- chores:
			default:
				select {
				case <-snapshots:
				default:
				}
				snapshots <- chores
			}
		},
		h.Log)

	if err := sub.Start(r.Context()); err != nil {
		h.ErrLog.LogServerError(w, r, "start chore stream", err, "A server error occurred.")
		return
	}
	defer sub.Stop()

	h.Log.Debug("chore stream open",
		zap.String("group_id", groupID),
		zap.String("subscription", sub.ID()))

	for {
		select {
		case <-r.Context().Done():
			return
		case chores := <-snapshots:
			data, err := json.Marshal(chores)
			if err != nil {
				h.Log.Error("marshal chore snapshot", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: chores\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

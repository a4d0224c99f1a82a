package calendar

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

// HandleStream handles GET /calendar/stream: server-sent events carrying the
// full event list on connect and after every change. The subscription is
// stopped on exit.
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

	snapshots := make(chan []models.Event, 1)
	sub := roomsync.New(h.Events.Collection(), groupID,
		func(ctx context.Context) ([]models.Event, error) {
			return h.Events.ListByGroup(ctx, groupID)
		},
		func(events []models.Event) {
			select {
			case snapshots <- events:
			default:
				select {
				case <-snapshots:
				default:
				}
				snapshots <- events
			}
		},
		h.Log)

	if err := sub.Start(r.Context()); err != nil {
		h.ErrLog.LogServerError(w, r, "start calendar stream", err, "A server error occurred.")
		return
	}
	defer sub.Stop()

	h.Log.Debug("calendar stream open",
		zap.String("group_id", groupID),
		zap.String("subscription", sub.ID()))

	for {
		select {
		case <-r.Context().Done():
			return
		case events := <-snapshots:
			data, err := json.Marshal(events)
			if err != nil {
				h.Log.Error("marshal event snapshot", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: calendar\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

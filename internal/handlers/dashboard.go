package handlers

import (
	"net/http"

	"github.com/videotube/backend/internal/readmodel"
)

// DashboardHandler serves channel owners their aggregate figures.
type DashboardHandler struct {
	Reader DashboardReader
}

// Stats handles GET /api/v1/dashboard/stats/{channelId}. Channels with no
// activity report zeros rather than an error.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireUser(ctx, w); !ok {
		return
	}

	channelID, ok := pathID(r, "channelId")
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid channel id")
		return
	}

	stats, err := h.Reader.ChannelStats(ctx, channelID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel stats unavailable")
		return
	}

	respondData(ctx, w, http.StatusOK, stats, "channel stats fetched successfully")
}

// Videos handles GET /api/v1/dashboard/videos/{channelId}, listing the
// channel's uploads regardless of publish state.
func (h DashboardHandler) Videos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireUser(ctx, w); !ok {
		return
	}

	channelID, ok := pathID(r, "channelId")
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid channel id")
		return
	}

	q := r.URL.Query()
	page, err := readmodel.ParsePage(q.Get("page"), q.Get("limit"))
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	videos, err := h.Reader.ChannelVideos(ctx, channelID, page)
	if err != nil {
		respondStoreError(ctx, w, err, "channel videos unavailable")
		return
	}

	respondData(ctx, w, http.StatusOK, videos, "channel videos fetched successfully")
}

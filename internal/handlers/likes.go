package handlers

import (
	"net/http"

	"github.com/videotube/backend/internal/models"
)

// LikeHandler implements like toggling across videos, comments, and tweets.
type LikeHandler struct {
	Likes  LikeStore
	Reader LikeReader
}

// ToggleVideo handles POST /api/v1/likes/toggle/v/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "videoId", models.LikeVideo, "video not found")
}

// ToggleComment handles POST /api/v1/likes/toggle/c/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "commentId", models.LikeComment, "comment not found")
}

// ToggleTweet handles POST /api/v1/likes/toggle/t/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "tweetId", models.LikeTweet, "tweet not found")
}

// LikedVideos handles GET /api/v1/likes/videos, listing every video the
// acting user currently likes.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	videos, err := h.Reader.LikedVideos(ctx, user.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "liked videos unavailable")
		return
	}

	respondData(ctx, w, http.StatusOK, videos, "liked videos fetched successfully")
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, param string, kind models.LikeKind, missing string) {
	ctx := r.Context()
	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	targetID, ok := pathID(r, param)
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid "+string(kind)+" id")
		return
	}

	liked, err := h.Likes.Toggle(ctx, user.ID, kind, targetID)
	if err != nil {
		respondStoreError(ctx, w, err, missing)
		return
	}

	message := "like removed"
	if liked {
		message = "like added"
	}
	respondData(ctx, w, http.StatusOK, map[string]bool{"liked": liked}, message)
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
)

// PlaylistHandler implements the playlist CRUD and membership endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Reader    PlaylistReader
	NowFunc   func() time.Time
}

// Create handles POST /api/v1/playlists. The body may carry an initial
// videos list; every entry must be a valid identifier.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)
	if name == "" || description == "" {
		respondError(ctx, w, http.StatusBadRequest, "name and description are required")
		return
	}

	videoIDs := make([]string, 0, len(req.Videos))
	for _, raw := range req.Videos {
		id := strings.TrimSpace(raw)
		if _, err := uuid.Parse(id); err != nil {
			respondError(ctx, w, http.StatusBadRequest, "invalid video id")
			return
		}
		videoIDs = append(videoIDs, id)
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     user.ID,
		Name:        name,
		Description: description,
		VideoIDs:    videoIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondStoreError(ctx, w, err, "failed to create playlist")
		return
	}

	respondData(ctx, w, http.StatusCreated, playlist, "playlist created successfully")
}

// Get handles GET /api/v1/playlists/{playlistId} with videos resolved.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireUser(ctx, w); !ok {
		return
	}

	playlistID, ok := pathID(r, "playlistId")
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid playlist id")
		return
	}

	playlist, err := h.Reader.PlaylistByID(ctx, playlistID)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "playlist fetched successfully")
}

// Update handles PATCH /api/v1/playlists/{playlistId}; only the owner succeeds.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	playlistID, ok := pathID(r, "playlistId")
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid playlist id")
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	var update repositories.PlaylistUpdate
	if name := strings.TrimSpace(req.Name); name != "" {
		update.Name = &name
	}
	if description := strings.TrimSpace(req.Description); description != "" {
		update.Description = &description
	}
	if update.Name == nil && update.Description == nil {
		respondError(ctx, w, http.StatusBadRequest, "nothing to update")
		return
	}

	if err := h.Playlists.Update(ctx, playlistID, user.ID, update); err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	playlist, err := h.Reader.PlaylistByID(ctx, playlistID)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "playlist updated successfully")
}

// Delete handles DELETE /api/v1/playlists/{playlistId}; only the owner succeeds.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	playlistID, ok := pathID(r, "playlistId")
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid playlist id")
		return
	}

	if err := h.Playlists.Delete(ctx, playlistID, user.ID); err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "playlist deleted successfully")
}

// AddVideo handles PATCH /api/v1/playlists/add/{videoId}/{playlistId}.
// Duplicates are rejected with 400.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	videoID, playlistID, ok := h.memberIDs(w, r)
	if !ok {
		return
	}

	if err := h.Playlists.AddVideo(ctx, playlistID, user.ID, videoID); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusBadRequest, "video already in playlist")
			return
		}
		respondStoreError(ctx, w, err, "playlist or video not found")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "video added to playlist")
}

// RemoveVideo handles PATCH /api/v1/playlists/remove/{videoId}/{playlistId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	videoID, playlistID, ok := h.memberIDs(w, r)
	if !ok {
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlistID, user.ID, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not in playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "video removed from playlist")
}

// ForUser handles GET /api/v1/playlists/user/{userId}.
func (h PlaylistHandler) ForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireUser(ctx, w); !ok {
		return
	}

	userID, ok := pathID(r, "userId")
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid user id")
		return
	}

	playlists, err := h.Reader.UserPlaylists(ctx, userID)
	if err != nil {
		respondStoreError(ctx, w, err, "playlists unavailable")
		return
	}

	respondData(ctx, w, http.StatusOK, playlists, "playlists fetched successfully")
}

func (h PlaylistHandler) memberIDs(w http.ResponseWriter, r *http.Request) (videoID, playlistID string, ok bool) {
	ctx := r.Context()
	videoID, ok = pathID(r, "videoId")
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid video id")
		return "", "", false
	}
	playlistID, ok = pathID(r, "playlistId")
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid playlist id")
		return "", "", false
	}
	return videoID, playlistID, true
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type playlistRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Videos      []string `json:"videos"`
}

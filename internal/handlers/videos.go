package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/readmodel"
	"github.com/videotube/backend/internal/repositories"
)

// VideoHandler implements the video upload, listing, and lifecycle endpoints.
type VideoHandler struct {
	Videos  VideoStore
	Reader  VideoReader
	Blobs   BlobStore
	Cleaner BlobCleaner
	Prober  DurationProber
	NowFunc func() time.Time
}

// List handles GET /api/v1/videos. Query parameters: page, limit, query
// (title/description search), sortBy, sortType, userId. A window that matches
// nothing yields an empty listing.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireUser(ctx, w); !ok {
		return
	}

	q := r.URL.Query()

	page, err := readmodel.ParsePage(q.Get("page"), q.Get("limit"))
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}
	sort, err := readmodel.ParseSort(q.Get("sortBy"), q.Get("sortType"))
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	ownerID := strings.TrimSpace(q.Get("userId"))
	if ownerID != "" {
		if _, err := uuid.Parse(ownerID); err != nil {
			respondError(ctx, w, http.StatusBadRequest, "invalid user id")
			return
		}
	}

	videos, err := h.Reader.Videos(ctx, readmodel.VideoQuery{
		Search:  strings.TrimSpace(q.Get("query")),
		OwnerID: ownerID,
		Sort:    sort,
		Page:    page,
	})
	if err != nil {
		respondStoreError(ctx, w, err, "no videos found")
		return
	}

	respondData(ctx, w, http.StatusOK, videos, "videos fetched successfully")
}

// Publish handles POST /api/v1/videos. The multipart body carries title,
// description, the video file, and a thumbnail image. Duration is probed from
// the uploaded file; videos are public immediately.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "multipart form data required")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		respondError(ctx, w, http.StatusBadRequest, "title and description are required")
		return
	}

	tmpPath, fileName, cleanup, err := spoolUpload(r, "videoFile")
	if err != nil {
		if errors.Is(err, errMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, "videoFile is required")
			return
		}
		logger.Error("failed to spool video upload", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store video")
		return
	}
	defer cleanup()

	duration, err := h.Prober.Duration(ctx, tmpPath)
	if err != nil {
		logger.Warn("duration probe failed", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "unreadable video file")
		return
	}

	videoKey := blobKey("videos", fileName)
	videoURL, err := h.saveFromPath(ctx, tmpPath, videoKey)
	if err != nil {
		logger.Error("video upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store video")
		return
	}

	thumbURL, thumbKey, err := storeUpload(ctx, h.Blobs, r, "thumbnail", "thumbnails")
	if err != nil {
		h.discardBlobs(ctx, videoKey)
		if errors.Is(err, errMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, "thumbnail is required")
			return
		}
		logger.Error("thumbnail upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store thumbnail")
		return
	}

	now := h.now()
	video := models.Video{
		ID:           uuid.NewString(),
		OwnerID:      user.ID,
		Title:        title,
		Description:  description,
		VideoFile:    videoURL,
		VideoKey:     videoKey,
		Thumbnail:    thumbURL,
		ThumbnailKey: thumbKey,
		Duration:     duration,
		IsPublished:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		h.discardBlobs(ctx, videoKey, thumbKey)
		logger.Error("failed to create video", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to publish video")
		return
	}

	respondData(ctx, w, http.StatusCreated, video, "video published successfully")
}

// Get handles GET /api/v1/videos/{videoId}. The view counter increments and
// the video lands at the head of the viewer's watch history.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	videoID, ok := pathID(r, "videoId")
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid video id")
		return
	}

	if err := h.Videos.RecordView(ctx, videoID, user.ID); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	video, err := h.Reader.VideoByID(ctx, videoID)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondData(ctx, w, http.StatusOK, video, "video fetched successfully")
}

// Update handles PATCH /api/v1/videos/{videoId}. Title, description, and the
// thumbnail may change; only the owner succeeds. The replaced thumbnail blob
// is scheduled for deletion.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}
	videoID, ok := pathID(r, "videoId")
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid video id")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "multipart form data required")
		return
	}

	var update repositories.VideoUpdate
	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		update.Title = &title
	}
	if description := strings.TrimSpace(r.FormValue("description")); description != "" {
		update.Description = &description
	}

	var newThumbKey string
	if r.MultipartForm != nil && len(r.MultipartForm.File["thumbnail"]) > 0 {
		url, key, err := storeUpload(ctx, h.Blobs, r, "thumbnail", "thumbnails")
		if err != nil {
			logger.Error("thumbnail upload failed", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "failed to store thumbnail")
			return
		}
		update.Thumbnail = &url
		update.ThumbnailKey = &key
		newThumbKey = key
	}

	if update.Title == nil && update.Description == nil && update.Thumbnail == nil {
		respondError(ctx, w, http.StatusBadRequest, "nothing to update")
		return
	}

	previous, err := h.Reader.VideoByID(ctx, videoID)
	previousThumbKey := ""
	if err == nil {
		previousThumbKey = previous.ThumbnailKey
	}

	video, err := h.Videos.Update(ctx, videoID, user.ID, update)
	if err != nil {
		h.discardBlobs(ctx, newThumbKey)
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	if newThumbKey != "" && previousThumbKey != "" && previousThumbKey != newThumbKey {
		h.discardBlobs(ctx, previousThumbKey)
	}

	respondData(ctx, w, http.StatusOK, video, "video updated successfully")
}

// Delete handles DELETE /api/v1/videos/{videoId}. The video record goes away
// atomically; its blobs are deleted in the background.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}
	videoID, ok := pathID(r, "videoId")
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid video id")
		return
	}

	video, err := h.Videos.Delete(ctx, videoID, user.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	h.discardBlobs(ctx, video.VideoKey, video.ThumbnailKey)
	respondData(ctx, w, http.StatusOK, nil, "video deleted successfully")
}

// TogglePublish handles PATCH /api/v1/videos/toggle/publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}
	videoID, ok := pathID(r, "videoId")
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid video id")
		return
	}

	video, err := h.Videos.TogglePublish(ctx, videoID, user.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondData(ctx, w, http.StatusOK, video, "publish state toggled successfully")
}

func (h VideoHandler) saveFromPath(ctx context.Context, path, key string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return h.Blobs.Save(ctx, key, f)
}

func (h VideoHandler) discardBlobs(ctx context.Context, keys ...string) {
	if h.Cleaner == nil {
		return
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := h.Cleaner.Enqueue(ctx, key); err != nil {
			logging.FromContext(ctx).Warn("failed to schedule blob deletion", "key", key, "error", err)
		}
	}
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

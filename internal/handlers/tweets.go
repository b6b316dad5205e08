package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/readmodel"
)

// TweetHandler implements the short-post endpoints.
type TweetHandler struct {
	Tweets  TweetStore
	Reader  TweetReader
	NowFunc func() time.Time
}

// List handles GET /api/v1/tweets, newest first.
func (h TweetHandler) List(w http.ResponseWriter, r *http.Request) {
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

	tweets, err := h.Reader.Tweets(ctx, page)
	if err != nil {
		respondStoreError(ctx, w, err, "tweets unavailable")
		return
	}

	respondData(ctx, w, http.StatusOK, tweets, "tweets fetched successfully")
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	content, ok := h.tweetContent(w, r)
	if !ok {
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   user.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respondStoreError(ctx, w, err, "failed to create tweet")
		return
	}

	respondData(ctx, w, http.StatusCreated, tweet, "tweet created successfully")
}

// Get handles GET /api/v1/tweets/{tweetId}.
func (h TweetHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireUser(ctx, w); !ok {
		return
	}

	tweetID, ok := pathID(r, "tweetId")
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid tweet id")
		return
	}

	tweet, err := h.Reader.TweetByID(ctx, tweetID)
	if err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}

	respondData(ctx, w, http.StatusOK, tweet, "tweet fetched successfully")
}

// Update handles PATCH /api/v1/tweets/{tweetId}; only the author succeeds.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	tweetID, ok := pathID(r, "tweetId")
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid tweet id")
		return
	}

	content, ok := h.tweetContent(w, r)
	if !ok {
		return
	}

	tweet, err := h.Tweets.Update(ctx, tweetID, user.ID, content)
	if err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}

	respondData(ctx, w, http.StatusOK, tweet, "tweet updated successfully")
}

// Delete handles DELETE /api/v1/tweets/{tweetId}; only the author succeeds.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	tweetID, ok := pathID(r, "tweetId")
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid tweet id")
		return
	}

	if err := h.Tweets.Delete(ctx, tweetID, user.ID); err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "tweet deleted successfully")
}

func (h TweetHandler) tweetContent(w http.ResponseWriter, r *http.Request) (string, bool) {
	ctx := r.Context()

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return "", false
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return "", false
	}
	if utf8.RuneCountInString(content) > models.TweetMaxLength {
		respondError(ctx, w, http.StatusBadRequest,
			fmt.Sprintf("content exceeds %d characters", models.TweetMaxLength))
		return "", false
	}
	return content, true
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type tweetRequest struct {
	Content string `json:"content"`
}

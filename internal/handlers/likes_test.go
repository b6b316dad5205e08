package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/readmodel"
)

type inMemoryLikeStore struct {
	mu    sync.Mutex
	likes map[string]bool
}

func newInMemoryLikeStore() *inMemoryLikeStore {
	return &inMemoryLikeStore{likes: make(map[string]bool)}
}

func (s *inMemoryLikeStore) Toggle(_ context.Context, likedBy string, kind models.LikeKind, targetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := likedBy + "/" + string(kind) + "/" + targetID
	if s.likes[key] {
		delete(s.likes, key)
		return false, nil
	}
	s.likes[key] = true
	return true, nil
}

type fakeLikeReader struct {
	videos []readmodel.LikedVideo
}

func (f fakeLikeReader) LikedVideos(context.Context, string) ([]readmodel.LikedVideo, error) {
	return f.videos, nil
}

const testTweetID = "44444444-4444-4444-8444-444444444444"

func toggleResponse(t *testing.T, rec *httptest.ResponseRecorder) bool {
	t.Helper()
	var resp apiResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	payload, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected toggle payload got %T", resp.Data)
	}
	liked, _ := payload["liked"].(bool)
	return liked
}

func TestLikeHandlerToggleVideoFlips(t *testing.T) {
	store := newInMemoryLikeStore()
	handler := LikeHandler{Likes: store}
	user := models.User{ID: "u1"}

	toggle := func() *httptest.ResponseRecorder {
		req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/likes/toggle/v/"+testVideoID, nil), user)
		req.SetPathValue("videoId", testVideoID)
		rec := httptest.NewRecorder()
		handler.ToggleVideo(rec, req)
		return rec
	}

	rec := toggle()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if !toggleResponse(t, rec) {
		t.Fatal("first toggle must like")
	}

	rec = toggle()
	if toggleResponse(t, rec) {
		t.Fatal("second toggle must unlike")
	}
	if len(store.likes) != 0 {
		t.Fatal("double toggle must leave no like behind")
	}
}

func TestLikeHandlerToggleTweet(t *testing.T) {
	store := newInMemoryLikeStore()
	handler := LikeHandler{Likes: store}

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/likes/toggle/t/"+testTweetID, nil), models.User{ID: "u1"})
	req.SetPathValue("tweetId", testTweetID)
	rec := httptest.NewRecorder()

	handler.ToggleTweet(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if !store.likes["u1/tweet/"+testTweetID] {
		t.Fatal("expected a tweet like to be recorded")
	}
}

func TestLikeHandlerToggleRejectsMalformedID(t *testing.T) {
	handler := LikeHandler{Likes: newInMemoryLikeStore()}

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/likes/toggle/v/oops", nil), models.User{ID: "u1"})
	req.SetPathValue("videoId", "oops")
	rec := httptest.NewRecorder()

	handler.ToggleVideo(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestLikeHandlerLikedVideos(t *testing.T) {
	reader := fakeLikeReader{videos: []readmodel.LikedVideo{
		{ID: "v1", Title: "clip one"},
		{ID: "v2", Title: "clip two"},
	}}
	handler := LikeHandler{Reader: reader}

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/likes/videos", nil), models.User{ID: "u1"})
	rec := httptest.NewRecorder()

	handler.LikedVideos(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp apiResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	list, ok := resp.Data.([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("expected two liked videos, got %#v", resp.Data)
	}
}

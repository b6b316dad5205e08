package handlers

import (
	"context"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/videotube/backend/internal/middleware"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/readmodel"
	"github.com/videotube/backend/internal/repositories"
)

// inMemoryUserStore backs the user handlers in tests.
type inMemoryUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newInMemoryUserStore() *inMemoryUserStore {
	return &inMemoryUserStore{users: make(map[string]models.User)}
}

func (s *inMemoryUserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.UserName == user.UserName || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *inMemoryUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *inMemoryUserStore) FindByLogin(_ context.Context, login string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	login = strings.ToLower(login)
	for _, user := range s.users {
		if user.UserName == login || user.Email == login {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *inMemoryUserStore) UpdateDetails(_ context.Context, id, fullName, email string) (models.User, error) {
	return s.mutate(id, func(u *models.User) {
		u.FullName = fullName
		u.Email = email
	})
}

func (s *inMemoryUserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	_, err := s.mutate(id, func(u *models.User) { u.Password = passwordHash })
	return err
}

func (s *inMemoryUserStore) UpdateAvatar(_ context.Context, id, url, key string) (models.User, error) {
	return s.mutate(id, func(u *models.User) {
		u.Avatar = url
		u.AvatarKey = key
	})
}

func (s *inMemoryUserStore) UpdateCoverImage(_ context.Context, id, url, key string) (models.User, error) {
	return s.mutate(id, func(u *models.User) {
		u.CoverImage = url
		u.CoverImageKey = key
	})
}

func (s *inMemoryUserStore) mutate(id string, apply func(*models.User)) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	apply(&user)
	s.users[id] = user
	return user, nil
}

// inMemoryVideoStore records video mutations for assertions.
type inMemoryVideoStore struct {
	mu     sync.Mutex
	videos map[string]models.Video
	views  map[string]int
}

func newInMemoryVideoStore() *inMemoryVideoStore {
	return &inMemoryVideoStore{videos: make(map[string]models.Video), views: make(map[string]int)}
}

func (s *inMemoryVideoStore) Create(_ context.Context, video models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos[video.ID] = video
	return nil
}

func (s *inMemoryVideoStore) Update(_ context.Context, id, ownerID string, update repositories.VideoUpdate) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok || video.OwnerID != ownerID {
		return models.Video{}, repositories.ErrNotFound
	}
	if update.Title != nil {
		video.Title = *update.Title
	}
	if update.Description != nil {
		video.Description = *update.Description
	}
	if update.Thumbnail != nil {
		video.Thumbnail = *update.Thumbnail
	}
	if update.ThumbnailKey != nil {
		video.ThumbnailKey = *update.ThumbnailKey
	}
	s.videos[id] = video
	return video, nil
}

func (s *inMemoryVideoStore) Delete(_ context.Context, id, ownerID string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok || video.OwnerID != ownerID {
		return models.Video{}, repositories.ErrNotFound
	}
	delete(s.videos, id)
	return video, nil
}

func (s *inMemoryVideoStore) TogglePublish(_ context.Context, id, ownerID string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok || video.OwnerID != ownerID {
		return models.Video{}, repositories.ErrNotFound
	}
	video.IsPublished = !video.IsPublished
	s.videos[id] = video
	return video, nil
}

func (s *inMemoryVideoStore) RecordView(_ context.Context, videoID, viewerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[videoID]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	s.videos[videoID] = video
	s.views[videoID]++
	return nil
}

// fakeVideoReader serves canned read-model results.
type fakeVideoReader struct {
	videos map[string]readmodel.VideoWithOwner
}

func (f fakeVideoReader) Videos(_ context.Context, query readmodel.VideoQuery) ([]readmodel.VideoWithOwner, error) {
	out := []readmodel.VideoWithOwner{}
	for _, v := range f.videos {
		if query.OwnerID != "" && v.OwnerID != query.OwnerID {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeVideoReader) VideoByID(_ context.Context, videoID string) (readmodel.VideoWithOwner, error) {
	v, ok := f.videos[videoID]
	if !ok {
		return readmodel.VideoWithOwner{}, repositories.ErrNotFound
	}
	return v, nil
}

// recordingCleaner captures scheduled blob deletions.
type recordingCleaner struct {
	mu   sync.Mutex
	keys []string
}

func (c *recordingCleaner) Enqueue(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, key)
	return nil
}

// memoryBlobStore pretends to upload blobs and remembers the keys it saw.
type memoryBlobStore struct {
	mu   sync.Mutex
	keys []string
}

func (s *memoryBlobStore) Save(_ context.Context, key string, _ io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	return "https://cdn.example.com/" + key, nil
}

// allowAll permits every request; denyAll rejects every request.
type allowAll struct{}

func (allowAll) Allow(string) bool { return true }

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

// asUser injects an authenticated user the way the middleware would.
func asUser(r *http.Request, user models.User) *http.Request {
	return r.WithContext(middleware.WithCurrentUser(r.Context(), user))
}

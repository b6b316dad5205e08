package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/readmodel"
	"github.com/videotube/backend/internal/repositories"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx,
		"TRUNCATE TABLE watch_history, playlist_videos, playlists, tweets, subscriptions, likes, comments, videos, sessions, users CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createTestUser(t *testing.T, userName string) models.User {
	t.Helper()
	now := time.Now().UTC()
	user := models.User{
		ID:        uuid.NewString(),
		UserName:  userName,
		Email:     userName + "@example.com",
		FullName:  userName + " Example",
		Avatar:    "https://cdn.example.com/avatars/" + userName + ".png",
		Password:  "password-hash",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repositories.NewPostgresUserRepository(testPool).Create(context.Background(), user); err != nil {
		t.Fatalf("create test user %s: %v", userName, err)
	}
	return user
}

func createTestVideo(t *testing.T, ownerID, title string, views int64) models.Video {
	t.Helper()
	now := time.Now().UTC()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		Description: "about " + title,
		VideoFile:   "https://cdn.example.com/videos/" + title + ".mp4",
		VideoKey:    "videos/" + title + ".mp4",
		Thumbnail:   "https://cdn.example.com/thumbnails/" + title + ".jpg",
		Duration:    120,
		Views:       views,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repositories.NewPostgresVideoRepository(testPool).Create(context.Background(), video); err != nil {
		t.Fatalf("create test video %s: %v", title, err)
	}
	return video
}

func TestUserRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := repositories.NewPostgresUserRepository(testPool)
	user := createTestUser(t, "alice")

	dup := user
	dup.ID = uuid.NewString()
	if err := repo.Create(ctx, dup); !errors.Is(err, repositories.ErrConflict) {
		t.Fatalf("expected ErrConflict creating duplicate username, got %v", err)
	}

	byName, err := repo.FindByLogin(ctx, "alice")
	if err != nil || byName.ID != user.ID {
		t.Fatalf("find by username: %v (%+v)", err, byName)
	}
	byEmail, err := repo.FindByLogin(ctx, "ALICE@example.com")
	if err != nil || byEmail.ID != user.ID {
		t.Fatalf("find by email should be case-insensitive: %v (%+v)", err, byEmail)
	}

	updated, err := repo.UpdateDetails(ctx, user.ID, "Alice Harper", "harper@example.com")
	if err != nil {
		t.Fatalf("update details: %v", err)
	}
	if updated.FullName != "Alice Harper" || updated.Email != "harper@example.com" {
		t.Fatalf("details did not persist: %+v", updated)
	}

	withAvatar, err := repo.UpdateAvatar(ctx, user.ID, "https://cdn.example.com/avatars/new.png", "avatars/new.png")
	if err != nil {
		t.Fatalf("update avatar: %v", err)
	}
	if withAvatar.AvatarKey != "avatars/new.png" {
		t.Fatalf("avatar key did not persist: %+v", withAvatar)
	}

	if _, err := repo.FindByID(ctx, uuid.NewString()); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	user := createTestUser(t, "alice")
	store := repositories.NewPostgresSessionStore(testPool)
	manager := auth.NewManager("integration-secret", time.Minute, time.Hour, store)

	tokens, err := manager.Issue(ctx, user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	subject, err := manager.Verify(tokens.AccessToken)
	if err != nil || subject != user.ID {
		t.Fatalf("verify: %v (subject %q)", err, subject)
	}

	rotated, err := manager.Refresh(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := manager.Refresh(ctx, tokens.RefreshToken); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("expected rotation to invalidate the old token, got %v", err)
	}

	if err := manager.RevokeUser(ctx, user.ID); err != nil {
		t.Fatalf("revoke user: %v", err)
	}
	if _, err := manager.Refresh(ctx, rotated.RefreshToken); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("expected all sessions revoked, got %v", err)
	}
}

func TestSubscriptionToggleDrivesChannelProfile(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	channel := createTestUser(t, "alice")
	viewer := createTestUser(t, "bob")

	subs := repositories.NewPostgresSubscriptionRepository(testPool)
	aggregator := readmodel.NewAggregator(testPool)

	subscribed, err := subs.Toggle(ctx, channel.ID, viewer.ID)
	if err != nil || !subscribed {
		t.Fatalf("first toggle: %v subscribed=%v", err, subscribed)
	}

	profile, err := aggregator.ChannelProfile(ctx, "alice", viewer.ID)
	if err != nil {
		t.Fatalf("channel profile: %v", err)
	}
	if profile.SubscribersCount != 1 || !profile.IsSubscribed {
		t.Fatalf("expected one subscriber and isSubscribed, got %+v", profile)
	}

	other, err := aggregator.ChannelProfile(ctx, "alice", channel.ID)
	if err != nil {
		t.Fatalf("channel profile as owner: %v", err)
	}
	if other.IsSubscribed {
		t.Fatal("owner viewer must not report isSubscribed")
	}

	subscribed, err = subs.Toggle(ctx, channel.ID, viewer.ID)
	if err != nil || subscribed {
		t.Fatalf("second toggle: %v subscribed=%v", err, subscribed)
	}

	profile, err = aggregator.ChannelProfile(ctx, "alice", viewer.ID)
	if err != nil {
		t.Fatalf("channel profile after unsubscribe: %v", err)
	}
	if profile.SubscribersCount != 0 || profile.IsSubscribed {
		t.Fatalf("expected zero subscribers after unsubscribe, got %+v", profile)
	}
}

func TestLikeDoubleToggleIsNetZero(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := createTestUser(t, "alice")
	fan := createTestUser(t, "bob")
	video := createTestVideo(t, owner.ID, "clip", 0)

	likes := repositories.NewPostgresLikeRepository(testPool)
	aggregator := readmodel.NewAggregator(testPool)

	liked, err := likes.Toggle(ctx, fan.ID, models.LikeVideo, video.ID)
	if err != nil || !liked {
		t.Fatalf("first toggle: %v liked=%v", err, liked)
	}

	stats, err := aggregator.ChannelStats(ctx, owner.ID)
	if err != nil {
		t.Fatalf("channel stats: %v", err)
	}
	if stats.TotalLikes != 1 || stats.LikeCount != 1 {
		t.Fatalf("expected one like counted, got %+v", stats)
	}

	liked, err = likes.Toggle(ctx, fan.ID, models.LikeVideo, video.ID)
	if err != nil || liked {
		t.Fatalf("second toggle: %v liked=%v", err, liked)
	}

	stats, err = aggregator.ChannelStats(ctx, owner.ID)
	if err != nil {
		t.Fatalf("channel stats after untoggle: %v", err)
	}
	if stats.TotalLikes != 0 || stats.LikeCount != 0 {
		t.Fatalf("double toggle must be net zero, got %+v", stats)
	}
}

func TestVideoCommentsPagination(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := createTestUser(t, "alice")
	commenter := createTestUser(t, "bob")
	video := createTestVideo(t, owner.ID, "clip", 0)

	comments := repositories.NewPostgresCommentRepository(testPool)
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		comment := models.Comment{
			ID:        uuid.NewString(),
			VideoID:   video.ID,
			OwnerID:   commenter.ID,
			Content:   fmt.Sprintf("comment %02d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := comments.Create(ctx, comment); err != nil {
			t.Fatalf("create comment %d: %v", i, err)
		}
	}

	aggregator := readmodel.NewAggregator(testPool)

	pageOne, err := aggregator.VideoComments(ctx, video.ID, readmodel.Page{Number: 1, Limit: 10})
	if err != nil {
		t.Fatalf("page one: %v", err)
	}
	if len(pageOne) != 10 {
		t.Fatalf("expected 10 comments on page one, got %d", len(pageOne))
	}
	if pageOne[0].Content != "comment 14" {
		t.Fatalf("expected newest comment first, got %q", pageOne[0].Content)
	}

	pageTwo, err := aggregator.VideoComments(ctx, video.ID, readmodel.Page{Number: 2, Limit: 10})
	if err != nil {
		t.Fatalf("page two: %v", err)
	}
	if len(pageTwo) != 5 {
		t.Fatalf("expected 5 comments on page two, got %d", len(pageTwo))
	}
	if pageTwo[4].Content != "comment 00" {
		t.Fatalf("expected oldest comment last, got %q", pageTwo[4].Content)
	}
}

func TestOwnerScopedMutationsAreOpaque(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := createTestUser(t, "alice")
	intruder := createTestUser(t, "mallory")
	video := createTestVideo(t, owner.ID, "clip", 0)

	videos := repositories.NewPostgresVideoRepository(testPool)

	title := "hijacked"
	if _, err := videos.Update(ctx, video.ID, intruder.ID, repositories.VideoUpdate{Title: &title}); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-owner update, got %v", err)
	}
	if _, err := videos.Delete(ctx, video.ID, intruder.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-owner delete, got %v", err)
	}

	aggregator := readmodel.NewAggregator(testPool)
	unchanged, err := aggregator.VideoByID(ctx, video.ID)
	if err != nil {
		t.Fatalf("video by id: %v", err)
	}
	if unchanged.Title != "clip" {
		t.Fatalf("video must be unchanged after non-owner mutation, got %q", unchanged.Title)
	}
}

func TestChannelStatsZeroActivity(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	channel := createTestUser(t, "alice")

	aggregator := readmodel.NewAggregator(testPool)
	stats, err := aggregator.ChannelStats(ctx, channel.ID)
	if err != nil {
		t.Fatalf("channel stats: %v", err)
	}
	if stats.TotalViews != 0 || stats.TotalLikes != 0 || stats.SubscriberCount != 0 || stats.LikeCount != 0 {
		t.Fatalf("expected zeroed stats for inactive channel, got %+v", stats)
	}
}

func TestChannelStatsAggregates(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	channel := createTestUser(t, "alice")
	fan := createTestUser(t, "bob")

	v1 := createTestVideo(t, channel.ID, "one", 10)
	v2 := createTestVideo(t, channel.ID, "two", 32)

	comments := repositories.NewPostgresCommentRepository(testPool)
	comment := models.Comment{
		ID: uuid.NewString(), VideoID: v1.ID, OwnerID: channel.ID,
		Content: "thanks for watching", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	if err := comments.Create(ctx, comment); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	tweets := repositories.NewPostgresTweetRepository(testPool)
	tweet := models.Tweet{
		ID: uuid.NewString(), OwnerID: channel.ID, Content: "new upload",
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	if err := tweets.Create(ctx, tweet); err != nil {
		t.Fatalf("create tweet: %v", err)
	}

	likes := repositories.NewPostgresLikeRepository(testPool)
	for _, target := range []struct {
		kind models.LikeKind
		id   string
	}{
		{models.LikeVideo, v1.ID},
		{models.LikeVideo, v2.ID},
		{models.LikeComment, comment.ID},
		{models.LikeTweet, tweet.ID},
	} {
		if _, err := likes.Toggle(ctx, fan.ID, target.kind, target.id); err != nil {
			t.Fatalf("like %s: %v", target.kind, err)
		}
	}

	subs := repositories.NewPostgresSubscriptionRepository(testPool)
	if _, err := subs.Toggle(ctx, channel.ID, fan.ID); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	aggregator := readmodel.NewAggregator(testPool)
	stats, err := aggregator.ChannelStats(ctx, channel.ID)
	if err != nil {
		t.Fatalf("channel stats: %v", err)
	}

	if stats.TotalViews != 42 {
		t.Fatalf("expected totalViews 42, got %d", stats.TotalViews)
	}
	if stats.TotalLikes != 2 {
		t.Fatalf("expected totalLikes 2 (video likes only), got %d", stats.TotalLikes)
	}
	if stats.SubscriberCount != 1 {
		t.Fatalf("expected one subscriber, got %d", stats.SubscriberCount)
	}
	if stats.LikeCount != 4 {
		t.Fatalf("expected likeCount 4 across all owned content, got %d", stats.LikeCount)
	}
}

func TestRecordViewUpdatesHistoryAndViews(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := createTestUser(t, "alice")
	viewer := createTestUser(t, "bob")

	first := createTestVideo(t, owner.ID, "first", 0)
	second := createTestVideo(t, owner.ID, "second", 0)

	videos := repositories.NewPostgresVideoRepository(testPool)
	if err := videos.RecordView(ctx, first.ID, viewer.ID); err != nil {
		t.Fatalf("record view: %v", err)
	}
	if err := videos.RecordView(ctx, second.ID, viewer.ID); err != nil {
		t.Fatalf("record view: %v", err)
	}
	// rewatching moves the video back to the head of the history
	if err := videos.RecordView(ctx, first.ID, viewer.ID); err != nil {
		t.Fatalf("record repeat view: %v", err)
	}

	aggregator := readmodel.NewAggregator(testPool)
	history, err := aggregator.WatchHistory(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("watch history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected two history entries, got %d", len(history))
	}
	if history[0].ID != first.ID {
		t.Fatalf("expected rewatched video first, got %s", history[0].Title)
	}

	watched, err := aggregator.VideoByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("video by id: %v", err)
	}
	if watched.Views != 2 {
		t.Fatalf("expected two views, got %d", watched.Views)
	}
}

func TestPlaylistMembership(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := createTestUser(t, "alice")
	intruder := createTestUser(t, "mallory")

	v1 := createTestVideo(t, owner.ID, "one", 0)
	v2 := createTestVideo(t, owner.ID, "two", 0)

	playlists := repositories.NewPostgresPlaylistRepository(testPool)
	now := time.Now().UTC()
	playlist := models.Playlist{
		ID: uuid.NewString(), OwnerID: owner.ID,
		Name: "favourites", Description: "keepers",
		CreatedAt: now, UpdatedAt: now,
	}
	if err := playlists.Create(ctx, playlist); err != nil {
		t.Fatalf("create playlist: %v", err)
	}

	if err := playlists.AddVideo(ctx, playlist.ID, owner.ID, v1.ID); err != nil {
		t.Fatalf("add first video: %v", err)
	}
	if err := playlists.AddVideo(ctx, playlist.ID, owner.ID, v2.ID); err != nil {
		t.Fatalf("add second video: %v", err)
	}
	if err := playlists.AddVideo(ctx, playlist.ID, owner.ID, v1.ID); !errors.Is(err, repositories.ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate video, got %v", err)
	}
	if err := playlists.AddVideo(ctx, playlist.ID, intruder.ID, v2.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-owner add, got %v", err)
	}

	aggregator := readmodel.NewAggregator(testPool)
	view, err := aggregator.PlaylistByID(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("playlist by id: %v", err)
	}
	if len(view.Videos) != 2 || view.Videos[0].ID != v1.ID || view.Videos[1].ID != v2.ID {
		t.Fatalf("expected insertion order preserved, got %+v", view.Videos)
	}

	if err := playlists.RemoveVideo(ctx, playlist.ID, owner.ID, v1.ID); err != nil {
		t.Fatalf("remove video: %v", err)
	}
	if err := playlists.RemoveVideo(ctx, playlist.ID, owner.ID, v1.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound removing absent video, got %v", err)
	}
}

func TestPlaylistCreateWithInitialVideos(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := createTestUser(t, "alice")
	v1 := createTestVideo(t, owner.ID, "one", 0)
	v2 := createTestVideo(t, owner.ID, "two", 0)

	playlists := repositories.NewPostgresPlaylistRepository(testPool)
	now := time.Now().UTC()
	playlist := models.Playlist{
		ID: uuid.NewString(), OwnerID: owner.ID,
		Name: "mix", Description: "seeded on creation",
		VideoIDs:  []string{v1.ID, v2.ID},
		CreatedAt: now, UpdatedAt: now,
	}
	if err := playlists.Create(ctx, playlist); err != nil {
		t.Fatalf("create playlist with videos: %v", err)
	}

	aggregator := readmodel.NewAggregator(testPool)
	view, err := aggregator.PlaylistByID(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("playlist by id: %v", err)
	}
	if len(view.Videos) != 2 || view.Videos[0].ID != v1.ID || view.Videos[1].ID != v2.ID {
		t.Fatalf("expected initial videos in creation order, got %+v", view.Videos)
	}

	missing := playlist
	missing.ID = uuid.NewString()
	missing.VideoIDs = []string{uuid.NewString()}
	if err := playlists.Create(ctx, missing); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown initial video, got %v", err)
	}
}

func TestVideoListingSearchAndSort(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := createTestUser(t, "alice")
	createTestVideo(t, owner.ID, "alpha journey", 5)
	createTestVideo(t, owner.ID, "beta journey", 50)
	createTestVideo(t, owner.ID, "gamma", 500)

	aggregator := readmodel.NewAggregator(testPool)

	sortViews, err := readmodel.ParseSort("views", "desc")
	if err != nil {
		t.Fatalf("parse sort: %v", err)
	}
	listed, err := aggregator.Videos(ctx, readmodel.VideoQuery{
		Search: "journey",
		Sort:   sortViews,
		Page:   readmodel.Page{Number: 1, Limit: 10},
	})
	if err != nil {
		t.Fatalf("videos: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected two matches for journey, got %d", len(listed))
	}
	if listed[0].Title != "beta journey" {
		t.Fatalf("expected most viewed first, got %q", listed[0].Title)
	}
	if listed[0].Owner.UserName != "alice" {
		t.Fatalf("expected owner projection, got %+v", listed[0].Owner)
	}

	defaultSort, _ := readmodel.ParseSort("", "")
	empty, err := aggregator.Videos(ctx, readmodel.VideoQuery{
		Search: "no-such-video",
		Sort:   defaultSort,
		Page:   readmodel.Page{Number: 1, Limit: 10},
	})
	if err != nil {
		t.Fatalf("empty listing must succeed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected an empty listing, got %v", empty)
	}
}

func TestLikedVideosListing(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := createTestUser(t, "alice")
	fan := createTestUser(t, "bob")

	video := createTestVideo(t, owner.ID, "clip", 0)
	tweet := models.Tweet{
		ID: uuid.NewString(), OwnerID: owner.ID, Content: "hello",
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	if err := repositories.NewPostgresTweetRepository(testPool).Create(ctx, tweet); err != nil {
		t.Fatalf("create tweet: %v", err)
	}

	likes := repositories.NewPostgresLikeRepository(testPool)
	if _, err := likes.Toggle(ctx, fan.ID, models.LikeVideo, video.ID); err != nil {
		t.Fatalf("like video: %v", err)
	}
	if _, err := likes.Toggle(ctx, fan.ID, models.LikeTweet, tweet.ID); err != nil {
		t.Fatalf("like tweet: %v", err)
	}

	aggregator := readmodel.NewAggregator(testPool)
	liked, err := aggregator.LikedVideos(ctx, fan.ID)
	if err != nil {
		t.Fatalf("liked videos: %v", err)
	}
	if len(liked) != 1 || liked[0].ID != video.ID {
		t.Fatalf("expected only the liked video, got %+v", liked)
	}
}

func TestTweetRepositoryOwnerScope(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	author := createTestUser(t, "alice")
	intruder := createTestUser(t, "mallory")

	tweets := repositories.NewPostgresTweetRepository(testPool)
	tweet := models.Tweet{
		ID: uuid.NewString(), OwnerID: author.ID, Content: "original",
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	if err := tweets.Create(ctx, tweet); err != nil {
		t.Fatalf("create tweet: %v", err)
	}

	if _, err := tweets.Update(ctx, tweet.ID, intruder.ID, "hijacked"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-author update, got %v", err)
	}
	if err := tweets.Delete(ctx, tweet.ID, intruder.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-author delete, got %v", err)
	}

	updated, err := tweets.Update(ctx, tweet.ID, author.ID, "edited")
	if err != nil || updated.Content != "edited" {
		t.Fatalf("author update failed: %v (%+v)", err, updated)
	}

	aggregator := readmodel.NewAggregator(testPool)
	fetched, err := aggregator.TweetByID(ctx, tweet.ID)
	if err != nil {
		t.Fatalf("tweet by id: %v", err)
	}
	if fetched.Content != "edited" || fetched.Owner.UserName != "alice" {
		t.Fatalf("unexpected tweet view %+v", fetched)
	}
}

func TestSubscriberListings(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	channel := createTestUser(t, "alice")
	fanOne := createTestUser(t, "bob")
	fanTwo := createTestUser(t, "carol")

	subs := repositories.NewPostgresSubscriptionRepository(testPool)
	for _, fan := range []models.User{fanOne, fanTwo} {
		if _, err := subs.Toggle(ctx, channel.ID, fan.ID); err != nil {
			t.Fatalf("subscribe %s: %v", fan.UserName, err)
		}
	}

	aggregator := readmodel.NewAggregator(testPool)

	subscribers, err := aggregator.Subscribers(ctx, channel.ID)
	if err != nil {
		t.Fatalf("subscribers: %v", err)
	}
	if len(subscribers) != 2 {
		t.Fatalf("expected two subscribers, got %d", len(subscribers))
	}

	channels, err := aggregator.SubscribedChannels(ctx, fanOne.ID)
	if err != nil {
		t.Fatalf("subscribed channels: %v", err)
	}
	if len(channels) != 1 || channels[0].UserName != "alice" {
		t.Fatalf("expected alice in subscriptions, got %+v", channels)
	}
}

package handlers

import "net/http"

// Dependencies aggregates collaborators required by HTTP handlers. The
// read-model fields are usually all satisfied by the same aggregator.
type Dependencies struct {
	Users         UserStore
	Sessions      SessionManager
	Videos        VideoStore
	Comments      CommentStore
	Likes         LikeStore
	Playlists     PlaylistStore
	Subscriptions SubscriptionStore
	Tweets        TweetStore

	Channels          ChannelReader
	VideoViews        VideoReader
	CommentViews      CommentReader
	LikeViews         LikeReader
	PlaylistViews     PlaylistReader
	SubscriptionViews SubscriptionReader
	TweetViews        TweetReader
	Dashboard         DashboardReader

	Blobs        BlobStore
	Cleaner      BlobCleaner
	Prober       DurationProber
	LoginLimiter RateLimiter

	// Authenticate wraps protected routes; it must place the acting user on
	// the request context.
	Authenticate func(http.Handler) http.Handler
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	users := UserHandler{
		Users:    deps.Users,
		Sessions: deps.Sessions,
		Blobs:    deps.Blobs,
		Cleaner:  deps.Cleaner,
		Channels: deps.Channels,
		Limiter:  deps.LoginLimiter,
	}
	videos := VideoHandler{
		Videos:  deps.Videos,
		Reader:  deps.VideoViews,
		Blobs:   deps.Blobs,
		Cleaner: deps.Cleaner,
		Prober:  deps.Prober,
	}
	comments := CommentHandler{Comments: deps.Comments, Reader: deps.CommentViews}
	likes := LikeHandler{Likes: deps.Likes, Reader: deps.LikeViews}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Reader: deps.PlaylistViews}
	subscriptions := SubscriptionHandler{
		Subscriptions: deps.Subscriptions,
		Users:         deps.Users,
		Reader:        deps.SubscriptionViews,
	}
	tweets := TweetHandler{Tweets: deps.Tweets, Reader: deps.TweetViews}
	dashboard := DashboardHandler{Reader: deps.Dashboard}

	protected := deps.Authenticate
	if protected == nil {
		protected = func(next http.Handler) http.Handler { return next }
	}
	guard := func(h http.HandlerFunc) http.Handler { return protected(h) }

	mux.HandleFunc("GET /healthz", health.Liveness)
	mux.HandleFunc("GET /api/v1/healthcheck", health.Check)

	mux.HandleFunc("POST /api/v1/users/register", users.Register)
	mux.HandleFunc("POST /api/v1/users/login", users.Login)
	mux.HandleFunc("POST /api/v1/users/refresh-token", users.RefreshToken)
	mux.Handle("POST /api/v1/users/logout", guard(users.Logout))
	mux.Handle("POST /api/v1/users/change-password", guard(users.ChangePassword))
	mux.Handle("GET /api/v1/users/current-user", guard(users.CurrentUser))
	mux.Handle("PATCH /api/v1/users/update-account", guard(users.UpdateAccount))
	mux.Handle("PATCH /api/v1/users/avatar", guard(users.UpdateAvatar))
	mux.Handle("PATCH /api/v1/users/cover-image", guard(users.UpdateCoverImage))
	mux.Handle("GET /api/v1/users/c/{userName}", guard(users.ChannelProfile))
	mux.Handle("GET /api/v1/users/history", guard(users.WatchHistory))

	mux.Handle("GET /api/v1/videos", guard(videos.List))
	mux.Handle("POST /api/v1/videos", guard(videos.Publish))
	mux.Handle("GET /api/v1/videos/{videoId}", guard(videos.Get))
	mux.Handle("PATCH /api/v1/videos/{videoId}", guard(videos.Update))
	mux.Handle("DELETE /api/v1/videos/{videoId}", guard(videos.Delete))
	mux.Handle("PATCH /api/v1/videos/toggle/publish/{videoId}", guard(videos.TogglePublish))

	mux.Handle("GET /api/v1/comments/{videoId}", guard(comments.List))
	mux.Handle("POST /api/v1/comments/{videoId}", guard(comments.Create))
	mux.Handle("PATCH /api/v1/comments/{commentId}", guard(comments.Update))
	mux.Handle("DELETE /api/v1/comments/{commentId}", guard(comments.Delete))

	mux.Handle("POST /api/v1/likes/toggle/v/{videoId}", guard(likes.ToggleVideo))
	mux.Handle("POST /api/v1/likes/toggle/c/{commentId}", guard(likes.ToggleComment))
	mux.Handle("POST /api/v1/likes/toggle/t/{tweetId}", guard(likes.ToggleTweet))
	mux.Handle("GET /api/v1/likes/videos", guard(likes.LikedVideos))

	mux.Handle("POST /api/v1/playlists", guard(playlists.Create))
	mux.Handle("GET /api/v1/playlists/{playlistId}", guard(playlists.Get))
	mux.Handle("PATCH /api/v1/playlists/{playlistId}", guard(playlists.Update))
	mux.Handle("DELETE /api/v1/playlists/{playlistId}", guard(playlists.Delete))
	mux.Handle("PATCH /api/v1/playlists/add/{videoId}/{playlistId}", guard(playlists.AddVideo))
	mux.Handle("PATCH /api/v1/playlists/remove/{videoId}/{playlistId}", guard(playlists.RemoveVideo))
	mux.Handle("GET /api/v1/playlists/user/{userId}", guard(playlists.ForUser))

	mux.Handle("POST /api/v1/subscriptions/c/{channelId}", guard(subscriptions.Toggle))
	mux.Handle("GET /api/v1/subscriptions/u/{subscriberId}", guard(subscriptions.SubscribedChannels))
	mux.Handle("GET /api/v1/subscriptions/subscribers/{channelId}", guard(subscriptions.Subscribers))

	mux.Handle("GET /api/v1/tweets", guard(tweets.List))
	mux.Handle("POST /api/v1/tweets", guard(tweets.Create))
	mux.Handle("GET /api/v1/tweets/{tweetId}", guard(tweets.Get))
	mux.Handle("PATCH /api/v1/tweets/{tweetId}", guard(tweets.Update))
	mux.Handle("DELETE /api/v1/tweets/{tweetId}", guard(tweets.Delete))

	mux.Handle("GET /api/v1/dashboard/stats/{channelId}", guard(dashboard.Stats))
	mux.Handle("GET /api/v1/dashboard/videos/{channelId}", guard(dashboard.Videos))
}

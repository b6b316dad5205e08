package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/config"
	"github.com/videotube/backend/internal/db"
	"github.com/videotube/backend/internal/handlers"
	"github.com/videotube/backend/internal/media"
	"github.com/videotube/backend/internal/middleware"
	"github.com/videotube/backend/internal/readmodel"
	"github.com/videotube/backend/internal/repositories"
	"github.com/videotube/backend/internal/storage"
)

// loginRateLimit bounds credential attempts per client IP.
const (
	loginRateRequests = 10
	loginRateWindow   = time.Minute
	loginRateBurst    = 5
	loginRateTTL      = 10 * time.Minute
)

// buildDependencies wires the persistence, auth, storage, and read-model
// collaborators behind the HTTP handlers. The returned cleaner must be shut
// down after the server drains.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, *storage.Cleaner, error) {
	users := repositories.NewPostgresUserRepository(pool)
	sessions := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL,
		repositories.NewPostgresSessionStore(pool))

	blobs, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}
	cleaner := storage.NewCleaner(blobs, storage.CleanerConfig{}, logger)

	aggregator := readmodel.NewAggregator(pool)

	deps := handlers.Dependencies{
		Users:         users,
		Sessions:      sessions,
		Videos:        repositories.NewPostgresVideoRepository(pool),
		Comments:      repositories.NewPostgresCommentRepository(pool),
		Likes:         repositories.NewPostgresLikeRepository(pool),
		Playlists:     repositories.NewPostgresPlaylistRepository(pool),
		Subscriptions: repositories.NewPostgresSubscriptionRepository(pool),
		Tweets:        repositories.NewPostgresTweetRepository(pool),

		Channels:          aggregator,
		VideoViews:        aggregator,
		CommentViews:      aggregator,
		LikeViews:         aggregator,
		PlaylistViews:     aggregator,
		SubscriptionViews: aggregator,
		TweetViews:        aggregator,
		Dashboard:         aggregator,

		Blobs:        blobs,
		Cleaner:      cleaner,
		Prober:       media.NewFFProbe(cfg.FFProbePath, cfg.FFProbeTimeout),
		LoginLimiter: middleware.NewIPRateLimiter(loginRateRequests, loginRateWindow, loginRateBurst, loginRateTTL),
		Authenticate: middleware.Authenticate(sessions, users),
	}

	return deps, cleaner, nil
}

package readmodel

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/videotube/backend/internal/db"
	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
)

// Aggregator computes the derived, joined views of the platform: channel
// profiles, watch history, comment listings, and channel statistics. All
// operations are read-only; nothing here mutates stored state.
type Aggregator struct {
	pool db.Pool
}

// NewAggregator constructs an Aggregator over the provided pool.
func NewAggregator(pool db.Pool) *Aggregator {
	return &Aggregator{pool: pool}
}

const videoSelect = `
    v.id, v.owner_id, v.title, v.description, v.video_file, v.video_key,
    v.thumbnail, v.thumbnail_key, v.duration, v.views, v.is_published,
    v.created_at, v.updated_at`

const ownerRefSelect = `u.id, u.user_name, u.full_name, u.avatar`

// ChannelProfile joins a user (matched by lowercased userName) with their
// subscriber counts and, when a viewer is supplied, whether that viewer is
// subscribed. An unknown userName reports repositories.ErrNotFound.
func (a *Aggregator) ChannelProfile(ctx context.Context, userName, viewerID string) (ChannelProfile, error) {
	ctx, span := logging.StartSpan(ctx, "readmodel.channel_profile")
	defer span.End()

	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return ChannelProfile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var viewer any
	if viewerID != "" {
		viewer = viewerID
	}

	var profile ChannelProfile
	row := conn.QueryRow(ctx, `
        SELECT u.id, u.user_name, u.email, u.full_name, u.avatar, u.cover_image,
            (SELECT count(*) FROM subscriptions s WHERE s.channel_id = u.id),
            (SELECT count(*) FROM subscriptions s WHERE s.subscriber_id = u.id),
            EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = $2)
        FROM users u
        WHERE u.user_name = lower($1)
    `, userName, viewer)
	if err := row.Scan(
		&profile.ID, &profile.UserName, &profile.Email, &profile.FullName,
		&profile.Avatar, &profile.CoverImage,
		&profile.SubscribersCount, &profile.ChannelsSubscribedToCount, &profile.IsSubscribed,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ChannelProfile{}, repositories.ErrNotFound
		}
		return ChannelProfile{}, fmt.Errorf("select channel profile: %w", err)
	}

	return profile, nil
}

// WatchHistory resolves the user's watch history into full video records
// with reduced owner projections, most recently watched first. An empty
// history yields an empty slice, not an error.
func (a *Aggregator) WatchHistory(ctx context.Context, userID string) ([]VideoWithOwner, error) {
	ctx, span := logging.StartSpan(ctx, "readmodel.watch_history")
	defer span.End()

	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+videoSelect+`, `+ownerRefSelect+`
        FROM watch_history wh
        JOIN videos v ON v.id = wh.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE wh.user_id = $1
        ORDER BY wh.watched_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	return collectVideosWithOwner(rows)
}

// VideoComments lists a video's comments joined with their authors, newest
// first, within the provided page window.
func (a *Aggregator) VideoComments(ctx context.Context, videoID string, page Page) ([]CommentWithOwner, error) {
	ctx, span := logging.StartSpan(ctx, "readmodel.video_comments")
	defer span.End()

	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT c.id, c.content, c.created_at, c.updated_at, `+ownerRefSelect+`
        FROM comments c
        JOIN users u ON u.id = c.owner_id
        WHERE c.video_id = $1
        ORDER BY c.created_at DESC
        OFFSET $2 LIMIT $3
    `, videoID, page.Offset(), page.Limit)
	if err != nil {
		return nil, fmt.Errorf("query video comments: %w", err)
	}
	defer rows.Close()

	comments := []CommentWithOwner{}
	for rows.Next() {
		var c CommentWithOwner
		if err := rows.Scan(
			&c.ID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
			&c.Owner.ID, &c.Owner.UserName, &c.Owner.FullName, &c.Owner.Avatar,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

// ChannelStats combines a channel's view sum, likes on its videos, its
// subscriber count, and the like count across everything it owns. The three
// sub-queries are independent and run concurrently; a channel with no
// videos reports zeros.
func (a *Aggregator) ChannelStats(ctx context.Context, channelID string) (ChannelStats, error) {
	ctx, span := logging.StartSpan(ctx, "readmodel.channel_stats")

	var stats ChannelStats

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		conn, err := a.pool.Acquire(gctx)
		if err != nil {
			return fmt.Errorf("acquire connection: %w", err)
		}
		defer conn.Release()

		row := conn.QueryRow(gctx, `
            SELECT
                COALESCE((SELECT SUM(views) FROM videos WHERE owner_id = $1), 0),
                (SELECT count(*)
                 FROM likes l
                 JOIN videos v ON v.id = l.target_id AND l.target_kind = 'video'
                 WHERE v.owner_id = $1)
        `, channelID)
		if err := row.Scan(&stats.TotalViews, &stats.TotalLikes); err != nil {
			return fmt.Errorf("select video totals: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		conn, err := a.pool.Acquire(gctx)
		if err != nil {
			return fmt.Errorf("acquire connection: %w", err)
		}
		defer conn.Release()

		row := conn.QueryRow(gctx, `
            SELECT count(*) FROM subscriptions WHERE channel_id = $1
        `, channelID)
		if err := row.Scan(&stats.SubscriberCount); err != nil {
			return fmt.Errorf("select subscriber count: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		conn, err := a.pool.Acquire(gctx)
		if err != nil {
			return fmt.Errorf("acquire connection: %w", err)
		}
		defer conn.Release()

		row := conn.QueryRow(gctx, `
            SELECT count(*)
            FROM likes l
            WHERE (l.target_kind = 'video'   AND l.target_id IN (SELECT id FROM videos   WHERE owner_id = $1))
               OR (l.target_kind = 'comment' AND l.target_id IN (SELECT id FROM comments WHERE owner_id = $1))
               OR (l.target_kind = 'tweet'   AND l.target_id IN (SELECT id FROM tweets   WHERE owner_id = $1))
        `, channelID)
		if err := row.Scan(&stats.LikeCount); err != nil {
			return fmt.Errorf("select like count: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		span.Fail(err)
		return ChannelStats{}, err
	}
	span.End()

	return stats, nil
}

// ChannelVideos lists a channel's videos with reduced owners, newest first.
func (a *Aggregator) ChannelVideos(ctx context.Context, channelID string, page Page) ([]VideoWithOwner, error) {
	ctx, span := logging.StartSpan(ctx, "readmodel.channel_videos")
	defer span.End()

	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+videoSelect+`, `+ownerRefSelect+`
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.owner_id = $1
        ORDER BY v.created_at DESC
        OFFSET $2 LIMIT $3
    `, channelID, page.Offset(), page.Limit)
	if err != nil {
		return nil, fmt.Errorf("query channel videos: %w", err)
	}
	defer rows.Close()

	return collectVideosWithOwner(rows)
}

// VideoQuery selects and orders the general video listing.
type VideoQuery struct {
	Search  string
	OwnerID string
	Sort    Sort
	Page    Page
}

// Videos lists videos matching the query. A window that matches nothing
// yields an empty listing, not an error; only singular lookups are NotFound.
func (a *Aggregator) Videos(ctx context.Context, query VideoQuery) ([]VideoWithOwner, error) {
	ctx, span := logging.StartSpan(ctx, "readmodel.videos")
	defer span.End()

	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	sql := `
        SELECT ` + videoSelect + `, ` + ownerRefSelect + `
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE ($1 = '' OR v.title ILIKE '%' || $1 || '%')
          AND ($2 = '' OR v.owner_id = $2)
        ORDER BY v.` + query.Sort.OrderBy() + `
        OFFSET $3 LIMIT $4`

	rows, err := conn.Query(ctx, sql, query.Search, query.OwnerID, query.Page.Offset(), query.Page.Limit)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	return collectVideosWithOwner(rows)
}

// VideoByID fetches a single video with its reduced owner projection.
func (a *Aggregator) VideoByID(ctx context.Context, videoID string) (VideoWithOwner, error) {
	ctx, span := logging.StartSpan(ctx, "readmodel.video_by_id")
	defer span.End()

	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return VideoWithOwner{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+videoSelect+`, `+ownerRefSelect+`
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.id = $1
    `, videoID)

	var video VideoWithOwner
	if err := scanVideoWithOwner(row, &video); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return VideoWithOwner{}, repositories.ErrNotFound
		}
		return VideoWithOwner{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

// LikedVideos lists the thin projections of videos the user has liked,
// newest like first.
func (a *Aggregator) LikedVideos(ctx context.Context, userID string) ([]LikedVideo, error) {
	ctx, span := logging.StartSpan(ctx, "readmodel.liked_videos")
	defer span.End()

	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.thumbnail
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        WHERE l.liked_by = $1 AND l.target_kind = 'video'
        ORDER BY l.created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	videos := []LikedVideo{}
	for rows.Next() {
		var v LikedVideo
		if err := rows.Scan(&v.ID, &v.Title, &v.Thumbnail); err != nil {
			return nil, fmt.Errorf("scan liked video: %w", err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liked videos: %w", err)
	}

	return videos, nil
}

// Subscribers lists the reduced projections of users subscribed to the channel.
func (a *Aggregator) Subscribers(ctx context.Context, channelID string) ([]models.UserRef, error) {
	return a.userRefs(ctx, "readmodel.subscribers", `
        SELECT `+ownerRefSelect+`
        FROM subscriptions s
        JOIN users u ON u.id = s.subscriber_id
        WHERE s.channel_id = $1
        ORDER BY s.created_at DESC
    `, channelID)
}

// SubscribedChannels lists the reduced projections of channels the user follows.
func (a *Aggregator) SubscribedChannels(ctx context.Context, subscriberID string) ([]models.UserRef, error) {
	return a.userRefs(ctx, "readmodel.subscribed_channels", `
        SELECT `+ownerRefSelect+`
        FROM subscriptions s
        JOIN users u ON u.id = s.channel_id
        WHERE s.subscriber_id = $1
        ORDER BY s.created_at DESC
    `, subscriberID)
}

func (a *Aggregator) userRefs(ctx context.Context, spanName, sql, id string) ([]models.UserRef, error) {
	ctx, span := logging.StartSpan(ctx, spanName)
	defer span.End()

	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, sql, id)
	if err != nil {
		return nil, fmt.Errorf("query user refs: %w", err)
	}
	defer rows.Close()

	refs := []models.UserRef{}
	for rows.Next() {
		var ref models.UserRef
		if err := rows.Scan(&ref.ID, &ref.UserName, &ref.FullName, &ref.Avatar); err != nil {
			return nil, fmt.Errorf("scan user ref: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user refs: %w", err)
	}

	return refs, nil
}

func collectVideosWithOwner(rows pgx.Rows) ([]VideoWithOwner, error) {
	videos := []VideoWithOwner{}
	for rows.Next() {
		var v VideoWithOwner
		if err := scanVideoWithOwner(rows, &v); err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return videos, nil
}

func scanVideoWithOwner(row pgx.Row, v *VideoWithOwner) error {
	return row.Scan(
		&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoFile, &v.VideoKey,
		&v.Thumbnail, &v.ThumbnailKey, &v.Duration, &v.Views, &v.IsPublished,
		&v.CreatedAt, &v.UpdatedAt,
		&v.Owner.ID, &v.Owner.UserName, &v.Owner.FullName, &v.Owner.Avatar,
	)
}

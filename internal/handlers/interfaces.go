package handlers

import (
	"context"
	"io"

	"github.com/videotube/backend/internal/middleware"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/readmodel"
	"github.com/videotube/backend/internal/repositories"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, userNameOrEmail string) (models.User, error)
	UpdateDetails(ctx context.Context, id, fullName, email string) (models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAvatar(ctx context.Context, id, url, key string) (models.User, error)
	UpdateCoverImage(ctx context.Context, id, url, key string) (models.User, error)
}

// SessionManager issues, refreshes, and revokes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, refreshToken string)
	RevokeUser(ctx context.Context, userID string) error
}

// VideoStore captures persistence for video workflows.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	Update(ctx context.Context, id, ownerID string, update repositories.VideoUpdate) (models.Video, error)
	Delete(ctx context.Context, id, ownerID string) (models.Video, error)
	TogglePublish(ctx context.Context, id, ownerID string) (models.Video, error)
	RecordView(ctx context.Context, videoID, viewerID string) error
}

// CommentStore captures persistence for comment workflows.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	Update(ctx context.Context, id, ownerID, content string) (models.Comment, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// LikeStore toggles the liked state of a single target.
type LikeStore interface {
	Toggle(ctx context.Context, likedBy string, kind models.LikeKind, targetID string) (bool, error)
}

// PlaylistStore captures persistence for playlist workflows.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	Update(ctx context.Context, id, ownerID string, update repositories.PlaylistUpdate) error
	Delete(ctx context.Context, id, ownerID string) error
	AddVideo(ctx context.Context, playlistID, ownerID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, ownerID, videoID string) error
}

// SubscriptionStore toggles the subscribed state of a channel/subscriber pair.
type SubscriptionStore interface {
	Toggle(ctx context.Context, channelID, subscriberID string) (bool, error)
}

// TweetStore captures persistence for tweet workflows.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	Update(ctx context.Context, id, ownerID, content string) (models.Tweet, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// ChannelReader serves the channel-centric derived views.
type ChannelReader interface {
	ChannelProfile(ctx context.Context, userName, viewerID string) (readmodel.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]readmodel.VideoWithOwner, error)
}

// VideoReader serves the video listing and detail views.
type VideoReader interface {
	Videos(ctx context.Context, query readmodel.VideoQuery) ([]readmodel.VideoWithOwner, error)
	VideoByID(ctx context.Context, videoID string) (readmodel.VideoWithOwner, error)
}

// CommentReader serves the paginated comment thread of a video.
type CommentReader interface {
	VideoComments(ctx context.Context, videoID string, page readmodel.Page) ([]readmodel.CommentWithOwner, error)
}

// LikeReader serves the liked-video listing.
type LikeReader interface {
	LikedVideos(ctx context.Context, userID string) ([]readmodel.LikedVideo, error)
}

// PlaylistReader serves resolved playlist views.
type PlaylistReader interface {
	PlaylistByID(ctx context.Context, playlistID string) (readmodel.PlaylistView, error)
	UserPlaylists(ctx context.Context, ownerID string) ([]readmodel.PlaylistView, error)
}

// SubscriptionReader serves subscriber and subscription listings.
type SubscriptionReader interface {
	Subscribers(ctx context.Context, channelID string) ([]models.UserRef, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]models.UserRef, error)
}

// TweetReader serves tweet listings and details.
type TweetReader interface {
	Tweets(ctx context.Context, page readmodel.Page) ([]readmodel.TweetWithOwner, error)
	TweetByID(ctx context.Context, tweetID string) (readmodel.TweetWithOwner, error)
}

// DashboardReader serves the channel owner's aggregate views.
type DashboardReader interface {
	ChannelStats(ctx context.Context, channelID string) (readmodel.ChannelStats, error)
	ChannelVideos(ctx context.Context, channelID string, page readmodel.Page) ([]readmodel.VideoWithOwner, error)
}

// BlobStore persists uploaded media and returns the public URL.
type BlobStore interface {
	Save(ctx context.Context, key string, r io.Reader) (string, error)
}

// BlobCleaner schedules background deletion of replaced or orphaned blobs.
type BlobCleaner interface {
	Enqueue(ctx context.Context, key string) error
}

// DurationProber reports the playable duration of an uploaded media file.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

func currentUser(ctx context.Context) (models.User, bool) {
	return middleware.CurrentUser(ctx)
}

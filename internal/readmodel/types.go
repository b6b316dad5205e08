package readmodel

import (
	"time"

	"github.com/videotube/backend/internal/models"
)

// ChannelProfile is the public view of a user's channel with derived
// subscription counts. Password hashes and session state never appear here.
type ChannelProfile struct {
	ID                        string `json:"_id"`
	UserName                  string `json:"userName"`
	Email                     string `json:"email"`
	FullName                  string `json:"fullName"`
	Avatar                    string `json:"avatar"`
	CoverImage                string `json:"coverImage,omitempty"`
	SubscribersCount          int64  `json:"subscribersCount"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
}

// ChannelStats aggregates a channel's reach. Like rows are the single source
// of truth for like counts; totalLikes covers the channel's videos while
// likeCount covers everything the channel owns.
type ChannelStats struct {
	TotalViews      int64 `json:"totalViews"`
	TotalLikes      int64 `json:"totalLikes"`
	SubscriberCount int64 `json:"subscriberCount"`
	LikeCount       int64 `json:"likeCount"`
}

// VideoWithOwner embeds the reduced owner projection into a video record.
type VideoWithOwner struct {
	models.Video
	Owner models.UserRef `json:"owner"`
}

// CommentWithOwner is a comment joined with its author's reduced projection.
type CommentWithOwner struct {
	ID        string         `json:"_id"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Owner     models.UserRef `json:"owner"`
}

// LikedVideo is the thin projection returned by the liked-videos listing.
type LikedVideo struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
}

// PlaylistView is a playlist with its video records resolved and the owner reduced.
type PlaylistView struct {
	ID          string         `json:"_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Owner       models.UserRef `json:"owner"`
	Videos      []models.Video `json:"videos"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// TweetWithOwner is a tweet joined with its author's reduced projection.
type TweetWithOwner struct {
	ID        string         `json:"_id"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Owner     models.UserRef `json:"owner"`
}

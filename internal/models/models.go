package models

import "time"

// User represents an account within the VideoTube platform. UserName is
// stored lowercase and unique; the password field always holds a bcrypt hash.
type User struct {
	ID            string    `json:"_id"`
	UserName      string    `json:"userName"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	Avatar        string    `json:"avatar"`
	AvatarKey     string    `json:"-"`
	CoverImage    string    `json:"coverImage,omitempty"`
	CoverImageKey string    `json:"-"`
	Password      string    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// UserRef is the reduced projection of a user embedded in joined views.
type UserRef struct {
	ID       string `json:"_id"`
	UserName string `json:"userName"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// Ref returns the reduced projection of the user.
func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, UserName: u.UserName, FullName: u.FullName, Avatar: u.Avatar}
}

// Video is an uploaded video owned by a single user. The blob keys are kept
// alongside the public URLs so deletions can target the underlying objects.
type Video struct {
	ID           string    `json:"_id"`
	OwnerID      string    `json:"owner"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoFile    string    `json:"videoFile"`
	VideoKey     string    `json:"-"`
	Thumbnail    string    `json:"thumbnail"`
	ThumbnailKey string    `json:"-"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	IsPublished  bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Comment is a user comment attached to a video.
type Comment struct {
	ID        string    `json:"_id"`
	VideoID   string    `json:"video"`
	OwnerID   string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LikeKind tags the single target a like points at.
type LikeKind string

const (
	LikeVideo   LikeKind = "video"
	LikeComment LikeKind = "comment"
	LikeTweet   LikeKind = "tweet"
)

// Like records that a user liked exactly one video, comment, or tweet.
// (likedBy, kind, targetId) is unique; presence of the row is the "liked"
// state.
type Like struct {
	ID        string    `json:"_id"`
	LikedBy   string    `json:"likedBy"`
	Kind      LikeKind  `json:"kind"`
	TargetID  string    `json:"targetId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Subscription records that subscriber follows channel. The pair is unique
// and a channel can never subscribe to itself.
type Subscription struct {
	ID           string    `json:"_id"`
	ChannelID    string    `json:"channel"`
	SubscriberID string    `json:"subscriber"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Playlist is an ordered set of videos owned by a user; duplicates are
// disallowed.
type Playlist struct {
	ID          string    `json:"_id"`
	OwnerID     string    `json:"owner"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoIDs    []string  `json:"videos"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Tweet is a short text post by a user.
type Tweet struct {
	ID        string    `json:"_id"`
	OwnerID   string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TweetMaxLength bounds tweet content, in runes.
const TweetMaxLength = 280

// SessionTokens groups the credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

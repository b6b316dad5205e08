package readmodel

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/repositories"
)

// Tweets lists tweets joined with their authors, newest first, within the
// provided page window.
func (a *Aggregator) Tweets(ctx context.Context, page Page) ([]TweetWithOwner, error) {
	ctx, span := logging.StartSpan(ctx, "readmodel.tweets")
	defer span.End()

	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT t.id, t.content, t.created_at, t.updated_at, `+ownerRefSelect+`
        FROM tweets t
        JOIN users u ON u.id = t.owner_id
        ORDER BY t.created_at DESC
        OFFSET $1 LIMIT $2
    `, page.Offset(), page.Limit)
	if err != nil {
		return nil, fmt.Errorf("query tweets: %w", err)
	}
	defer rows.Close()

	tweets := []TweetWithOwner{}
	for rows.Next() {
		var t TweetWithOwner
		if err := rows.Scan(
			&t.ID, &t.Content, &t.CreatedAt, &t.UpdatedAt,
			&t.Owner.ID, &t.Owner.UserName, &t.Owner.FullName, &t.Owner.Avatar,
		); err != nil {
			return nil, fmt.Errorf("scan tweet: %w", err)
		}
		tweets = append(tweets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tweets: %w", err)
	}

	return tweets, nil
}

// TweetByID fetches a single tweet with its author's reduced projection.
func (a *Aggregator) TweetByID(ctx context.Context, tweetID string) (TweetWithOwner, error) {
	ctx, span := logging.StartSpan(ctx, "readmodel.tweet_by_id")
	defer span.End()

	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return TweetWithOwner{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var t TweetWithOwner
	row := conn.QueryRow(ctx, `
        SELECT t.id, t.content, t.created_at, t.updated_at, `+ownerRefSelect+`
        FROM tweets t
        JOIN users u ON u.id = t.owner_id
        WHERE t.id = $1
    `, tweetID)
	if err := row.Scan(
		&t.ID, &t.Content, &t.CreatedAt, &t.UpdatedAt,
		&t.Owner.ID, &t.Owner.UserName, &t.Owner.FullName, &t.Owner.Avatar,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TweetWithOwner{}, repositories.ErrNotFound
		}
		return TweetWithOwner{}, fmt.Errorf("select tweet: %w", err)
	}

	return t, nil
}

package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/db"
	"github.com/videotube/backend/internal/models"
)

// LikeRepository toggles existence-based likes on videos, comments, and tweets.
type LikeRepository interface {
	Toggle(ctx context.Context, likedBy string, kind models.LikeKind, targetID string) (liked bool, err error)
}

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Toggle flips the like state for (likedBy, kind, targetID) and reports the
// resulting state. The delete runs first; if no row was removed an insert is
// attempted, and the uniqueness constraint absorbs concurrent duplicates so
// two racing toggles settle on at most one row.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, likedBy string, kind models.LikeKind, targetID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM likes
        WHERE liked_by = $1 AND target_kind = $2 AND target_id = $3
    `, likedBy, kind, targetID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	tag, err = conn.Exec(ctx, `
        INSERT INTO likes (id, liked_by, target_kind, target_id, created_at)
        VALUES ($1, $2, $3, $4, now())
        ON CONFLICT (liked_by, target_kind, target_id) DO NOTHING
    `, uuid.NewString(), likedBy, kind, targetID)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

var _ LikeRepository = (*PostgresLikeRepository)(nil)

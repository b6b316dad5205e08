package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/videotube/backend/internal/db"
	"github.com/videotube/backend/internal/models"
)

// VideoUpdate carries the optional fields of a video edit; nil means unchanged.
type VideoUpdate struct {
	Title        *string
	Description  *string
	Thumbnail    *string
	ThumbnailKey *string
}

// VideoRepository defines data access for uploaded videos. Every mutation is
// scoped to the owning user; a non-matching (id, owner) pair reports
// ErrNotFound without revealing whether the video exists.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	Update(ctx context.Context, id, ownerID string, update VideoUpdate) (models.Video, error)
	Delete(ctx context.Context, id, ownerID string) (models.Video, error)
	TogglePublish(ctx context.Context, id, ownerID string) (models.Video, error)
	RecordView(ctx context.Context, videoID, viewerID string) error
}

const videoColumns = `id, owner_id, title, description, video_file, video_key, thumbnail, thumbnail_key, duration, views, is_published, created_at, updated_at`

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, title, description, video_file, video_key, thumbnail, thumbnail_key, duration, views, is_published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, video.ID, video.OwnerID, video.Title, video.Description, video.VideoFile, video.VideoKey,
		video.Thumbnail, video.ThumbnailKey, video.Duration, video.Views, video.IsPublished,
		video.CreatedAt, video.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// Update edits the provided fields of a video owned by ownerID.
func (r *PostgresVideoRepository) Update(ctx context.Context, id, ownerID string, update VideoUpdate) (models.Video, error) {
	return r.returningOne(ctx, `
        UPDATE videos
        SET title = COALESCE($3, title),
            description = COALESCE($4, description),
            thumbnail = COALESCE($5, thumbnail),
            thumbnail_key = COALESCE($6, thumbnail_key),
            updated_at = now()
        WHERE id = $1 AND owner_id = $2
        RETURNING `+videoColumns,
		id, ownerID, update.Title, update.Description, update.Thumbnail, update.ThumbnailKey)
}

// Delete removes a video owned by ownerID and returns the deleted record so
// callers can release its blobs.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id, ownerID string) (models.Video, error) {
	return r.returningOne(ctx, `
        DELETE FROM videos
        WHERE id = $1 AND owner_id = $2
        RETURNING `+videoColumns, id, ownerID)
}

// TogglePublish flips the published state of a video owned by ownerID.
func (r *PostgresVideoRepository) TogglePublish(ctx context.Context, id, ownerID string) (models.Video, error) {
	return r.returningOne(ctx, `
        UPDATE videos
        SET is_published = NOT is_published, updated_at = now()
        WHERE id = $1 AND owner_id = $2
        RETURNING `+videoColumns, id, ownerID)
}

// RecordView increments the view counter and moves the video to the front of
// the viewer's watch history.
func (r *PostgresVideoRepository) RecordView(ctx context.Context, videoID, viewerID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos SET views = views + 1 WHERE id = $1
    `, videoID)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if viewerID == "" {
		return nil
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (user_id, video_id, watched_at)
        VALUES ($1, $2, now())
        ON CONFLICT (user_id, video_id)
        DO UPDATE SET watched_at = now()
    `, viewerID, videoID)
	if err != nil {
		return fmt.Errorf("record watch history: %w", err)
	}

	return nil
}

func (r *PostgresVideoRepository) returningOne(ctx context.Context, sql string, args ...any) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var video models.Video
	row := conn.QueryRow(ctx, sql, args...)
	if err := scanVideo(row, &video); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("write video: %w", err)
	}

	return video, nil
}

func scanVideo(row pgx.Row, video *models.Video) error {
	return row.Scan(
		&video.ID, &video.OwnerID, &video.Title, &video.Description,
		&video.VideoFile, &video.VideoKey, &video.Thumbnail, &video.ThumbnailKey,
		&video.Duration, &video.Views, &video.IsPublished,
		&video.CreatedAt, &video.UpdatedAt,
	)
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)

package readmodel

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
)

const playlistSelect = `p.id, p.name, p.description, p.created_at, p.updated_at`

// PlaylistByID fetches a playlist with its owner reduced and its videos
// resolved in playlist order.
func (a *Aggregator) PlaylistByID(ctx context.Context, playlistID string) (PlaylistView, error) {
	ctx, span := logging.StartSpan(ctx, "readmodel.playlist_by_id")
	defer span.End()

	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return PlaylistView{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var view PlaylistView
	row := conn.QueryRow(ctx, `
        SELECT `+playlistSelect+`, `+ownerRefSelect+`
        FROM playlists p
        JOIN users u ON u.id = p.owner_id
        WHERE p.id = $1
    `, playlistID)
	if err := row.Scan(
		&view.ID, &view.Name, &view.Description, &view.CreatedAt, &view.UpdatedAt,
		&view.Owner.ID, &view.Owner.UserName, &view.Owner.FullName, &view.Owner.Avatar,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PlaylistView{}, repositories.ErrNotFound
		}
		return PlaylistView{}, fmt.Errorf("select playlist: %w", err)
	}

	videos, err := playlistVideos(ctx, conn, playlistID)
	if err != nil {
		return PlaylistView{}, err
	}
	view.Videos = videos

	return view, nil
}

// UserPlaylists lists the playlists owned by a user, each with its videos
// resolved.
func (a *Aggregator) UserPlaylists(ctx context.Context, ownerID string) ([]PlaylistView, error) {
	ctx, span := logging.StartSpan(ctx, "readmodel.user_playlists")
	defer span.End()

	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+playlistSelect+`, `+ownerRefSelect+`
        FROM playlists p
        JOIN users u ON u.id = p.owner_id
        WHERE p.owner_id = $1
        ORDER BY p.created_at DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}

	views := []PlaylistView{}
	for rows.Next() {
		var view PlaylistView
		if err := rows.Scan(
			&view.ID, &view.Name, &view.Description, &view.CreatedAt, &view.UpdatedAt,
			&view.Owner.ID, &view.Owner.UserName, &view.Owner.FullName, &view.Owner.Avatar,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	rows.Close()

	for i := range views {
		videos, err := playlistVideos(ctx, conn, views[i].ID)
		if err != nil {
			return nil, err
		}
		views[i].Videos = videos
	}

	return views, nil
}

// playlistVideos runs on the caller's connection; acquiring a second one
// here while the caller holds its own can exhaust the pool under load.
func playlistVideos(ctx context.Context, conn *pgxpool.Conn, playlistID string) ([]models.Video, error) {
	rows, err := conn.Query(ctx, `
        SELECT `+videoSelect+`
        FROM playlist_videos pv
        JOIN videos v ON v.id = pv.video_id
        WHERE pv.playlist_id = $1
        ORDER BY pv.position ASC
    `, playlistID)
	if err != nil {
		return nil, fmt.Errorf("query playlist videos: %w", err)
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		var v models.Video
		if err := rows.Scan(
			&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoFile, &v.VideoKey,
			&v.Thumbnail, &v.ThumbnailKey, &v.Duration, &v.Views, &v.IsPublished,
			&v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan playlist video: %w", err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist videos: %w", err)
	}

	return videos, nil
}

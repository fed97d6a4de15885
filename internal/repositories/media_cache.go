package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/shared"
)

// CachedMedia is a media item with the time it was fetched.
type CachedMedia struct {
	Item      models.MediaItem
	FetchedAt time.Time
}

// MediaCacheRepository persists the last fetched copy of media details.
type MediaCacheRepository struct {
	db *sql.DB
}

// NewMediaCacheRepository creates a new [MediaCacheRepository] with the given database connection
func NewMediaCacheRepository(db *sql.DB) *MediaCacheRepository {
	return &MediaCacheRepository{db: db}
}

// Put upserts item, replacing any older copy.
func (r *MediaCacheRepository) Put(item models.MediaItem) error {
	if item.ID == "" {
		return fmt.Errorf("%w: media id is required", shared.ErrInvalidInput)
	}

	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal media: %w", err)
	}

	query := `
		INSERT INTO media_cache (id, title, media_type, payload, fetched_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			media_type = excluded.media_type,
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`
	if _, err := r.db.Exec(query, item.ID, item.Title, string(item.Type), string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to cache media: %w", err)
	}
	return nil
}

// Get returns the cached copy of id, or [shared.ErrNotFound].
func (r *MediaCacheRepository) Get(id string) (*CachedMedia, error) {
	var (
		payload   string
		fetchedAt time.Time
	)
	err := r.db.QueryRow("SELECT payload, fetched_at FROM media_cache WHERE id = ?", id).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: media %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query media cache: %w", err)
	}

	cached := &CachedMedia{FetchedAt: fetchedAt}
	if err := json.Unmarshal([]byte(payload), &cached.Item); err != nil {
		return nil, fmt.Errorf("failed to decode cached media: %w", err)
	}
	return cached, nil
}

// List returns cached items of the given type (all types when empty), newest first.
func (r *MediaCacheRepository) List(mediaType models.MediaType) ([]CachedMedia, error) {
	query := "SELECT payload, fetched_at FROM media_cache"
	var args []any
	if mediaType != "" {
		query += " WHERE media_type = ?"
		args = append(args, string(mediaType))
	}
	query += " ORDER BY fetched_at DESC, title ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list media cache: %w", err)
	}
	defer rows.Close()

	var out []CachedMedia
	for rows.Next() {
		var (
			payload string
			entry   CachedMedia
		)
		if err := rows.Scan(&payload, &entry.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan media cache row: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &entry.Item); err != nil {
			return nil, fmt.Errorf("failed to decode cached media: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// Prune deletes entries fetched before cutoff and returns how many were removed.
func (r *MediaCacheRepository) Prune(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec("DELETE FROM media_cache WHERE fetched_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune media cache: %w", err)
	}
	return res.RowsAffected()
}

// MediaCacheAdapter implements tasks.MediaCacher using [MediaCacheRepository].
type MediaCacheAdapter struct {
	repo *MediaCacheRepository
}

// NewMediaCacheAdapter creates a new [MediaCacheAdapter] with the given repository
func NewMediaCacheAdapter(repo *MediaCacheRepository) *MediaCacheAdapter {
	return &MediaCacheAdapter{repo: repo}
}

// CacheMedia stores item.
func (a *MediaCacheAdapter) CacheMedia(item models.MediaItem) error {
	return a.repo.Put(item)
}

// CachedMedia returns the stored copy of id.
func (a *MediaCacheAdapter) CachedMedia(id string) (*models.MediaItem, time.Time, error) {
	cached, err := a.repo.Get(id)
	if err != nil {
		return nil, time.Time{}, err
	}
	return &cached.Item, cached.FetchedAt, nil
}

package services

import (
	"context"

	"github.com/desertthunder/mrx/internal/models"
)

// MediaService covers the /media catalogue.
type MediaService struct {
	client *Client
}

// List returns one filtered page of the catalogue.
func (s *MediaService) List(ctx context.Context, filters models.MediaFilters) (*Paged[models.MediaItem], error) {
	page, _, err := list[models.MediaItem](ctx, s.client, "/media", filters.Query(), "Failed to fetch media")
	return page, err
}

// Get returns one media item.
func (s *MediaService) Get(ctx context.Context, id string) (*models.MediaItem, error) {
	item, err := get[models.MediaItem](ctx, s.client, "/media/"+segment(id), nil, "Failed to fetch media details")
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GenreService covers /genres.
type GenreService struct {
	client *Client
}

// List returns one filtered page of genres.
func (s *GenreService) List(ctx context.Context, filters models.GenreFilters) (*Paged[models.Genre], error) {
	page, _, err := list[models.Genre](ctx, s.client, "/genres", filters.Query(), "Failed to fetch genres")
	return page, err
}

package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/shared"
)

// RatingService covers /ratings.
type RatingService struct {
	client *Client
}

// Submit creates or replaces the user's rating of a media item.
func (s *RatingService) Submit(ctx context.Context, mediaID string, rating int) (*models.Rating, error) {
	if err := models.ValidateRating(rating); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	body := map[string]any{"mediaId": mediaID, "rating": rating}
	out, err := send[models.Rating](ctx, s.client, http.MethodPost, "/ratings", body, "Failed to submit rating")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns the user's rating of a media item, or nil when there is none.
func (s *RatingService) Get(ctx context.Context, mediaID string) (*models.Rating, error) {
	out, err := get[*models.Rating](ctx, s.client, "/ratings/user/media/"+segment(mediaID), nil, "Failed to fetch rating")
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// Remove deletes the user's rating of a media item.
func (s *RatingService) Remove(ctx context.Context, mediaID string) error {
	q := url.Values{"mediaId": {mediaID}}
	return exec(ctx, s.client, http.MethodDelete, "/ratings", q, nil, "Failed to remove rating")
}

// ReviewService covers /reviews.
type ReviewService struct {
	client *Client
}

// Submit creates or replaces the user's review of a media item.
func (s *ReviewService) Submit(ctx context.Context, input models.ReviewInput) (*models.Review, error) {
	out, err := send[models.Review](ctx, s.client, http.MethodPost, "/reviews", input, "Failed to submit review")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Mine returns the user's review of a media item, or nil when there is none.
func (s *ReviewService) Mine(ctx context.Context, mediaID string) (*models.Review, error) {
	q := url.Values{"mediaId": {mediaID}}
	out, err := get[*models.Review](ctx, s.client, "/reviews/user", q, "Failed to fetch review")
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// ForMedia returns one page of a media item's reviews.
func (s *ReviewService) ForMedia(ctx context.Context, mediaID string, query models.ReviewQuery) (*Paged[models.Review], error) {
	page, _, err := list[models.Review](ctx, s.client, "/reviews/media/"+segment(mediaID), query.Query(), "Failed to fetch reviews")
	return page, err
}

// Delete removes a review.
func (s *ReviewService) Delete(ctx context.Context, reviewID string) error {
	return exec(ctx, s.client, http.MethodDelete, "/reviews/"+segment(reviewID), nil, nil, "Failed to delete review")
}

// Like marks a review as liked by the user.
func (s *ReviewService) Like(ctx context.Context, reviewID string) error {
	return exec(ctx, s.client, http.MethodPost, "/api/reviews/"+segment(reviewID)+"/like", nil, nil, "Failed to like review")
}

// Unlike removes the user's like from a review.
func (s *ReviewService) Unlike(ctx context.Context, reviewID string) error {
	return exec(ctx, s.client, http.MethodDelete, "/api/reviews/"+segment(reviewID)+"/like", nil, nil, "Failed to unlike review")
}

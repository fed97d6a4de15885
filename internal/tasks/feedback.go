package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/services"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/desertthunder/mrx/internal/store"
)

// FetchRating loads the user's rating of mediaID. A missing rating is nil, not an error.
func (e *Engine) FetchRating(ctx context.Context, mediaID string) (*models.Rating, error) {
	return run(e, store.RatingKey(mediaID), func() (*models.Rating, error) {
		return e.api.Ratings.Get(ctx, mediaID)
	}, func(s store.Settle, r *models.Rating) store.Action {
		return store.RatingFetched{Settle: s, MediaID: mediaID, Rating: r}
	})
}

// RateMedia submits a 1 to 10 rating.
func (e *Engine) RateMedia(ctx context.Context, mediaID string, rating int) (*models.Rating, error) {
	if mediaID == "" {
		return nil, fmt.Errorf("%w: media id", shared.ErrMissingArgument)
	}
	return run(e, store.RatingKey(mediaID), func() (*models.Rating, error) {
		r, err := e.api.Ratings.Submit(ctx, mediaID, rating)
		if err == nil && r.MediaID == "" {
			r.MediaID = mediaID
		}
		return r, err
	}, func(s store.Settle, r *models.Rating) store.Action {
		return store.RatingSubmitted{Settle: s, Rating: *r}
	})
}

func (e *Engine) RemoveRating(ctx context.Context, mediaID string) error {
	return do(e, store.RatingKey(mediaID), func() error {
		return e.api.Ratings.Remove(ctx, mediaID)
	}, func(s store.Settle) store.Action {
		return store.RatingRemoved{Settle: s, MediaID: mediaID}
	})
}

// FetchReview loads the user's review of mediaID. A missing review is nil, not an error.
func (e *Engine) FetchReview(ctx context.Context, mediaID string) (*models.Review, error) {
	return run(e, store.ReviewKey(mediaID), func() (*models.Review, error) {
		return e.api.Reviews.Mine(ctx, mediaID)
	}, func(s store.Settle, r *models.Review) store.Action {
		return store.ReviewFetched{Settle: s, MediaID: mediaID, Review: r}
	})
}

// SubmitReview creates or replaces the user's review.
func (e *Engine) SubmitReview(ctx context.Context, input models.ReviewInput) (*models.Review, error) {
	if input.MediaID == "" || input.Content == "" {
		return nil, fmt.Errorf("%w: media id and content are required", shared.ErrMissingArgument)
	}
	return run(e, store.ReviewKey(input.MediaID), func() (*models.Review, error) {
		r, err := e.api.Reviews.Submit(ctx, input)
		if err == nil && r.MediaID == "" {
			r.MediaID = input.MediaID
		}
		return r, err
	}, func(s store.Settle, r *models.Review) store.Action {
		return store.ReviewSubmitted{Settle: s, Review: *r}
	})
}

func (e *Engine) DeleteReview(ctx context.Context, mediaID, reviewID string) error {
	return do(e, store.ReviewKey(mediaID), func() error {
		return e.api.Reviews.Delete(ctx, reviewID)
	}, func(s store.Settle) store.Action {
		return store.ReviewDeleted{Settle: s, MediaID: mediaID, ReviewID: reviewID}
	})
}

// FetchMediaReviews loads one page of the public reviews of mediaID.
func (e *Engine) FetchMediaReviews(ctx context.Context, mediaID string, q models.ReviewQuery) (*services.Paged[models.Review], error) {
	return run(e, store.MediaReviewsKey(mediaID), func() (*services.Paged[models.Review], error) {
		return e.api.Reviews.ForMedia(ctx, mediaID, q)
	}, func(s store.Settle, p *services.Paged[models.Review]) store.Action {
		return store.MediaReviewsFetched{Settle: s, MediaID: mediaID, Items: p.Items, Pagination: p.Pagination}
	})
}

// LikeReview likes (or with liked false, unlikes) a review.
func (e *Engine) LikeReview(ctx context.Context, reviewID string, liked bool) error {
	return do(e, store.ReviewLikeKey(reviewID), func() error {
		if liked {
			return e.api.Reviews.Like(ctx, reviewID)
		}
		return e.api.Reviews.Unlike(ctx, reviewID)
	}, func(s store.Settle) store.Action {
		return store.ReviewLiked{Settle: s, ReviewID: reviewID, Liked: liked}
	})
}

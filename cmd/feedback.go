package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/urfave/cli/v3"
)

// RatingsShow prints the signed-in user's rating of a media item.
func (r *Runner) RatingsShow(ctx context.Context, cmd *cli.Command) error {
	mediaID, err := r.mediaArg(cmd)
	if err != nil {
		return err
	}
	rating, err := r.engine.FetchRating(ctx, mediaID)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(rating, true)
	}
	if rating == nil {
		return r.writePlain("Not rated\n")
	}
	return r.writePlain("Your rating: %d/10\n", rating.Rating)
}

// RatingsRate creates or replaces a rating.
func (r *Runner) RatingsRate(ctx context.Context, cmd *cli.Command) error {
	mediaID, err := r.mediaArg(cmd)
	if err != nil {
		return err
	}
	value := cmd.IntArg("rating")
	if err := models.ValidateRating(value); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	rating, err := r.engine.RateMedia(ctx, mediaID, value)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Rated %d/10\n", rating.Rating)
}

func (r *Runner) RatingsRemove(ctx context.Context, cmd *cli.Command) error {
	mediaID, err := r.mediaArg(cmd)
	if err != nil {
		return err
	}
	if err := r.engine.RemoveRating(ctx, mediaID); err != nil {
		return err
	}
	return r.writePlain("✓ Rating removed\n")
}

// ReviewsList prints one page of a media item's reviews.
func (r *Runner) ReviewsList(ctx context.Context, cmd *cli.Command) error {
	mediaID := cmd.StringArg("media")
	if mediaID == "" {
		return fmt.Errorf("%w: media id", shared.ErrMissingArgument)
	}
	page, err := r.engine.FetchMediaReviews(ctx, mediaID, models.ReviewQuery{
		Page:         cmd.Int("page"),
		Limit:        cmd.Int("limit"),
		SortBy:       cmd.String("sort"),
		FilterRated:  cmd.Bool("rated"),
		HideSpoilers: cmd.Bool("hide-spoilers"),
	})
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d reviews:\n\n", page.Pagination.TotalItems)
	for _, review := range page.Items {
		r.writeReview(review)
	}
	return nil
}

// ReviewsShow prints the signed-in user's review of a media item.
func (r *Runner) ReviewsShow(ctx context.Context, cmd *cli.Command) error {
	mediaID, err := r.mediaArg(cmd)
	if err != nil {
		return err
	}
	review, err := r.engine.FetchReview(ctx, mediaID)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(review, true)
	}
	if review == nil {
		return r.writePlain("No review yet\n")
	}
	r.writeReview(*review)
	return nil
}

// ReviewsWrite creates the review, or replaces it when one exists.
func (r *Runner) ReviewsWrite(ctx context.Context, cmd *cli.Command) error {
	mediaID, err := r.mediaArg(cmd)
	if err != nil {
		return err
	}
	review, err := r.engine.SubmitReview(ctx, models.ReviewInput{
		MediaID:          mediaID,
		Content:          cmd.String("content"),
		ContainsSpoilers: cmd.Bool("spoilers"),
		IsVisible:        !cmd.Bool("hidden"),
	})
	if err != nil {
		return err
	}
	return r.writePlain("✓ Review saved (%s)\n", review.ID)
}

func (r *Runner) ReviewsDelete(ctx context.Context, cmd *cli.Command) error {
	mediaID, err := r.mediaArg(cmd)
	if err != nil {
		return err
	}
	review, err := r.engine.FetchReview(ctx, mediaID)
	if err != nil {
		return err
	}
	if review == nil {
		return fmt.Errorf("%w: no review of %s", shared.ErrNotFound, mediaID)
	}
	if err := r.engine.DeleteReview(ctx, mediaID, review.ID); err != nil {
		return err
	}
	return r.writePlain("✓ Review deleted\n")
}

func (r *Runner) ReviewsLike(ctx context.Context, cmd *cli.Command) error {
	return r.likeReview(ctx, cmd, true)
}

func (r *Runner) ReviewsUnlike(ctx context.Context, cmd *cli.Command) error {
	return r.likeReview(ctx, cmd, false)
}

func (r *Runner) likeReview(ctx context.Context, cmd *cli.Command, liked bool) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	reviewID := cmd.StringArg("review")
	if reviewID == "" {
		return fmt.Errorf("%w: review id", shared.ErrMissingArgument)
	}
	if err := r.engine.LikeReview(ctx, reviewID, liked); err != nil {
		return err
	}
	if liked {
		return r.writePlain("✓ Liked review %s\n", reviewID)
	}
	return r.writePlain("✓ Removed like from review %s\n", reviewID)
}

// mediaArg reads the media id argument of commands that act on the user's own feedback.
func (r *Runner) mediaArg(cmd *cli.Command) (string, error) {
	if err := r.requireSession(); err != nil {
		return "", err
	}
	mediaID := cmd.StringArg("media")
	if mediaID == "" {
		return "", fmt.Errorf("%w: media id", shared.ErrMissingArgument)
	}
	return mediaID, nil
}

func (r *Runner) writeReview(review models.Review) {
	author := review.UserID
	if review.User != nil {
		author = "@" + review.User.Username
	}
	r.writePlain("%s  ♥ %d", author, review.LikesCount)
	if review.IsLiked {
		r.writePlain(" (liked)")
	}
	r.writePlain("\n")
	if review.ContainsSpoilers {
		r.writePlain("   [spoilers]\n")
	}
	r.writePlain("   %s\n", review.Content)
	r.writePlain("   ID: %s\n\n", review.ID)
}

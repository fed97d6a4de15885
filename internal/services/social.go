package services

import (
	"context"
	"net/http"
	"net/url"

	"github.com/desertthunder/mrx/internal/models"
)

// RecommendationService covers /recommendations.
type RecommendationService struct {
	client *Client
}

// Personalized returns recommendations for the signed-in user.
func (s *RecommendationService) Personalized(ctx context.Context) ([]models.MediaItem, error) {
	return get[[]models.MediaItem](ctx, s.client, "/recommendations", nil, "Failed to fetch recommendations")
}

// Trending returns currently popular media.
func (s *RecommendationService) Trending(ctx context.Context) ([]models.MediaItem, error) {
	return get[[]models.MediaItem](ctx, s.client, "/recommendations/trending", nil, "Failed to fetch trending media")
}

// Similar returns media similar to mediaID.
func (s *RecommendationService) Similar(ctx context.Context, mediaID string) ([]models.MediaItem, error) {
	return get[[]models.MediaItem](ctx, s.client, "/recommendations/media/"+segment(mediaID), nil, "Failed to fetch similar media")
}

// UpdatePreferences stores the user's recommendation preferences.
func (s *RecommendationService) UpdatePreferences(ctx context.Context, userID string, prefs models.Preferences) (*models.Preferences, error) {
	out, err := send[models.Preferences](ctx, s.client, http.MethodPut, "/recommendations/preferences/"+segment(userID), prefs, "Failed to update preferences")
	if err != nil {
		return nil, err
	}
	if out.GenreIDs == nil && out.MediaTypePreferences == nil {
		out = prefs
	}
	return &out, nil
}

// UserService covers /users.
type UserService struct {
	client *Client
}

// Profile returns a user's public profile.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.UserProfile, error) {
	out, err := get[models.UserProfile](ctx, s.client, "/users/"+segment(userID), nil, "Failed to fetch user profile")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Followers returns the users following userID.
func (s *UserService) Followers(ctx context.Context, userID string) ([]models.UserItem, error) {
	return get[[]models.UserItem](ctx, s.client, "/users/"+segment(userID)+"/followers", nil, "Failed to fetch followers")
}

// Following returns the users userID follows.
func (s *UserService) Following(ctx context.Context, userID string) ([]models.UserItem, error) {
	return get[[]models.UserItem](ctx, s.client, "/users/"+segment(userID)+"/following", nil, "Failed to fetch following")
}

// Follow follows userID.
func (s *UserService) Follow(ctx context.Context, userID string) error {
	return exec(ctx, s.client, http.MethodPost, "/users/"+segment(userID)+"/follow", nil, nil, "Failed to follow user")
}

// Unfollow unfollows userID.
func (s *UserService) Unfollow(ctx context.Context, userID string) error {
	return exec(ctx, s.client, http.MethodDelete, "/users/"+segment(userID)+"/follow", nil, nil, "Failed to unfollow user")
}

// NotificationPage is one page of notifications with the server's unread count.
type NotificationPage struct {
	Items       []models.Notification
	UnreadCount int
	Pagination  models.Pagination
}

// NotificationService covers /notifications.
type NotificationService struct {
	client *Client
}

// List returns one page of notifications.
func (s *NotificationService) List(ctx context.Context, page models.Page) (*NotificationPage, error) {
	q := url.Values{}
	page.Apply(q)
	out, meta, err := list[models.Notification](ctx, s.client, "/notifications", q, "Failed to fetch notifications")
	if err != nil {
		return nil, err
	}

	result := &NotificationPage{Items: out.Items, Pagination: out.Pagination}
	if meta.UnreadCount != nil {
		result.UnreadCount = *meta.UnreadCount
	} else {
		for _, n := range out.Items {
			if !n.IsRead {
				result.UnreadCount++
			}
		}
	}
	return result, nil
}

// MarkRead marks one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	return exec(ctx, s.client, http.MethodPatch, "/notifications/"+segment(id)+"/read", nil, nil, "Failed to mark notification as read")
}

// MarkAllRead marks every notification as read.
func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	return exec(ctx, s.client, http.MethodPatch, "/notifications/read-all", nil, nil, "Failed to mark all notifications as read")
}

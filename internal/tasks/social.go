package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/notify"
	"github.com/desertthunder/mrx/internal/services"
	"github.com/desertthunder/mrx/internal/store"
)

func (e *Engine) FetchUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	return run(e, store.UserKey(userID), func() (*models.UserProfile, error) {
		return e.api.Users.Profile(ctx, userID)
	}, func(s store.Settle, p *models.UserProfile) store.Action {
		return store.ProfileFetched{Settle: s, Profile: *p}
	})
}

func (e *Engine) FetchFollowers(ctx context.Context, userID string) ([]models.UserItem, error) {
	return run(e, store.FollowersKey(userID), func() ([]models.UserItem, error) {
		return e.api.Users.Followers(ctx, userID)
	}, func(s store.Settle, items []models.UserItem) store.Action {
		return store.FollowersFetched{Settle: s, UserID: userID, Items: items}
	})
}

func (e *Engine) FetchFollowing(ctx context.Context, userID string) ([]models.UserItem, error) {
	return run(e, store.FollowingKey(userID), func() ([]models.UserItem, error) {
		return e.api.Users.Following(ctx, userID)
	}, func(s store.Settle, items []models.UserItem) store.Action {
		return store.FollowingFetched{Settle: s, UserID: userID, Items: items}
	})
}

// Follow follows (or with following false, unfollows) userID.
func (e *Engine) Follow(ctx context.Context, userID string, following bool) error {
	return do(e, store.FollowKey(userID), func() error {
		if following {
			return e.api.Users.Follow(ctx, userID)
		}
		return e.api.Users.Unfollow(ctx, userID)
	}, func(s store.Settle) store.Action {
		return store.FollowChanged{Settle: s, UserID: userID, Following: following}
	})
}

// FetchNotifications loads one page of notifications with the unread count.
func (e *Engine) FetchNotifications(ctx context.Context, page models.Page) (*services.NotificationPage, error) {
	return run(e, store.KeyNotifications, func() (*services.NotificationPage, error) {
		return e.api.Notifications.List(ctx, page)
	}, func(s store.Settle, p *services.NotificationPage) store.Action {
		return store.NotificationsFetched{Settle: s, Items: p.Items, UnreadCount: p.UnreadCount, Pagination: p.Pagination}
	})
}

func (e *Engine) MarkNotificationRead(ctx context.Context, id string) error {
	return do(e, store.NotificationReadKey(id), func() error {
		return e.api.Notifications.MarkRead(ctx, id)
	}, func(s store.Settle) store.Action {
		return store.NotificationRead{Settle: s, ID: id}
	})
}

func (e *Engine) MarkAllNotificationsRead(ctx context.Context) error {
	return do(e, store.KeyReadAll, func() error {
		return e.api.Notifications.MarkAllRead(ctx)
	}, func(s store.Settle) store.Action {
		return store.AllNotificationsRead{Settle: s}
	})
}

// PushHandler feeds notification channel events into the store.
type PushHandler struct {
	store  *store.Store
	logger *log.Logger
}

// Push returns the [notify.Handler] for e's store.
func (e *Engine) Push() *PushHandler {
	return &PushHandler{store: e.store, logger: e.logger}
}

func (h *PushHandler) OnNotification(n models.Notification) {
	h.store.Dispatch(store.NotificationReceived{Notification: n})
}

func (h *PushHandler) OnNotificationRead(id string) {
	h.store.Dispatch(store.NotificationRead{ID: id})
}

func (h *PushHandler) OnUnreadCount(count int) {
	h.store.Dispatch(store.UnreadCountSet{Count: count})
}

func (h *PushHandler) OnStateChange(s notify.State) {
	h.logger.Debug("notification channel", "state", s)
	h.store.Dispatch(store.ConnectionChanged{State: s.String()})
}

var _ notify.Handler = (*PushHandler)(nil)

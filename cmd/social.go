package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/desertthunder/mrx/internal/store"
	"github.com/urfave/cli/v3"
)

// UsersShow prints a user's profile and counters.
func (r *Runner) UsersShow(ctx context.Context, cmd *cli.Command) error {
	userID, err := r.userArg(cmd)
	if err != nil {
		return err
	}
	profile, err := r.engine.FetchUserProfile(ctx, userID)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(profile, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (@%s)", profile.Name, profile.Username))
	if profile.Bio != "" {
		r.writePlain("%s\n\n", profile.Bio)
	}
	s := profile.Stats
	r.writePlain("Followers: %d  Following: %d\n", s.FollowersCount, s.FollowingCount)
	r.writePlain("Lists: %d  Ratings: %d\n", s.ListsCount, s.RatingsCount)
	if profile.IsFollowing {
		r.writePlain("You follow this user\n")
	}
	return nil
}

func (r *Runner) UsersFollowers(ctx context.Context, cmd *cli.Command) error {
	userID, err := r.userArg(cmd)
	if err != nil {
		return err
	}
	users, err := r.engine.FetchFollowers(ctx, userID)
	if err != nil {
		return err
	}
	return r.writeUsers(cmd, "Followers", users)
}

func (r *Runner) UsersFollowing(ctx context.Context, cmd *cli.Command) error {
	userID, err := r.userArg(cmd)
	if err != nil {
		return err
	}
	users, err := r.engine.FetchFollowing(ctx, userID)
	if err != nil {
		return err
	}
	return r.writeUsers(cmd, "Following", users)
}

func (r *Runner) UsersFollow(ctx context.Context, cmd *cli.Command) error {
	return r.follow(ctx, cmd, true)
}

func (r *Runner) UsersUnfollow(ctx context.Context, cmd *cli.Command) error {
	return r.follow(ctx, cmd, false)
}

func (r *Runner) follow(ctx context.Context, cmd *cli.Command, following bool) error {
	userID, err := r.userArg(cmd)
	if err != nil {
		return err
	}
	if err := r.requireSession(); err != nil {
		return err
	}
	if err := r.engine.Follow(ctx, userID, following); err != nil {
		return err
	}
	if following {
		return r.writePlain("✓ Following %s\n", userID)
	}
	return r.writePlain("✓ Unfollowed %s\n", userID)
}

func (r *Runner) userArg(cmd *cli.Command) (string, error) {
	userID := cmd.StringArg("user")
	if userID == "" {
		return "", fmt.Errorf("%w: user id", shared.ErrMissingArgument)
	}
	return userID, nil
}

func (r *Runner) writeUsers(cmd *cli.Command, title string, users []models.UserItem) error {
	if cmd.Bool("json") {
		return r.writeJSON(users, cmd.Bool("pretty"))
	}
	r.writePlain("%s (%d):\n\n", title, len(users))
	for _, u := range users {
		r.writePlain("@%s", u.Username)
		if u.Name != "" {
			r.writePlain("  %s", u.Name)
		}
		if u.IsFollowing {
			r.writePlain("  (following)")
		}
		r.writePlain("\n   ID: %s\n", u.ID)
	}
	return nil
}

// NotificationsList prints one page of notifications and the unread count.
func (r *Runner) NotificationsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	page, err := r.engine.FetchNotifications(ctx, models.Page{Page: cmd.Int("page"), Limit: cmd.Int("limit")})
	if err != nil {
		return err
	}

	items := page.Items
	if cmd.Bool("unread") {
		items = make([]models.Notification, 0, len(page.Items))
		for _, n := range page.Items {
			if !n.IsRead {
				items = append(items, n)
			}
		}
	}
	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"items":       items,
			"unreadCount": page.UnreadCount,
			"pagination":  page.Pagination,
		}, cmd.Bool("pretty"))
	}

	r.writePlain("%d unread\n\n", page.UnreadCount)
	for _, n := range items {
		r.writeNotification(n)
	}
	return nil
}

func (r *Runner) NotificationsRead(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: notification id", shared.ErrMissingArgument)
	}
	if err := r.engine.MarkNotificationRead(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Marked read\n")
}

func (r *Runner) NotificationsReadAll(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	if err := r.engine.MarkAllNotificationsRead(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ All notifications marked read\n")
}

// NotificationsWatch connects the push channel and prints notifications until interrupted.
func (r *Runner) NotificationsWatch(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	useJSON := cmd.Bool("json")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := r.engine.FetchNotifications(ctx, models.Page{Page: 1}); err != nil {
		r.logger.Warn("failed to load notifications", "error", err)
	}

	unsubscribe := r.store.Subscribe(store.ListenerFunc(func(prev, next store.State, a store.Action) {
		switch a := a.(type) {
		case store.NotificationReceived:
			if useJSON {
				r.writeJSON(a.Notification, false)
				return
			}
			r.writeNotification(a.Notification)
		case store.ConnectionChanged:
			if !useJSON && prev.Notifications.Connection != next.Notifications.Connection {
				r.writePlain("· %s\n", a.State)
			}
		}
	}))
	defer unsubscribe()

	manager := r.notifier()
	if err := manager.Connect(ctx); err != nil {
		return err
	}
	if !useJSON {
		r.writePlain("Watching notifications (%d unread), Ctrl+C to stop\n", r.store.State().UnreadCount())
	}

	select {
	case <-ctx.Done():
	case <-manager.Done():
	}
	manager.Close()

	if err := manager.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Dashboard prints the overview. Sections that failed are listed with their error.
func (r *Runner) Dashboard(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	d, err := r.engine.Dashboard(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		errs := make(map[string]string, len(d.Errors))
		for name, e := range d.Errors {
			errs[name] = e.Error()
		}
		return r.writeJSON(map[string]any{
			"user":          d.User,
			"lists":         d.Lists,
			"personalized":  d.Personalized,
			"trending":      d.Trending,
			"notifications": d.Notifications,
			"unreadCount":   d.UnreadCount,
			"errors":        errs,
		}, cmd.Bool("pretty"))
	}

	if d.User != nil {
		r.writePlainHeader(fmt.Sprintf("%s (@%s)", d.User.Name, d.User.Username))
	}
	r.writePlain("Lists: %d  Unread notifications: %d\n", len(d.Lists), d.UnreadCount)

	r.writePlainln("Recommended for you:")
	r.writeTitles(d.Personalized, 5)
	r.writePlainln("Trending:")
	r.writeTitles(d.Trending, 5)

	if len(d.Errors) > 0 {
		r.writePlainln("Unavailable:")
		for name, e := range d.Errors {
			r.writePlain("  %s: %v\n", name, e)
		}
	}
	return nil
}

func (r *Runner) writeTitles(items []models.MediaItem, n int) {
	if len(items) == 0 {
		r.writePlain("  (none)\n")
		return
	}
	for _, m := range items[:min(n, len(items))] {
		r.writePlain("  • %s [%s]\n", m.Title, m.Type)
	}
}

func (r *Runner) writeNotification(n models.Notification) {
	marker := " "
	if !n.IsRead {
		marker = "●"
	}
	r.writePlain("%s %s\n", marker, n.Title)
	if n.Message != "" {
		r.writePlain("  %s\n", n.Message)
	}
	r.writePlain("  %s · %s · %s\n", n.Type, n.CreatedAt.Local().Format("Jan 2 15:04"), n.ID)
}

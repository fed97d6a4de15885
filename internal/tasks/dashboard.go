package tasks

import (
	"context"
	"errors"
	"sync"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/shared"
	"golang.org/x/sync/errgroup"
)

// Dashboard is the signed-in overview: profile, lists, recommendations and notifications.
type Dashboard struct {
	User          *models.User
	Lists         []models.MediaList
	Personalized  []models.MediaItem
	Trending      []models.MediaItem
	Notifications []models.Notification
	UnreadCount   int
	// Errors maps each failed section to its error.
	Errors map[string]error
}

type section struct {
	name  string
	fetch func(ctx context.Context) error
}

// Dashboard fetches every section concurrently. A failed section is reported
// in Errors and the others still load. An error is returned when all fail or
// when ctx is cancelled.
func (e *Engine) Dashboard(ctx context.Context) (*Dashboard, error) {
	if !e.store.State().IsAuthenticated() {
		return nil, shared.ErrNotAuthenticated
	}

	sections := []section{
		{name: "profile", fetch: func(ctx context.Context) error { _, err := e.Profile(ctx); return err }},
		{name: "lists", fetch: func(ctx context.Context) error { _, err := e.FetchLists(ctx, models.Page{Page: 1}); return err }},
		{name: "personalized", fetch: func(ctx context.Context) error { _, err := e.FetchPersonalized(ctx); return err }},
		{name: "trending", fetch: func(ctx context.Context) error { _, err := e.FetchTrending(ctx); return err }},
		{name: "notifications", fetch: func(ctx context.Context) error { _, err := e.FetchNotifications(ctx, models.Page{Page: 1}); return err }},
	}

	var (
		mu     sync.Mutex
		failed = make(map[string]error)
	)
	// Section failures are collected; only the caller's cancellation stops the group.
	g, gctx := errgroup.WithContext(ctx)
	for _, sec := range sections {
		g.Go(func() error {
			err := sec.fetch(gctx)
			if err == nil {
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			mu.Lock()
			failed[sec.name] = err
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	state := e.store.State()
	d := &Dashboard{
		User:          state.CurrentUser(),
		Lists:         state.Lists.Items,
		Personalized:  state.Recommendations.Personalized,
		Trending:      state.Recommendations.Trending,
		Notifications: state.Notifications.Items,
		UnreadCount:   state.UnreadCount(),
		Errors:        failed,
	}

	if len(failed) == len(sections) {
		errs := make([]error, 0, len(failed))
		for _, sec := range sections {
			errs = append(errs, failed[sec.name])
		}
		return d, errors.Join(errs...)
	}
	return d, nil
}

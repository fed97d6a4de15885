package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/services"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/desertthunder/mrx/internal/store"
)

// MediaCacher persists fetched media details for offline lookups.
type MediaCacher interface {
	CacheMedia(item models.MediaItem) error
	CachedMedia(id string) (*models.MediaItem, time.Time, error)
}

// Engine runs API operations against the store.
//
// Every operation marks its request key loading, calls the API, then settles
// the key with the payload or the error message. Operations block the calling
// goroutine and honor ctx.
type Engine struct {
	api     *services.API
	store   *store.Store
	session *SessionBridge
	cache   MediaCacher
	logger  *log.Logger
}

// NewEngine creates an [Engine].
func NewEngine(api *services.API, st *store.Store, sess *SessionBridge, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Engine{api: api, store: st, session: sess, logger: logger.With("component", "tasks")}
}

// WithCache enables media detail caching.
func (e *Engine) WithCache(c MediaCacher) *Engine {
	e.cache = c
	return e
}

// Store returns the store the engine dispatches to.
func (e *Engine) Store() *store.Store { return e.store }

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// run settles key with the result of call.
func run[T any](e *Engine, key string, call func() (T, error), settle func(store.Settle, T) store.Action) (T, error) {
	seq := e.store.Begin(key)
	out, err := call()
	if err != nil {
		e.logger.Debug("request failed", "key", key, "error", err)
		e.store.Dispatch(store.Rejected{Key: key, Seq: seq, Err: services.ErrorMessage(err, "")})
		return out, err
	}
	e.store.Dispatch(settle(store.Settle{Key: key, Seq: seq}, out))
	return out, nil
}

// do is [run] for calls without a payload.
func do(e *Engine, key string, call func() error, settle func(store.Settle) store.Action) error {
	_, err := run(e, key, func() (struct{}, error) { return struct{}{}, call() },
		func(s store.Settle, _ struct{}) store.Action { return settle(s) })
	return err
}

// Login signs in and persists the session.
func (e *Engine) Login(ctx context.Context, creds models.Credentials) (*models.User, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", shared.ErrMissingArgument)
	}
	return e.authenticate(store.KeyLogin, func() (*services.AuthResult, error) {
		return e.api.Auth.Login(ctx, creds)
	})
}

// Register creates an account, signs it in and persists the session.
func (e *Engine) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	if reg.Email == "" || reg.Password == "" || reg.Username == "" {
		return nil, fmt.Errorf("%w: email, username and password are required", shared.ErrMissingArgument)
	}
	return e.authenticate(store.KeyRegister, func() (*services.AuthResult, error) {
		return e.api.Auth.Register(ctx, reg)
	})
}

func (e *Engine) authenticate(key string, call func() (*services.AuthResult, error)) (*models.User, error) {
	res, err := run(e, key, func() (*services.AuthResult, error) {
		res, err := call()
		if err == nil {
			e.session.signIn(res.AccessToken, res.RefreshToken, &res.User)
		}
		return res, err
	}, func(s store.Settle, res *services.AuthResult) store.Action {
		return store.LoggedIn{Settle: s, User: res.User, AccessToken: res.AccessToken, RefreshToken: res.RefreshToken}
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("signed in", "user", res.User.Username)
	return &res.User, nil
}

// Logout ends the session. The server call is best effort; local credentials are always cleared.
func (e *Engine) Logout(ctx context.Context) error {
	seq := e.store.Begin(store.KeyLogout)
	if err := e.api.Auth.Logout(ctx); err != nil {
		e.logger.Warn("server logout failed, clearing local session", "error", err)
	}
	e.session.signOut()
	e.store.Dispatch(store.LoggedOut{Settle: store.Settle{Key: store.KeyLogout, Seq: seq}})
	return nil
}

// Profile refreshes the signed-in user.
func (e *Engine) Profile(ctx context.Context) (*models.User, error) {
	return run(e, store.KeyProfile, func() (*models.User, error) {
		user, err := e.api.Auth.Profile(ctx)
		if err == nil {
			e.session.storage.UpdateUser(user)
		}
		return user, err
	}, func(s store.Settle, u *models.User) store.Action {
		return store.UserUpdated{Settle: s, User: *u}
	})
}

// FetchMedia loads the catalogue page selected by the current filters.
func (e *Engine) FetchMedia(ctx context.Context) (*services.Paged[models.MediaItem], error) {
	filters := e.store.State().Media.Filters
	return run(e, store.KeyMedia, func() (*services.Paged[models.MediaItem], error) {
		return e.api.Media.List(ctx, filters)
	}, func(s store.Settle, p *services.Paged[models.MediaItem]) store.Action {
		return store.MediaFetched{Settle: s, Items: p.Items, Pagination: p.Pagination}
	})
}

// SetFilters merges f into the browse filters and returns to page 1.
func (e *Engine) SetFilters(f models.MediaFilters) {
	e.store.Dispatch(store.FiltersSet{Filters: f})
}

func (e *Engine) ClearFilters() {
	e.store.Dispatch(store.FiltersCleared{})
}

func (e *Engine) SetPage(page int) {
	e.store.Dispatch(store.PageSet{Page: page})
}

// FetchMediaDetail loads one media item and caches it when a cache is configured.
func (e *Engine) FetchMediaDetail(ctx context.Context, id string) (*models.MediaItem, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: media id", shared.ErrMissingArgument)
	}
	return run(e, store.MediaDetailKey(id), func() (*models.MediaItem, error) {
		item, err := e.api.Media.Get(ctx, id)
		if err == nil && e.cache != nil {
			if cerr := e.cache.CacheMedia(*item); cerr != nil {
				e.logger.Warn("failed to cache media", "id", id, "error", cerr)
			}
		}
		return item, err
	}, func(s store.Settle, item *models.MediaItem) store.Action {
		return store.MediaDetailFetched{Settle: s, Item: *item}
	})
}

// CachedMediaDetail loads a media item from the local cache without a request.
func (e *Engine) CachedMediaDetail(id string) (*models.MediaItem, time.Time, error) {
	if e.cache == nil {
		return nil, time.Time{}, fmt.Errorf("%w: media cache is not configured", shared.ErrMissingConfig)
	}
	item, fetchedAt, err := e.cache.CachedMedia(id)
	if err != nil {
		return nil, time.Time{}, err
	}
	e.store.Dispatch(store.MediaDetailFetched{Item: *item})
	return item, fetchedAt, nil
}

// FetchGenres loads one page of genres.
func (e *Engine) FetchGenres(ctx context.Context, filters models.GenreFilters) (*services.Paged[models.Genre], error) {
	return run(e, store.KeyGenres, func() (*services.Paged[models.Genre], error) {
		return e.api.Genres.List(ctx, filters)
	}, func(s store.Settle, p *services.Paged[models.Genre]) store.Action {
		return store.GenresFetched{Settle: s, Items: p.Items, Pagination: p.Pagination}
	})
}

// FetchPersonalized loads recommendations for the signed-in user.
func (e *Engine) FetchPersonalized(ctx context.Context) ([]models.MediaItem, error) {
	return run(e, store.KeyPersonalized, func() ([]models.MediaItem, error) {
		return e.api.Recommendations.Personalized(ctx)
	}, func(s store.Settle, items []models.MediaItem) store.Action {
		return store.PersonalizedFetched{Settle: s, Items: items}
	})
}

func (e *Engine) FetchTrending(ctx context.Context) ([]models.MediaItem, error) {
	return run(e, store.KeyTrending, func() ([]models.MediaItem, error) {
		return e.api.Recommendations.Trending(ctx)
	}, func(s store.Settle, items []models.MediaItem) store.Action {
		return store.TrendingFetched{Settle: s, Items: items}
	})
}

func (e *Engine) FetchSimilar(ctx context.Context, mediaID string) ([]models.MediaItem, error) {
	return run(e, store.SimilarKey(mediaID), func() ([]models.MediaItem, error) {
		return e.api.Recommendations.Similar(ctx, mediaID)
	}, func(s store.Settle, items []models.MediaItem) store.Action {
		return store.SimilarFetched{Settle: s, MediaID: mediaID, Items: items}
	})
}

// UpdatePreferences stores the signed-in user's recommendation preferences.
func (e *Engine) UpdatePreferences(ctx context.Context, prefs models.Preferences) (*models.Preferences, error) {
	user := e.store.State().CurrentUser()
	if user == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return run(e, store.KeyPreferences, func() (*models.Preferences, error) {
		return e.api.Recommendations.UpdatePreferences(ctx, user.ID, prefs)
	}, func(s store.Settle, p *models.Preferences) store.Action {
		return store.PreferencesUpdated{Settle: s, Preferences: *p}
	})
}

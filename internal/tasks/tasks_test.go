package tasks

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/notify"
	"github.com/desertthunder/mrx/internal/services"
	"github.com/desertthunder/mrx/internal/session"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/desertthunder/mrx/internal/store"
	tu "github.com/desertthunder/mrx/internal/testing"
)

type engineFixture struct {
	api     *tu.FakeAPI
	store   *store.Store
	storage *session.Storage
	bridge  *SessionBridge
	engine  *Engine
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	f := &engineFixture{
		api:     tu.NewFakeAPI(t),
		store:   store.New(),
		storage: session.NewStorage(nil, nil),
	}
	f.bridge = NewSessionBridge(f.store, f.storage, nil)

	httpClient := services.NewPipeline(services.PipelineOpts{
		MaxRetries: 2,
		Memory:     f.bridge,
		Storage:    f.storage,
		Refresher:  services.NewTokenRefresher(f.api.URL, nil),
		Session:    f.bridge,
		Sleep:      func(ctx context.Context, d time.Duration) error { return ctx.Err() },
	})
	api := services.NewAPI(services.NewClient(f.api.URL, httpClient, nil))
	f.engine = NewEngine(api, f.store, f.bridge, nil)
	return f
}

// signIn stores a session and hydrates the store from it.
func (f *engineFixture) signIn(access, refresh string) {
	f.storage.Save(access, refresh, &models.User{ID: "u1", Username: "ana"})
	f.bridge.Hydrate()
}

func (f *engineFixture) state() store.State { return f.store.State() }

func listDetail() models.ListDetails {
	return models.ListDetails{
		MediaList: models.MediaList{ID: "l1", Name: "Queue", ItemCount: 3},
		Items: []models.ListItem{
			{ID: "a", ListID: "l1", MediaID: "m-a", Order: 0},
			{ID: "b", ListID: "l1", MediaID: "m-b", Order: 1},
			{ID: "c", ListID: "l1", MediaID: "m-c", Order: 2},
		},
	}
}

func ids(items []models.ListItem) []string { return itemIDs(items) }

func TestSessionBridge(t *testing.T) {
	t.Run("Hydrate Restores Stored Session", func(t *testing.T) {
		f := newEngineFixture(t)
		f.signIn("a1", "r1")

		s := f.state()
		assert.True(t, s.IsAuthenticated())
		assert.Equal(t, "ana", s.CurrentUser().Username)

		tok, err := f.bridge.Token()
		require.NoError(t, err)
		assert.Equal(t, "a1", tok.AccessToken)
		assert.Equal(t, "r1", tok.RefreshToken)
	})

	t.Run("Hydrate With Partial Session Stays Signed Out", func(t *testing.T) {
		f := newEngineFixture(t)
		f.storage.UpdateAccess("a1")
		f.bridge.Hydrate()

		assert.False(t, f.state().IsAuthenticated())
	})

	t.Run("Token Without Session", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.bridge.Token()
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
	})

	t.Run("Refreshed Tokens Reach Memory And Storage", func(t *testing.T) {
		f := newEngineFixture(t)
		f.signIn("a1", "r1")
		f.bridge.TokensRefreshed(session.NewToken("a2", "r2"))

		assert.Equal(t, "a2", f.state().Auth.AccessToken)
		assert.Equal(t, "r2", f.state().Auth.RefreshToken)
		stored := f.storage.Read()
		assert.Equal(t, "a2", stored.AccessToken)
		assert.Equal(t, "r2", stored.RefreshToken)
		assert.Equal(t, "ana", stored.User.Username)
	})

	t.Run("Expiry Clears Both", func(t *testing.T) {
		f := newEngineFixture(t)
		f.signIn("a1", "r1")
		f.bridge.SessionExpired()

		assert.False(t, f.state().IsAuthenticated())
		assert.False(t, f.storage.Read().Valid())
	})
}

func TestAuthOperations(t *testing.T) {
	t.Run("Login Persists Session", func(t *testing.T) {
		f := newEngineFixture(t)
		f.api.Handle(http.MethodPost, "/auth/login", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data(map[string]any{
				"user":         models.User{ID: "u1", Username: "ana", Email: "ana@example.com"},
				"accessToken":  "a1",
				"refreshToken": "r1",
			}))
		})

		user, err := f.engine.Login(context.Background(), models.Credentials{Email: "ana@example.com", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)

		s := f.state()
		assert.True(t, s.IsAuthenticated())
		assert.Equal(t, store.StatusSucceeded, s.Lifecycle(store.KeyLogin).Status)

		stored := f.storage.Read()
		assert.Equal(t, "a1", stored.AccessToken)
		assert.Equal(t, "r1", stored.RefreshToken)
		require.NotNil(t, stored.User)
		assert.Equal(t, "ana", stored.User.Username)
	})

	t.Run("Login Failure Records Server Message", func(t *testing.T) {
		f := newEngineFixture(t)
		f.api.Handle(http.MethodPost, "/auth/login", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		})

		_, err := f.engine.Login(context.Background(), models.Credentials{Email: "ana@example.com", Password: "bad"})
		require.Error(t, err)

		s := f.state()
		assert.False(t, s.IsAuthenticated())
		assert.Equal(t, store.StatusFailed, s.Lifecycle(store.KeyLogin).Status)
		assert.Equal(t, "Invalid credentials", s.Error(store.KeyLogin))
	})

	t.Run("Login Requires Credentials", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.engine.Login(context.Background(), models.Credentials{Email: "ana@example.com"})
		assert.ErrorIs(t, err, shared.ErrMissingArgument)
		assert.Empty(t, f.api.Calls())
	})

	t.Run("Logout Clears Even When Server Fails", func(t *testing.T) {
		f := newEngineFixture(t)
		f.signIn("a1", "r1")
		f.api.Handle(http.MethodPost, "/auth/logout", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
		})

		require.NoError(t, f.engine.Logout(context.Background()))
		assert.False(t, f.state().IsAuthenticated())
		assert.False(t, f.storage.Read().Valid())
		assert.Equal(t, store.StatusSucceeded, f.state().Lifecycle(store.KeyLogout).Status)
	})

	t.Run("Expired Access Token Refreshes Into Store And Storage", func(t *testing.T) {
		f := newEngineFixture(t)
		f.signIn("old", "r1")
		f.api.Handle(http.MethodGet, "/auth/profile", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer new" {
				tu.WriteJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token expired"})
				return
			}
			tu.WriteJSON(w, http.StatusOK, tu.Data(models.User{ID: "u1", Username: "ana", Name: "Ana"}))
		})
		f.api.Handle(http.MethodPost, "/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data(map[string]string{"accessToken": "new", "refreshToken": "r2"}))
		})

		user, err := f.engine.Profile(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Ana", user.Name)

		s := f.state()
		assert.Equal(t, "new", s.Auth.AccessToken)
		assert.Equal(t, "r2", s.Auth.RefreshToken)
		assert.Equal(t, "Ana", s.CurrentUser().Name)

		stored := f.storage.Read()
		assert.Equal(t, "new", stored.AccessToken)
		assert.Equal(t, "r2", stored.RefreshToken)
		assert.Equal(t, "Ana", stored.User.Name)
	})

	t.Run("Failed Refresh Signs Out", func(t *testing.T) {
		f := newEngineFixture(t)
		f.signIn("old", "r1")
		f.api.Handle(http.MethodGet, "/auth/profile", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token expired"})
		})
		f.api.Handle(http.MethodPost, "/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusUnauthorized, map[string]string{"message": "Refresh token revoked"})
		})

		_, err := f.engine.Profile(context.Background())
		assert.ErrorIs(t, err, shared.ErrRefreshFailed)
		assert.False(t, f.state().IsAuthenticated())
		assert.False(t, f.storage.Read().Valid())
		assert.Equal(t, store.StatusFailed, f.state().Lifecycle(store.KeyProfile).Status)
	})
}

type memoryCache struct {
	mu    sync.Mutex
	items map[string]models.MediaItem
}

func (c *memoryCache) CacheMedia(item models.MediaItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = make(map[string]models.MediaItem)
	}
	c.items[item.ID] = item
	return nil
}

func (c *memoryCache) CachedMedia(id string) (*models.MediaItem, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[id]
	if !ok {
		return nil, time.Time{}, shared.ErrNotFound
	}
	return &item, time.Unix(0, 0), nil
}

func TestMediaOperations(t *testing.T) {
	t.Run("Fetch Uses Current Filters", func(t *testing.T) {
		f := newEngineFixture(t)
		f.api.Handle(http.MethodGet, "/media", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, map[string]any{
				"data": []models.MediaItem{{ID: "m1", Title: "Celeste", Type: models.MediaGame, Genres: []string{"Platformer"}}},
				"meta": map[string]any{"pagination": models.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 1}},
			})
		})

		f.engine.SetPage(3)
		f.engine.SetFilters(models.MediaFilters{Type: models.MediaGame})

		page, err := f.engine.FetchMedia(context.Background())
		require.NoError(t, err)
		require.Len(t, page.Items, 1)

		calls := f.api.CallsTo(http.MethodGet, "/media")
		require.Len(t, calls, 1)
		assert.Contains(t, calls[0].Query, "type=game")
		assert.Contains(t, calls[0].Query, "page=1")

		s := f.state()
		assert.Equal(t, "Celeste", s.Media.Items[0].Title)
		assert.Equal(t, []string{"Platformer"}, s.Media.Genres)
		assert.Equal(t, 1, s.Media.Pagination.TotalItems)

		f.engine.ClearFilters()
		assert.Equal(t, models.DefaultMediaFilters(), f.state().Media.Filters)
	})

	t.Run("Detail Is Cached", func(t *testing.T) {
		f := newEngineFixture(t)
		cache := &memoryCache{}
		f.engine.WithCache(cache)
		f.api.Handle(http.MethodGet, "/media/m1", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data(models.MediaItem{ID: "m1", Title: "Akira", Type: models.MediaManga}))
		})

		_, err := f.engine.FetchMediaDetail(context.Background(), "m1")
		require.NoError(t, err)

		item, ok := f.state().MediaDetail("m1")
		require.True(t, ok)
		assert.Equal(t, "Akira", item.Title)

		fresh := newEngineFixture(t)
		fresh.engine.WithCache(cache)
		cached, _, err := fresh.engine.CachedMediaDetail("m1")
		require.NoError(t, err)
		assert.Equal(t, "Akira", cached.Title)
		_, ok = fresh.state().MediaDetail("m1")
		assert.True(t, ok)
		assert.Empty(t, fresh.api.Calls())
	})

	t.Run("Cached Lookup Without Cache", func(t *testing.T) {
		f := newEngineFixture(t)
		_, _, err := f.engine.CachedMediaDetail("m1")
		assert.ErrorIs(t, err, shared.ErrMissingConfig)
	})
}

func TestReorder(t *testing.T) {
	serveList := func(f *engineFixture) {
		f.api.Handle(http.MethodGet, "/lists/l1", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data(listDetail()))
		})
	}

	t.Run("Move Applies Optimistically And Confirms", func(t *testing.T) {
		f := newEngineFixture(t)
		f.signIn("a1", "r1")
		serveList(f)
		f.api.Handle(http.MethodPut, "/lists/l1/reorder", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data(nil))
		})

		require.NoError(t, f.engine.MoveListItem(context.Background(), "l1", 0, 2))

		cur := f.state().CurrentList("l1")
		require.NotNil(t, cur)
		assert.Equal(t, []string{"b", "c", "a"}, ids(cur.Items))
		for i, item := range cur.Items {
			assert.Equal(t, i, item.Order)
		}
		assert.Equal(t, store.StatusSucceeded, f.state().Lifecycle(store.ReorderKey("l1")).Status)

		calls := f.api.CallsTo(http.MethodPut, "/lists/l1/reorder")
		require.Len(t, calls, 1)
		assert.JSONEq(t, `{"items":[{"id":"b","order":0},{"id":"c","order":1},{"id":"a","order":2}]}`, calls[0].Body)
	})

	t.Run("Failure Restores Snapshot", func(t *testing.T) {
		f := newEngineFixture(t)
		f.signIn("a1", "r1")
		serveList(f)
		f.api.Handle(http.MethodPut, "/lists/l1/reorder", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusInternalServerError, map[string]string{"message": "Reorder failed upstream"})
		})

		var optimistic []string
		unsubscribe := f.store.Subscribe(store.ListenerFunc(func(prev, next store.State, a store.Action) {
			if r, ok := a.(store.ListReordered); ok {
				optimistic = ids(r.Items)
			}
		}))
		defer unsubscribe()

		err := f.engine.MoveListItem(context.Background(), "l1", 2, 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrAPIRequest)

		assert.Equal(t, []string{"c", "a", "b"}, optimistic)
		cur := f.state().CurrentList("l1")
		require.NotNil(t, cur)
		assert.Equal(t, []string{"a", "b", "c"}, ids(cur.Items))

		lc := f.state().Lifecycle(store.ReorderKey("l1"))
		assert.Equal(t, store.StatusFailed, lc.Status)
		assert.Equal(t, "Reorder failed upstream", lc.Err)
	})

	t.Run("Explicit Order", func(t *testing.T) {
		f := newEngineFixture(t)
		f.signIn("a1", "r1")
		serveList(f)
		f.api.Handle(http.MethodPut, "/lists/l1/reorder", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data(nil))
		})

		require.NoError(t, f.engine.ReorderListItems(context.Background(), "l1", []string{"c", "b", "a"}))
		assert.Equal(t, []string{"c", "b", "a"}, ids(f.state().CurrentList("l1").Items))
	})

	t.Run("Rejects Incomplete Order Without Request", func(t *testing.T) {
		f := newEngineFixture(t)
		f.signIn("a1", "r1")
		serveList(f)

		err := f.engine.ReorderListItems(context.Background(), "l1", []string{"c", "a"})
		assert.ErrorIs(t, err, shared.ErrInvalidArgument)

		err = f.engine.ReorderListItems(context.Background(), "l1", []string{"c", "a", "z"})
		assert.ErrorIs(t, err, shared.ErrItemNotFound)

		assert.Empty(t, f.api.CallsTo(http.MethodPut, "/lists/l1/reorder"))
		assert.Equal(t, []string{"a", "b", "c"}, ids(f.state().CurrentList("l1").Items))
	})

	t.Run("Move Out Of Range", func(t *testing.T) {
		f := newEngineFixture(t)
		f.signIn("a1", "r1")
		serveList(f)

		err := f.engine.MoveListItem(context.Background(), "l1", 0, 3)
		assert.ErrorIs(t, err, shared.ErrInvalidArgument)
	})

	t.Run("Missing List", func(t *testing.T) {
		f := newEngineFixture(t)
		f.signIn("a1", "r1")

		err := f.engine.MoveListItem(context.Background(), "l1", 0, 1)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, store.StatusFailed, f.state().Lifecycle(store.ListKey("l1")).Status)
	})
}

func TestListItemOperations(t *testing.T) {
	f := newEngineFixture(t)
	f.signIn("a1", "r1")
	f.api.Handle(http.MethodGet, "/lists/l1", func(w http.ResponseWriter, r *http.Request) {
		tu.WriteJSON(w, http.StatusOK, tu.Data(listDetail()))
	})
	f.api.Handle(http.MethodPost, "/lists/l1/items", func(w http.ResponseWriter, r *http.Request) {
		tu.WriteJSON(w, http.StatusCreated, tu.Data(models.ListItem{ID: "d", MediaID: "m-d", Order: 3}))
	})
	f.api.Handle(http.MethodDelete, "/lists/items/a", func(w http.ResponseWriter, r *http.Request) {
		tu.WriteJSON(w, http.StatusOK, tu.Data(nil))
	})
	f.api.Handle(http.MethodPut, "/lists/items/b", func(w http.ResponseWriter, r *http.Request) {
		tu.WriteJSON(w, http.StatusOK, tu.Data(models.ListItem{ID: "b", ListID: "l1", MediaID: "m-b", Notes: "soon", Order: 1}))
	})

	ctx := context.Background()
	_, err := f.engine.FetchList(ctx, "l1")
	require.NoError(t, err)

	t.Run("Add", func(t *testing.T) {
		item, err := f.engine.AddListItem(ctx, "l1", "m-d", "")
		require.NoError(t, err)
		assert.Equal(t, "l1", item.ListID)

		cur := f.state().CurrentList("l1")
		assert.Equal(t, []string{"a", "b", "c", "d"}, ids(cur.Items))
		assert.Equal(t, 4, cur.ItemCount)
	})

	t.Run("Remove", func(t *testing.T) {
		require.NoError(t, f.engine.RemoveListItem(ctx, "l1", "a"))
		cur := f.state().CurrentList("l1")
		assert.Equal(t, []string{"b", "c", "d"}, ids(cur.Items))
		assert.Equal(t, 3, cur.ItemCount)
	})

	t.Run("Notes", func(t *testing.T) {
		_, err := f.engine.UpdateItemNotes(ctx, "b", "soon")
		require.NoError(t, err)
		assert.Equal(t, "soon", f.state().CurrentList("l1").Items[0].Notes)
	})

	t.Run("Create Requires Name", func(t *testing.T) {
		_, err := f.engine.CreateList(ctx, models.ListInput{})
		assert.ErrorIs(t, err, shared.ErrInvalidArgument)
	})
}

func TestFeedbackOperations(t *testing.T) {
	t.Run("Missing Rating Is Nil", func(t *testing.T) {
		f := newEngineFixture(t)
		f.signIn("a1", "r1")

		rating, err := f.engine.FetchRating(context.Background(), "m1")
		require.NoError(t, err)
		assert.Nil(t, rating)
		assert.Nil(t, f.state().UserRating("m1"))
		assert.Equal(t, store.StatusSucceeded, f.state().Lifecycle(store.RatingKey("m1")).Status)
	})

	t.Run("Rate Then Remove", func(t *testing.T) {
		f := newEngineFixture(t)
		f.signIn("a1", "r1")
		f.api.Handle(http.MethodPost, "/ratings", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusCreated, tu.Data(models.Rating{ID: "r1", UserID: "u1", MediaID: "m1", Rating: 7}))
		})
		f.api.Handle(http.MethodDelete, "/ratings", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data(nil))
		})

		_, err := f.engine.RateMedia(context.Background(), "m1", 7)
		require.NoError(t, err)
		require.NotNil(t, f.state().UserRating("m1"))
		assert.Equal(t, 7, f.state().UserRating("m1").Rating)

		require.NoError(t, f.engine.RemoveRating(context.Background(), "m1"))
		assert.Nil(t, f.state().UserRating("m1"))
		assert.Equal(t, store.StatusSucceeded, f.state().Lifecycle(store.RatingKey("m1")).Status)
	})

	t.Run("Invalid Rating Fails Lifecycle", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.engine.RateMedia(context.Background(), "m1", 11)
		assert.ErrorIs(t, err, shared.ErrInvalidArgument)
		assert.Equal(t, store.StatusFailed, f.state().Lifecycle(store.RatingKey("m1")).Status)
		assert.Empty(t, f.api.Calls())
	})

	t.Run("Like Review", func(t *testing.T) {
		f := newEngineFixture(t)
		f.signIn("a1", "r1")
		f.api.Handle(http.MethodGet, "/reviews/media/m1", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, map[string]any{
				"data": []models.Review{{ID: "rv1", UserID: "u2", MediaID: "m1", Content: "Great", LikesCount: 2}},
			})
		})
		f.api.Handle(http.MethodPost, "/api/reviews/rv1/like", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data(nil))
		})

		_, err := f.engine.FetchMediaReviews(context.Background(), "m1", models.ReviewQuery{})
		require.NoError(t, err)
		require.NoError(t, f.engine.LikeReview(context.Background(), "rv1", true))

		reviews := f.state().MediaReviews("m1")
		require.Len(t, reviews, 1)
		assert.True(t, reviews[0].IsLiked)
		assert.Equal(t, 3, reviews[0].LikesCount)
	})
}

func TestRecommendationOperations(t *testing.T) {
	t.Run("Genres", func(t *testing.T) {
		f := newEngineFixture(t)
		f.api.Handle(http.MethodGet, "/genres", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, map[string]any{
				"data": []models.Genre{{ID: "g1", Name: "Drama"}, {ID: "g2", Name: "Horror"}},
				"meta": map[string]any{"pagination": map[string]any{"currentPage": 1, "totalPages": 1, "totalItems": 2}},
			})
		})

		page, err := f.engine.FetchGenres(context.Background(), models.GenreFilters{Page: 1})
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		assert.Len(t, f.state().Genres.Items, 2)
		assert.Equal(t, store.StatusSucceeded, f.state().Lifecycle(store.KeyGenres).Status)
	})

	t.Run("Trending And Similar", func(t *testing.T) {
		f := newEngineFixture(t)
		f.api.Handle(http.MethodGet, "/recommendations/trending", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data([]models.MediaItem{{ID: "m1", Title: "Alien"}}))
		})
		f.api.Handle(http.MethodGet, "/recommendations/media/m1", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data([]models.MediaItem{{ID: "m2", Title: "Aliens"}}))
		})
		ctx := context.Background()

		_, err := f.engine.FetchTrending(ctx)
		require.NoError(t, err)
		_, err = f.engine.FetchSimilar(ctx, "m1")
		require.NoError(t, err)

		require.Len(t, f.state().Recommendations.Trending, 1)
		assert.Equal(t, "Alien", f.state().Recommendations.Trending[0].Title)
		require.Len(t, f.state().Similar("m1"), 1)
		assert.Equal(t, "m2", f.state().Similar("m1")[0].ID)
	})

	t.Run("Personalized Failure Records Message", func(t *testing.T) {
		f := newEngineFixture(t)
		f.signIn("a1", "r1")
		f.api.Handle(http.MethodGet, "/recommendations", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusInternalServerError, map[string]any{"message": "engine offline"})
		})

		_, err := f.engine.FetchPersonalized(context.Background())
		require.Error(t, err)
		lc := f.state().Lifecycle(store.KeyPersonalized)
		assert.Equal(t, store.StatusFailed, lc.Status)
		assert.Equal(t, "engine offline", lc.Err)
	})

	t.Run("Preferences Require Session", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.engine.UpdatePreferences(context.Background(), models.Preferences{})
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
		assert.Empty(t, f.api.Calls())
	})

	t.Run("Preferences Stored For Current User", func(t *testing.T) {
		f := newEngineFixture(t)
		f.signIn("a1", "r1")
		f.api.Handle(http.MethodPut, "/recommendations/preferences/u1", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data(nil))
		})
		prefs := models.Preferences{
			GenreIDs:             []string{"g1"},
			MediaTypePreferences: []models.MediaTypePreference{{Type: models.MediaMovie, Strength: 4}},
		}

		saved, err := f.engine.UpdatePreferences(context.Background(), prefs)
		require.NoError(t, err)
		assert.Equal(t, prefs, *saved)
		require.NotNil(t, f.state().Recommendations.Preferences)
		assert.Equal(t, []string{"g1"}, f.state().Recommendations.Preferences.GenreIDs)
	})
}

func TestUserOperations(t *testing.T) {
	f := newEngineFixture(t)
	f.signIn("a1", "r1")
	f.api.Handle(http.MethodGet, "/users/u2", func(w http.ResponseWriter, r *http.Request) {
		tu.WriteJSON(w, http.StatusOK, tu.Data(models.UserProfile{
			User:  models.User{ID: "u2", Username: "bo"},
			Stats: models.UserStats{FollowersCount: 1},
		}))
	})
	f.api.Handle(http.MethodPost, "/users/u2/follow", func(w http.ResponseWriter, r *http.Request) {
		tu.WriteJSON(w, http.StatusOK, tu.Data(nil))
	})
	f.api.Handle(http.MethodDelete, "/users/u2/follow", func(w http.ResponseWriter, r *http.Request) {
		tu.WriteJSON(w, http.StatusOK, tu.Data(nil))
	})
	ctx := context.Background()

	profile, err := f.engine.FetchUserProfile(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "bo", profile.Username)

	t.Run("Follow", func(t *testing.T) {
		require.NoError(t, f.engine.Follow(ctx, "u2", true))
		p := f.state().Users.Profile
		require.NotNil(t, p)
		assert.True(t, p.IsFollowing)
		assert.Equal(t, 2, p.Stats.FollowersCount)
	})

	t.Run("Unfollow", func(t *testing.T) {
		require.NoError(t, f.engine.Follow(ctx, "u2", false))
		p := f.state().Users.Profile
		assert.False(t, p.IsFollowing)
		assert.Equal(t, 1, p.Stats.FollowersCount)
		assert.Len(t, f.api.CallsTo(http.MethodDelete, "/users/u2/follow"), 1)
	})
}

func TestNotificationOperations(t *testing.T) {
	f := newEngineFixture(t)
	f.signIn("a1", "r1")
	f.api.Handle(http.MethodGet, "/notifications", func(w http.ResponseWriter, r *http.Request) {
		tu.WriteJSON(w, http.StatusOK, map[string]any{
			"data": []models.Notification{{ID: "n1", Title: "Followed"}, {ID: "n2", Title: "Liked", IsRead: true}, {ID: "n3", Title: "Rated"}},
			"meta": map[string]any{"unreadCount": 2},
		})
	})
	f.api.Handle(http.MethodPatch, "/notifications/n1/read", func(w http.ResponseWriter, r *http.Request) {
		tu.WriteJSON(w, http.StatusOK, tu.Data(nil))
	})
	f.api.Handle(http.MethodPatch, "/notifications/read-all", func(w http.ResponseWriter, r *http.Request) {
		tu.WriteJSON(w, http.StatusOK, tu.Data(nil))
	})
	ctx := context.Background()

	_, err := f.engine.FetchNotifications(ctx, models.Page{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, f.state().UnreadCount())

	t.Run("Read Is Idempotent", func(t *testing.T) {
		require.NoError(t, f.engine.MarkNotificationRead(ctx, "n1"))
		require.NoError(t, f.engine.MarkNotificationRead(ctx, "n1"))
		assert.Equal(t, 1, f.state().UnreadCount())
	})

	t.Run("Push Events", func(t *testing.T) {
		push := f.engine.Push()
		push.OnNotification(models.Notification{ID: "n4", Title: "New list"})
		assert.Equal(t, 2, f.state().UnreadCount())
		assert.Equal(t, "n4", f.state().Notifications.Items[0].ID)

		push.OnNotificationRead("n4")
		assert.Equal(t, 1, f.state().UnreadCount())

		push.OnUnreadCount(5)
		assert.Equal(t, 5, f.state().UnreadCount())

		push.OnStateChange(notify.Connected)
		assert.Equal(t, "connected", f.state().Notifications.Connection)
	})

	t.Run("Read All", func(t *testing.T) {
		require.NoError(t, f.engine.MarkAllNotificationsRead(ctx))
		assert.Zero(t, f.state().UnreadCount())
		for _, n := range f.state().Notifications.Items {
			assert.True(t, n.IsRead)
		}
	})
}

func TestSocialOperations(t *testing.T) {
	f := newEngineFixture(t)
	f.signIn("a1", "r1")
	f.api.Handle(http.MethodGet, "/users/u2", func(w http.ResponseWriter, r *http.Request) {
		tu.WriteJSON(w, http.StatusOK, tu.Data(models.UserProfile{User: models.User{ID: "u2", Username: "bo"}, Stats: models.UserStats{FollowersCount: 4}}))
	})
	f.api.Handle(http.MethodPost, "/users/u2/follow", func(w http.ResponseWriter, r *http.Request) {
		tu.WriteJSON(w, http.StatusOK, tu.Data(nil))
	})
	f.api.Handle(http.MethodDelete, "/users/u2/follow", func(w http.ResponseWriter, r *http.Request) {
		tu.WriteJSON(w, http.StatusOK, tu.Data(nil))
	})
	ctx := context.Background()

	_, err := f.engine.FetchUserProfile(ctx, "u2")
	require.NoError(t, err)

	require.NoError(t, f.engine.Follow(ctx, "u2", true))
	assert.True(t, f.state().Users.Profile.IsFollowing)
	assert.Equal(t, 5, f.state().Users.Profile.Stats.FollowersCount)

	require.NoError(t, f.engine.Follow(ctx, "u2", false))
	assert.False(t, f.state().Users.Profile.IsFollowing)
	assert.Equal(t, 4, f.state().Users.Profile.Stats.FollowersCount)
}

func TestDashboard(t *testing.T) {
	t.Run("Requires Session", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.engine.Dashboard(context.Background())
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
	})

	t.Run("Keeps Sections That Loaded", func(t *testing.T) {
		f := newEngineFixture(t)
		f.signIn("a1", "r1")
		f.api.Handle(http.MethodGet, "/auth/profile", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data(models.User{ID: "u1", Username: "ana"}))
		})
		f.api.Handle(http.MethodGet, "/lists", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, map[string]any{"data": []models.MediaList{{ID: "l1", Name: "Queue"}}})
		})
		f.api.Handle(http.MethodGet, "/recommendations", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data([]models.MediaItem{{ID: "m1"}}))
		})
		f.api.Handle(http.MethodGet, "/recommendations/trending", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusInternalServerError, map[string]string{"message": "Trending unavailable"})
		})
		f.api.Handle(http.MethodGet, "/notifications", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, map[string]any{"data": []models.Notification{{ID: "n1"}}})
		})

		d, err := f.engine.Dashboard(context.Background())
		require.NoError(t, err)
		assert.Len(t, d.Lists, 1)
		assert.Len(t, d.Personalized, 1)
		assert.Empty(t, d.Trending)
		assert.Equal(t, 1, d.UnreadCount)
		require.Contains(t, d.Errors, "trending")
		assert.Len(t, d.Errors, 1)
		assert.Equal(t, "Trending unavailable", f.state().Error(store.KeyTrending))
	})

	t.Run("All Sections Failing Is An Error", func(t *testing.T) {
		f := newEngineFixture(t)
		f.signIn("a1", "r1")

		d, err := f.engine.Dashboard(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		assert.Len(t, d.Errors, 5)
	})

	t.Run("Cancelled Context Stops Every Section", func(t *testing.T) {
		f := newEngineFixture(t)
		f.signIn("a1", "r1")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		d, err := f.engine.Dashboard(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, d)
	})
}

package store

import (
	"maps"

	"github.com/desertthunder/mrx/internal/models"
)

// Status is the lifecycle of one keyed request.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Lifecycle is the request state of one key. Seq is the latest sequence number issued for it.
type Lifecycle struct {
	Status Status
	Err    string
	Seq    uint64
}

// State is the whole client-side application state.
//
// A State is treated as immutable: [Reduce] copies every slice and map it
// changes, so a value obtained from [Store.State] is safe to keep.
type State struct {
	Auth            AuthState
	Media           MediaState
	Lists           ListsState
	Genres          GenresState
	Ratings         RatingsState
	Recommendations RecommendationsState
	Notifications   NotificationsState
	Users           UsersState

	Requests map[string]Lifecycle
}

// AuthState mirrors the credential store.
type AuthState struct {
	IsAuthenticated bool
	User            *models.User
	AccessToken     string
	RefreshToken    string
}

// MediaState is the catalogue browse state.
type MediaState struct {
	Items      []models.MediaItem
	Pagination models.Pagination
	Filters    models.MediaFilters
	// Genres is derived from Items while no genre list has been fetched.
	Genres  []string
	Details map[string]models.MediaItem
}

type ListsState struct {
	Items      []models.MediaList
	Pagination models.Pagination
	Current    *models.ListDetails
}

type GenresState struct {
	Items      []models.Genre
	Pagination models.Pagination
}

// RatingsState holds the signed-in user's ratings and reviews keyed by media id,
// plus the public reviews of each media item.
type RatingsState struct {
	UserRatings      map[string]*models.Rating
	UserReviews      map[string]*models.Review
	MediaReviews     map[string][]models.Review
	ReviewPagination map[string]models.Pagination
}

type RecommendationsState struct {
	Personalized []models.MediaItem
	Trending     []models.MediaItem
	Similar      map[string][]models.MediaItem
	Preferences  *models.Preferences
}

type NotificationsState struct {
	Items       []models.Notification
	UnreadCount int
	Pagination  models.Pagination
	// Connection mirrors the push channel state ("disconnected", "connecting", "connected").
	Connection string
}

// UsersState is the profile currently being viewed and its social lists.
type UsersState struct {
	Profile   *models.UserProfile
	Followers []models.UserItem
	Following []models.UserItem
}

// Initial returns the empty state.
func Initial() State {
	return State{
		Media:         MediaState{Filters: models.DefaultMediaFilters()},
		Notifications: NotificationsState{Connection: "disconnected"},
	}
}

// Lifecycle returns the request state of key. Unknown keys are idle.
func (s State) Lifecycle(key string) Lifecycle {
	return s.Requests[key]
}

// IsLoading reports whether key has a request in flight.
func (s State) IsLoading(key string) bool {
	return s.Requests[key].Status == StatusLoading
}

// Error returns the last failure message of key.
func (s State) Error(key string) string {
	return s.Requests[key].Err
}

func (s State) IsAuthenticated() bool {
	return s.Auth.IsAuthenticated
}

func (s State) CurrentUser() *models.User {
	return s.Auth.User
}

// UserRating returns the signed-in user's rating of mediaID, or nil.
func (s State) UserRating(mediaID string) *models.Rating {
	return s.Ratings.UserRatings[mediaID]
}

// UserReview returns the signed-in user's review of mediaID, or nil.
func (s State) UserReview(mediaID string) *models.Review {
	return s.Ratings.UserReviews[mediaID]
}

func (s State) MediaReviews(mediaID string) []models.Review {
	return s.Ratings.MediaReviews[mediaID]
}

func (s State) MediaDetail(id string) (models.MediaItem, bool) {
	item, ok := s.Media.Details[id]
	return item, ok
}

func (s State) Similar(mediaID string) []models.MediaItem {
	return s.Recommendations.Similar[mediaID]
}

func (s State) UnreadCount() int {
	return s.Notifications.UnreadCount
}

// CurrentList returns the loaded list detail when its id is listID.
func (s State) CurrentList(listID string) *models.ListDetails {
	if c := s.Lists.Current; c != nil && c.ID == listID {
		return c
	}
	return nil
}

// ListByID returns the summary of listID from the fetched lists.
func (s State) ListByID(listID string) (models.MediaList, bool) {
	for _, l := range s.Lists.Items {
		if l.ID == listID {
			return l, true
		}
	}
	return models.MediaList{}, false
}

func (s State) withRequest(key string, lc Lifecycle) State {
	reqs := make(map[string]Lifecycle, len(s.Requests)+1)
	maps.Copy(reqs, s.Requests)
	reqs[key] = lc
	s.Requests = reqs
	return s
}

// with returns a copy of m with key set to v.
func with[K comparable, V any](m map[K]V, key K, v V) map[K]V {
	out := make(map[K]V, len(m)+1)
	maps.Copy(out, m)
	out[key] = v
	return out
}

package store

import "github.com/desertthunder/mrx/internal/models"

// Action is a state transition. The set of actions is closed: only types in
// this package implement it and [Reduce] handles each of them.
type Action interface {
	action()
}

// Settle identifies the request a fulfilled action completes.
//
// A zero Key marks a local or pushed change that has no request lifecycle.
type Settle struct {
	Key string
	Seq uint64
}

func (s Settle) settle() Settle { return s }

type settler interface {
	Action
	settle() Settle
}

// Pending marks Key as loading under a new sequence number.
type Pending struct {
	Key string
	Seq uint64
}

// Rejected marks Key as failed with Err.
type Rejected struct {
	Key string
	Seq uint64
	Err string
}

// Auth

// LoggedIn follows a successful login or registration.
type LoggedIn struct {
	Settle
	User         models.User
	AccessToken  string
	RefreshToken string
}

// TokensRefreshed replaces both tokens after a refresh.
type TokensRefreshed struct {
	AccessToken  string
	RefreshToken string
}

// LoggedOut clears the session.
type LoggedOut struct{ Settle }

type UserUpdated struct {
	Settle
	User models.User
}

// Hydrated restores the session read from the credential store at startup.
// A session without both tokens is treated as signed out.
type Hydrated struct {
	Session models.Session
}

// Media

type MediaFetched struct {
	Settle
	Items      []models.MediaItem
	Pagination models.Pagination
}

type MediaDetailFetched struct {
	Settle
	Item models.MediaItem
}

// FiltersSet merges the non-zero fields of Filters and returns to page 1.
type FiltersSet struct {
	Filters models.MediaFilters
}

type FiltersCleared struct{}

type PageSet struct {
	Page int
}

// Genres

type GenresFetched struct {
	Settle
	Items      []models.Genre
	Pagination models.Pagination
}

// Lists

type ListsFetched struct {
	Settle
	Items      []models.MediaList
	Pagination models.Pagination
}

type ListFetched struct {
	Settle
	List models.ListDetails
}

type ListCreated struct {
	Settle
	List models.MediaList
}

type ListUpdated struct {
	Settle
	List models.MediaList
}

type ListDeleted struct {
	Settle
	ID string
}

type ListItemAdded struct {
	Settle
	Item models.ListItem
}

type ListItemRemoved struct {
	Settle
	ListID string
	ItemID string
}

type ListItemUpdated struct {
	Settle
	Item models.ListItem
}

// ListReordered applies a local reorder before the server confirms it.
type ListReordered struct {
	ListID string
	Items  []models.ListItem
}

// ReorderConfirmed rebuilds the items of ListID in the order of IDs. Items
// not in IDs, such as ones added meanwhile, stay at the end.
type ReorderConfirmed struct {
	Settle
	ListID string
	IDs    []string
}

// ReorderRolledBack restores the order of Items, captured before a failed
// reorder, over the current items and marks the reorder request failed with Err.
type ReorderRolledBack struct {
	Settle
	ListID string
	Items  []models.ListItem
	Err    string
}

// Ratings and reviews

// RatingFetched carries the user's rating of MediaID, nil when none exists.
type RatingFetched struct {
	Settle
	MediaID string
	Rating  *models.Rating
}

type RatingSubmitted struct {
	Settle
	Rating models.Rating
}

type RatingRemoved struct {
	Settle
	MediaID string
}

// ReviewFetched carries the user's review of MediaID, nil when none exists.
type ReviewFetched struct {
	Settle
	MediaID string
	Review  *models.Review
}

type ReviewSubmitted struct {
	Settle
	Review models.Review
}

type ReviewDeleted struct {
	Settle
	MediaID  string
	ReviewID string
}

type MediaReviewsFetched struct {
	Settle
	MediaID    string
	Items      []models.Review
	Pagination models.Pagination
}

// ReviewLiked sets the like flag of ReviewID wherever the review is loaded.
type ReviewLiked struct {
	Settle
	ReviewID string
	Liked    bool
}

// Recommendations

type PersonalizedFetched struct {
	Settle
	Items []models.MediaItem
}

type TrendingFetched struct {
	Settle
	Items []models.MediaItem
}

type SimilarFetched struct {
	Settle
	MediaID string
	Items   []models.MediaItem
}

type PreferencesUpdated struct {
	Settle
	Preferences models.Preferences
}

// Notifications

type NotificationsFetched struct {
	Settle
	Items       []models.Notification
	UnreadCount int
	Pagination  models.Pagination
}

// NotificationReceived prepends a pushed notification.
type NotificationReceived struct {
	Notification models.Notification
}

// NotificationRead marks one notification read. Repeats are no-ops.
type NotificationRead struct {
	Settle
	ID string
}

type AllNotificationsRead struct{ Settle }

// UnreadCountSet overwrites the unread counter with a server snapshot.
type UnreadCountSet struct {
	Count int
}

type ConnectionChanged struct {
	State string
}

// Users

type ProfileFetched struct {
	Settle
	Profile models.UserProfile
}

type FollowersFetched struct {
	Settle
	UserID string
	Items  []models.UserItem
}

type FollowingFetched struct {
	Settle
	UserID string
	Items  []models.UserItem
}

// FollowChanged sets the follow flag for UserID on every loaded copy of that user.
type FollowChanged struct {
	Settle
	UserID    string
	Following bool
}

func (Pending) action()              {}
func (Rejected) action()             {}
func (LoggedIn) action()             {}
func (TokensRefreshed) action()      {}
func (LoggedOut) action()            {}
func (UserUpdated) action()          {}
func (Hydrated) action()             {}
func (MediaFetched) action()         {}
func (MediaDetailFetched) action()   {}
func (FiltersSet) action()           {}
func (FiltersCleared) action()       {}
func (PageSet) action()              {}
func (GenresFetched) action()        {}
func (ListsFetched) action()         {}
func (ListFetched) action()          {}
func (ListCreated) action()          {}
func (ListUpdated) action()          {}
func (ListDeleted) action()          {}
func (ListItemAdded) action()        {}
func (ListItemRemoved) action()      {}
func (ListItemUpdated) action()      {}
func (ListReordered) action()        {}
func (ReorderConfirmed) action()     {}
func (ReorderRolledBack) action()    {}
func (RatingFetched) action()        {}
func (RatingSubmitted) action()      {}
func (RatingRemoved) action()        {}
func (ReviewFetched) action()        {}
func (ReviewSubmitted) action()      {}
func (ReviewDeleted) action()        {}
func (MediaReviewsFetched) action()  {}
func (ReviewLiked) action()          {}
func (PersonalizedFetched) action()  {}
func (TrendingFetched) action()      {}
func (SimilarFetched) action()       {}
func (PreferencesUpdated) action()   {}
func (NotificationsFetched) action() {}
func (NotificationReceived) action() {}
func (NotificationRead) action()     {}
func (AllNotificationsRead) action() {}
func (UnreadCountSet) action()       {}
func (ConnectionChanged) action()    {}
func (ProfileFetched) action()       {}
func (FollowersFetched) action()     {}
func (FollowingFetched) action()     {}
func (FollowChanged) action()        {}

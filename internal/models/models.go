// package models defines the data model for the media tracking client
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// MediaType enumerates the kinds of media in the catalogue.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaGame  MediaType = "game"
	MediaManga MediaType = "manga"
)

// ParseMediaType validates s as a [MediaType]. The empty string is accepted as "any".
func ParseMediaType(s string) (MediaType, error) {
	switch t := MediaType(s); t {
	case "", MediaMovie, MediaGame, MediaManga:
		return t, nil
	default:
		return "", fmt.Errorf("unknown media type %q", s)
	}
}

// User is an account on the media service.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Bio       string    `json:"bio,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Session is the persisted credential triple. Tokens are both set or both empty.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}

// Valid reports whether the session carries a complete token pair.
func (s Session) Valid() bool {
	return s.AccessToken != "" && s.RefreshToken != ""
}

// MediaItem is a movie, game or manga in the catalogue.
type MediaItem struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Type          MediaType       `json:"type"`
	ReleaseDate   string          `json:"releaseDate,omitempty"`
	CoverImage    string          `json:"coverImage,omitempty"`
	Genres        []string        `json:"genres,omitempty"`
	AverageRating float64         `json:"averageRating"`
	RatingsCount  int             `json:"ratingsCount"`
	Details       json.RawMessage `json:"details,omitempty"`
}

// Year returns the four-digit release year, or "" when unknown.
func (m MediaItem) Year() string {
	if len(m.ReleaseDate) >= 4 {
		return m.ReleaseDate[:4]
	}
	return ""
}

// Genre is a catalogue genre.
type Genre struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	MediaTypes  []MediaType `json:"mediaTypes,omitempty"`
}

// Pagination is the page metadata returned with every collection.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// MediaList is the summary form of a user's list.
type MediaList struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsPublic    bool      `json:"isPublic"`
	ItemCount   int       `json:"itemCount"`
	UserID      string    `json:"userId,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// ListItem is one ordered entry of a list.
type ListItem struct {
	ID      string     `json:"id"`
	ListID  string     `json:"listId"`
	MediaID string     `json:"mediaId"`
	Media   *MediaItem `json:"media,omitempty"`
	Notes   string     `json:"notes,omitempty"`
	Order   int        `json:"order"`
	AddedAt time.Time  `json:"addedAt,omitzero"`
}

// Title returns the media title, falling back to the media id.
func (i ListItem) Title() string {
	if i.Media != nil && i.Media.Title != "" {
		return i.Media.Title
	}
	return i.MediaID
}

// ListDetails is a list together with its items.
type ListDetails struct {
	MediaList
	Items []ListItem `json:"items"`
}

// Rating is a user's 1 to 10 score for a media item.
type Rating struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	MediaID   string    `json:"mediaId"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Review is a written review of a media item.
type Review struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	User             *UserItem `json:"user,omitempty"`
	MediaID          string    `json:"mediaId"`
	Content          string    `json:"content"`
	ContainsSpoilers bool      `json:"containsSpoilers"`
	IsVisible        bool      `json:"isVisible"`
	LikesCount       int       `json:"likesCount"`
	IsLiked          bool      `json:"isLiked"`
	CreatedAt        time.Time `json:"createdAt,omitzero"`
	UpdatedAt        time.Time `json:"updatedAt,omitzero"`
}

// NotificationType enumerates notification kinds.
type NotificationType string

const (
	NotifyRecommendation NotificationType = "recommendation"
	NotifyFollow         NotificationType = "follow"
	NotifyRating         NotificationType = "rating"
	NotifyReview         NotificationType = "review"
	NotifyListShare      NotificationType = "list_share"
	NotifySystem         NotificationType = "system"
)

// Notification is a message addressed to the signed-in user.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"isRead"`
	Data      json.RawMessage  `json:"data,omitempty"`
	CreatedAt time.Time        `json:"createdAt,omitzero"`
}

// UserStats aggregates a profile's social counters.
type UserStats struct {
	FollowersCount int `json:"followersCount"`
	FollowingCount int `json:"followingCount"`
	ListsCount     int `json:"listsCount"`
	RatingsCount   int `json:"ratingsCount"`
}

// UserProfile is another user's public profile as seen by the signed-in user.
type UserProfile struct {
	User
	IsFollowing bool      `json:"isFollowing"`
	Stats       UserStats `json:"stats"`
}

// UserItem is a compact user entry in follower/following lists.
type UserItem struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Name        string `json:"name,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	IsFollowing bool   `json:"isFollowing"`
}

// MediaTypePreference weights one media type for recommendations.
type MediaTypePreference struct {
	Type     MediaType `json:"type"`
	Strength int       `json:"strength"`
}

// Preferences tunes personalized recommendations.
type Preferences struct {
	GenreIDs             []string              `json:"genreIds"`
	MediaTypePreferences []MediaTypePreference `json:"mediaTypePreferences"`
}

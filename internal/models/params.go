package models

import (
	"fmt"
	"net/url"
	"strconv"
)

// Page selects one page of a collection. Zero values are omitted from the query.
type Page struct {
	Page  int
	Limit int
}

// Apply writes the page parameters into q.
func (p Page) Apply(q url.Values) {
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
}

// MediaFilters are the catalogue browse filters.
type MediaFilters struct {
	Page      int       `json:"page"`
	Limit     int       `json:"limit"`
	Type      MediaType `json:"type,omitempty"`
	Genre     string    `json:"genre,omitempty"`
	Search    string    `json:"search,omitempty"`
	SortBy    string    `json:"sortBy,omitempty"`
	SortOrder string    `json:"sortOrder,omitempty"`
}

// DefaultMediaFilters is the initial browse state.
func DefaultMediaFilters() MediaFilters {
	return MediaFilters{Page: 1, Limit: 20}
}

// Query encodes the filters as URL parameters.
func (f MediaFilters) Query() url.Values {
	q := url.Values{}
	Page{Page: f.Page, Limit: f.Limit}.Apply(q)
	setIf(q, "type", string(f.Type))
	setIf(q, "genre", f.Genre)
	setIf(q, "search", f.Search)
	setIf(q, "sortBy", f.SortBy)
	setIf(q, "sortOrder", f.SortOrder)
	return q
}

// GenreFilters narrow the genre listing.
type GenreFilters struct {
	Page      int
	Limit     int
	Name      string
	MediaType MediaType
}

// Query encodes the filters as URL parameters.
func (f GenreFilters) Query() url.Values {
	q := url.Values{}
	Page{Page: f.Page, Limit: f.Limit}.Apply(q)
	setIf(q, "name", f.Name)
	setIf(q, "mediaType", string(f.MediaType))
	return q
}

// ReviewQuery selects a page of a media item's reviews.
type ReviewQuery struct {
	Page         int
	Limit        int
	SortBy       string
	FilterRated  bool
	HideSpoilers bool
}

// Query encodes the filters as URL parameters.
func (r ReviewQuery) Query() url.Values {
	q := url.Values{}
	Page{Page: r.Page, Limit: r.Limit}.Apply(q)
	setIf(q, "sortBy", r.SortBy)
	if r.FilterRated {
		q.Set("filterRated", "true")
	}
	if r.HideSpoilers {
		q.Set("hideSpoilers", "true")
	}
	return q
}

// ListInput is the create/update payload of a list.
type ListInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"isPublic"`
}

// Validate rejects lists without a name.
func (l ListInput) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("list name is required")
	}
	return nil
}

// ReviewInput is the payload for writing a review.
type ReviewInput struct {
	MediaID          string `json:"mediaId"`
	Content          string `json:"content"`
	ContainsSpoilers bool   `json:"containsSpoilers"`
	IsVisible        bool   `json:"isVisible"`
}

// ReorderEntry assigns a position to one list item.
type ReorderEntry struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up payload.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ValidateRating checks that r is within the 1 to 10 scale.
func ValidateRating(r int) error {
	if r < 1 || r > 10 {
		return fmt.Errorf("rating must be between 1 and 10, got %d", r)
	}
	return nil
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

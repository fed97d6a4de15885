package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/shared"
	tu "github.com/desertthunder/mrx/internal/testing"
)

func TestClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Empty BaseURL", func(t *testing.T) {
			c := NewClient("", nil, nil)
			if c.BaseURL() != defaultBaseURL {
				t.Errorf("expected default base url, got %s", c.BaseURL())
			}
			if c.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})

		t.Run("Trims Trailing Slash", func(t *testing.T) {
			c := NewClient("http://example.com/api/", nil, nil)
			if c.BaseURL() != "http://example.com/api" {
				t.Errorf("expected trimmed base url, got %s", c.BaseURL())
			}
		})
	})

	t.Run("Do", func(t *testing.T) {
		t.Run("Decodes Envelope", func(t *testing.T) {
			api := tu.NewFakeAPI(t)
			api.Handle(http.MethodGet, "/media/m1", func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("X-Request-ID") == "" {
					t.Error("expected X-Request-ID header")
				}
				tu.WriteJSON(w, http.StatusOK, map[string]any{
					"success": true,
					"message": "ok",
					"data":    map[string]any{"id": "m1", "title": "Akira", "type": "manga"},
				})
			})

			resp, err := NewClient(api.URL, nil, nil).Do(context.Background(), http.MethodGet, "/media/m1", nil, nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.Message != "ok" {
				t.Errorf("expected message ok, got %q", resp.Message)
			}

			item, err := decode[models.MediaItem](resp)
			if err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			if item.Title != "Akira" || item.Type != models.MediaManga {
				t.Errorf("unexpected item %+v", item)
			}
		})

		t.Run("Body Without Data Key Is The Payload", func(t *testing.T) {
			api := tu.NewFakeAPI(t)
			api.Handle(http.MethodPost, "/lists/l1/items", func(w http.ResponseWriter, r *http.Request) {
				tu.WriteJSON(w, http.StatusCreated, map[string]any{"id": "i9", "mediaId": "m1", "order": 3})
			})

			svc := NewAPI(NewClient(api.URL, nil, nil)).Lists
			item, err := svc.AddItem(context.Background(), "l1", "m1", "")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if item.ID != "i9" || item.ListID != "l1" || item.Order != 3 {
				t.Errorf("unexpected item %+v", item)
			}
		})

		t.Run("Server Message Preferred", func(t *testing.T) {
			api := tu.NewFakeAPI(t)
			api.Handle(http.MethodGet, "/media", func(w http.ResponseWriter, r *http.Request) {
				tu.WriteJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid sort field"})
			})

			_, err := NewAPI(NewClient(api.URL, nil, nil)).Media.List(context.Background(), models.DefaultMediaFilters())

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %T %v", err, err)
			}
			if apiErr.Message != "Invalid sort field" || apiErr.Status != http.StatusBadRequest {
				t.Errorf("unexpected error %+v", apiErr)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Error("expected error to match ErrAPIRequest")
			}
		})

		t.Run("Default Message On Transport Failure", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}

			_, err := NewAPI(NewClient("http://example.com", client, nil)).Media.List(context.Background(), models.MediaFilters{})

			if got := ErrorMessage(err, ""); got != "Failed to fetch media" {
				t.Errorf("expected default message, got %q", got)
			}
			if !strings.Contains(err.Error(), "Failed to fetch media") {
				t.Errorf("unexpected error text %q", err.Error())
			}
		})

		t.Run("Read Failure", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(&http.Response{
				StatusCode: http.StatusOK,
				Body:       &tu.FCloser{},
				Header:     make(http.Header),
			}, nil)}

			_, err := NewClient("http://example.com", client, nil).Do(context.Background(), http.MethodGet, "/x", nil, nil)
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected read failure, got %v", err)
			}
		})

		t.Run("Not Found Maps To Sentinel", func(t *testing.T) {
			api := tu.NewFakeAPI(t)

			err := NewAPI(NewClient(api.URL, nil, nil)).Lists.Delete(context.Background(), "missing")
			if !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	})
}

func TestDecodePage(t *testing.T) {
	api := tu.NewFakeAPI(t)
	api.Handle(http.MethodGet, "/notifications", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "2" {
			t.Errorf("expected page=2, got %s", r.URL.RawQuery)
		}
		tu.WriteJSON(w, http.StatusOK, map[string]any{
			"data": []map[string]any{
				{"id": "n1", "type": "follow", "isRead": false},
				{"id": "n2", "type": "system", "isRead": true},
			},
			"meta": map[string]any{
				"unreadCount": 7,
				"pagination":  map[string]int{"currentPage": 2, "totalPages": 3, "totalItems": 25, "itemsPerPage": 10},
			},
		})
	})

	page, err := NewAPI(NewClient(api.URL, nil, nil)).Notifications.List(context.Background(), models.Page{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(page.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(page.Items))
	}
	if page.UnreadCount != 7 {
		t.Errorf("expected server unread count 7, got %d", page.UnreadCount)
	}
	if page.Pagination.TotalItems != 25 || page.Pagination.CurrentPage != 2 {
		t.Errorf("unexpected pagination %+v", page.Pagination)
	}
}

func TestErrorMessage(t *testing.T) {
	tc := []struct {
		name     string
		err      error
		fallback string
		want     string
	}{
		{name: "api error", err: &APIError{Status: 400, Message: "bad"}, fallback: "x", want: "bad"},
		{name: "wrapped api error", err: fail(&APIError{Status: 500}, "Failed to fetch lists"), fallback: "", want: "Failed to fetch lists"},
		{name: "plain error with fallback", err: errors.New("boom"), fallback: "Failed", want: "Failed"},
		{name: "plain error without fallback", err: errors.New("boom"), fallback: "", want: "boom"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.err, tt.fallback); got != tt.want {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

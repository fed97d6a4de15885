package services

import (
	"context"
	"net/http"
	"net/url"

	"github.com/desertthunder/mrx/internal/models"
)

// ListService covers /lists and their items.
type ListService struct {
	client *Client
}

// List returns one page of the signed-in user's lists.
func (s *ListService) List(ctx context.Context, page models.Page) (*Paged[models.MediaList], error) {
	q := url.Values{}
	page.Apply(q)
	out, _, err := list[models.MediaList](ctx, s.client, "/lists", q, "Failed to fetch lists")
	return out, err
}

// Get returns a list with its items.
func (s *ListService) Get(ctx context.Context, id string) (*models.ListDetails, error) {
	details, err := get[models.ListDetails](ctx, s.client, "/lists/"+segment(id), nil, "Failed to fetch list details")
	if err != nil {
		return nil, err
	}
	return &details, nil
}

// Create makes a new list.
func (s *ListService) Create(ctx context.Context, input models.ListInput) (*models.MediaList, error) {
	created, err := send[models.MediaList](ctx, s.client, http.MethodPost, "/lists", input, "Failed to create list")
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces a list's name, description and visibility.
func (s *ListService) Update(ctx context.Context, id string, input models.ListInput) (*models.MediaList, error) {
	updated, err := send[models.MediaList](ctx, s.client, http.MethodPut, "/lists/"+segment(id), input, "Failed to update list")
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a list.
func (s *ListService) Delete(ctx context.Context, id string) error {
	return exec(ctx, s.client, http.MethodDelete, "/lists/"+segment(id), nil, nil, "Failed to delete list")
}

// AddItem appends a media item to a list.
func (s *ListService) AddItem(ctx context.Context, listID, mediaID, notes string) (*models.ListItem, error) {
	body := map[string]string{"mediaId": mediaID, "notes": notes}
	item, err := send[models.ListItem](ctx, s.client, http.MethodPost, "/lists/"+segment(listID)+"/items", body, "Failed to add item to list")
	if err != nil {
		return nil, err
	}
	if item.ListID == "" {
		item.ListID = listID
	}
	return &item, nil
}

// UpdateItem replaces an item's notes.
func (s *ListService) UpdateItem(ctx context.Context, itemID, notes string) (*models.ListItem, error) {
	body := map[string]string{"notes": notes}
	item, err := send[models.ListItem](ctx, s.client, http.MethodPut, "/lists/items/"+segment(itemID), body, "Failed to update list item")
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveItem deletes an item from its list.
func (s *ListService) RemoveItem(ctx context.Context, itemID string) error {
	return exec(ctx, s.client, http.MethodDelete, "/lists/items/"+segment(itemID), nil, nil, "Failed to remove item from list")
}

// Reorder sends the complete new order of a list.
func (s *ListService) Reorder(ctx context.Context, listID string, entries []models.ReorderEntry) error {
	body := map[string][]models.ReorderEntry{"items": entries}
	return exec(ctx, s.client, http.MethodPut, "/lists/"+segment(listID)+"/reorder", nil, body, "Failed to reorder list items")
}

// ReorderEntries turns an id sequence into (id, position) pairs.
func ReorderEntries(ids []string) []models.ReorderEntry {
	entries := make([]models.ReorderEntry, len(ids))
	for i, id := range ids {
		entries[i] = models.ReorderEntry{ID: id, Order: i}
	}
	return entries
}

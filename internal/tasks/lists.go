package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/services"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/desertthunder/mrx/internal/store"
)

// FetchLists loads one page of the user's lists.
func (e *Engine) FetchLists(ctx context.Context, page models.Page) (*services.Paged[models.MediaList], error) {
	return run(e, store.KeyLists, func() (*services.Paged[models.MediaList], error) {
		return e.api.Lists.List(ctx, page)
	}, func(s store.Settle, p *services.Paged[models.MediaList]) store.Action {
		return store.ListsFetched{Settle: s, Items: p.Items, Pagination: p.Pagination}
	})
}

// FetchList loads a list with its items and makes it the current list.
func (e *Engine) FetchList(ctx context.Context, id string) (*models.ListDetails, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: list id", shared.ErrMissingArgument)
	}
	return run(e, store.ListKey(id), func() (*models.ListDetails, error) {
		return e.api.Lists.Get(ctx, id)
	}, func(s store.Settle, l *models.ListDetails) store.Action {
		return store.ListFetched{Settle: s, List: *l}
	})
}

func (e *Engine) CreateList(ctx context.Context, input models.ListInput) (*models.MediaList, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return run(e, store.KeyCreateList, func() (*models.MediaList, error) {
		return e.api.Lists.Create(ctx, input)
	}, func(s store.Settle, l *models.MediaList) store.Action {
		return store.ListCreated{Settle: s, List: *l}
	})
}

func (e *Engine) UpdateList(ctx context.Context, id string, input models.ListInput) (*models.MediaList, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return run(e, store.ListEditKey(id), func() (*models.MediaList, error) {
		return e.api.Lists.Update(ctx, id, input)
	}, func(s store.Settle, l *models.MediaList) store.Action {
		return store.ListUpdated{Settle: s, List: *l}
	})
}

func (e *Engine) DeleteList(ctx context.Context, id string) error {
	return do(e, store.ListEditKey(id), func() error {
		return e.api.Lists.Delete(ctx, id)
	}, func(s store.Settle) store.Action {
		return store.ListDeleted{Settle: s, ID: id}
	})
}

// AddListItem appends mediaID to listID.
func (e *Engine) AddListItem(ctx context.Context, listID, mediaID, notes string) (*models.ListItem, error) {
	if mediaID == "" {
		return nil, fmt.Errorf("%w: media id", shared.ErrMissingArgument)
	}
	return run(e, store.ListItemsKey(listID), func() (*models.ListItem, error) {
		return e.api.Lists.AddItem(ctx, listID, mediaID, notes)
	}, func(s store.Settle, item *models.ListItem) store.Action {
		return store.ListItemAdded{Settle: s, Item: *item}
	})
}

func (e *Engine) RemoveListItem(ctx context.Context, listID, itemID string) error {
	return do(e, store.ListItemKey(itemID), func() error {
		return e.api.Lists.RemoveItem(ctx, itemID)
	}, func(s store.Settle) store.Action {
		return store.ListItemRemoved{Settle: s, ListID: listID, ItemID: itemID}
	})
}

// UpdateItemNotes replaces the notes of one list item.
func (e *Engine) UpdateItemNotes(ctx context.Context, itemID, notes string) (*models.ListItem, error) {
	return run(e, store.ListItemKey(itemID), func() (*models.ListItem, error) {
		return e.api.Lists.UpdateItem(ctx, itemID, notes)
	}, func(s store.Settle, item *models.ListItem) store.Action {
		return store.ListItemUpdated{Settle: s, Item: *item}
	})
}

// MoveListItem moves the item at position from to position to.
//
// The new order is applied locally before the request is sent. If the
// request fails the previous order is restored and the error returned.
func (e *Engine) MoveListItem(ctx context.Context, listID string, from, to int) error {
	cur, err := e.loadedList(ctx, listID)
	if err != nil {
		return err
	}
	items, err := store.Move(cur.Items, from, to)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	if from == to {
		return nil
	}
	return e.reorder(ctx, listID, cur.Items, items)
}

// ReorderListItems applies an explicit order. ids must name every item of the list exactly once.
func (e *Engine) ReorderListItems(ctx context.Context, listID string, ids []string) error {
	cur, err := e.loadedList(ctx, listID)
	if err != nil {
		return err
	}
	if err := checkPermutation(cur.Items, ids); err != nil {
		return err
	}
	return e.reorder(ctx, listID, cur.Items, store.Reconcile(cur.Items, ids))
}

func (e *Engine) reorder(ctx context.Context, listID string, snapshot, items []models.ListItem) error {
	key := store.ReorderKey(listID)
	settle := store.Settle{Key: key, Seq: e.store.Begin(key)}
	e.store.Dispatch(store.ListReordered{ListID: listID, Items: items})

	ids := itemIDs(items)
	if err := e.api.Lists.Reorder(ctx, listID, services.ReorderEntries(ids)); err != nil {
		e.logger.Warn("reorder failed, restoring previous order", "list", listID, "error", err)
		e.store.Dispatch(store.ReorderRolledBack{
			Settle: settle,
			ListID: listID,
			Items:  snapshot,
			Err:    services.ErrorMessage(err, ""),
		})
		return err
	}
	e.store.Dispatch(store.ReorderConfirmed{Settle: settle, ListID: listID, IDs: ids})
	return nil
}

// loadedList returns the current list, fetching it when another list (or none) is loaded.
func (e *Engine) loadedList(ctx context.Context, listID string) (*models.ListDetails, error) {
	if cur := e.store.State().CurrentList(listID); cur != nil {
		return cur, nil
	}
	if _, err := e.FetchList(ctx, listID); err != nil {
		return nil, err
	}
	if cur := e.store.State().CurrentList(listID); cur != nil {
		return cur, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrListNotFound, listID)
}

func itemIDs(items []models.ListItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func checkPermutation(items []models.ListItem, ids []string) error {
	if len(ids) != len(items) {
		return fmt.Errorf("%w: expected %d item ids, got %d", shared.ErrInvalidArgument, len(items), len(ids))
	}
	known := make(map[string]bool, len(items))
	for _, item := range items {
		known[item.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return fmt.Errorf("%w: %s", shared.ErrItemNotFound, id)
		}
		delete(known, id)
	}
	return nil
}

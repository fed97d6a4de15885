package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/mrx/internal/models"
)

var (
	_ list.Item = listItem{}
	_ list.Item = entryItem{}
	_ list.Item = notificationItem{}
)

// listItem wraps [models.MediaList] to implement [list.Item].
type listItem struct {
	list models.MediaList
}

func (i listItem) FilterValue() string { return i.list.Name }
func (i listItem) Title() string       { return i.list.Name }
func (i listItem) Description() string {
	desc := fmt.Sprintf("%d items", i.list.ItemCount)
	if i.list.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.list.Description)
	}
	return desc
}

// entryItem wraps [models.ListItem] to implement [list.Item].
type entryItem struct {
	item models.ListItem
}

func (i entryItem) FilterValue() string { return i.item.Title() }
func (i entryItem) Title() string       { return fmt.Sprintf("%d. %s", i.item.Order+1, i.item.Title()) }
func (i entryItem) Description() string {
	var desc string
	if m := i.item.Media; m != nil {
		desc = string(m.Type)
		if year := m.Year(); year != "" {
			desc = fmt.Sprintf("%s • %s", desc, year)
		}
	}
	if i.item.Notes != "" {
		if desc != "" {
			desc += " • "
		}
		desc += i.item.Notes
	}
	return desc
}

// notificationItem wraps [models.Notification] to implement [list.Item].
type notificationItem struct {
	n models.Notification
}

func (i notificationItem) FilterValue() string { return i.n.Title }
func (i notificationItem) Title() string {
	if i.n.IsRead {
		return i.n.Title
	}
	return "● " + i.n.Title
}
func (i notificationItem) Description() string { return i.n.Message }

func listItems(lists []models.MediaList) []list.Item {
	items := make([]list.Item, len(lists))
	for i, l := range lists {
		items[i] = listItem{list: l}
	}
	return items
}

func entryItems(entries []models.ListItem) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = entryItem{item: e}
	}
	return items
}

func notificationItems(ns []models.Notification) []list.Item {
	items := make([]list.Item, len(ns))
	for i, n := range ns {
		items[i] = notificationItem{n: n}
	}
	return items
}

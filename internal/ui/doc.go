// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI renders the application store in three views:
//  1. [ListsView] : Browse the signed-in user's lists
//  2. [ListDetailView] : Show a list's items and reorder them with shift+↑/shift+↓
//  3. [NotificationsView] : Read notifications and mark them read
//
// The header shows the signed-in user, the unread count and the notification
// channel state.
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Engine calls run as commands off the update loop. The model never reads their
// results directly: every view is re-rendered from the state delivered by
// [Model.Listener], so an optimistic reorder appears at once and a rollback
// replaces it when the server refuses.
package ui

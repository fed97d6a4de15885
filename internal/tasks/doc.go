// Package tasks runs API operations against the application store with request lifecycle tracking.
//
// # Engine
//
// [Engine] pairs a [services.API] with a [store.Store]. Every operation:
//
//  1. Issues a sequence number for its request key and marks it loading
//  2. Calls the API on the caller's goroutine, honoring ctx
//  3. Settles the key with the payload, or with the error message on failure
//
// A response that arrives after a newer request for the same key is fenced by
// the store (see [store.Reduce]).
//
// # Optimistic Reordering
//
// [Engine.MoveListItem] and [Engine.ReorderListItems] apply the new order
// locally, then send the full (id, order) sequence. The server's success
// reconciles the items by id; a failure restores the snapshot taken before the
// move and marks the reorder request failed.
//
// # Session
//
// [SessionBridge] keeps the in-memory auth slice and the persistent credential
// store in step. It is both the memory token source and the
// [services.SessionHandler] of the request pipeline.
//
// # Push Events
//
// [PushHandler] implements [notify.Handler] by dispatching pushed
// notifications, read receipts, unread counters and connection states.
//
// # Bulk Export
//
// [Engine.ExportLists] exports lists with a worker pool. Fetches are spaced by
// a token bucket; each list is written by [formatter.Write] and a manifest is
// written at the end. Progress updates use a non-blocking send, so a slow or
// absent reader never stalls the export.
//
// # Dashboard
//
// [Engine.Dashboard] loads independent sections concurrently with errgroup and
// keeps whatever succeeded.
package tasks

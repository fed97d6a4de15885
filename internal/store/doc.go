// Package store holds the client-side application state.
//
// # State and Actions
//
// [State] is a plain value with one slice per resource (auth, media, lists,
// genres, ratings, recommendations, notifications, users) and a Requests map
// of keyed [Lifecycle] values. [Action] is a closed set of structs; [Reduce]
// matches every one of them and returns a new State without mutating its
// input.
//
// # Request Lifecycle
//
// A request for key k runs idle → loading → succeeded or failed:
//   - [Store.Begin] issues a sequence number and dispatches [Pending]
//   - a fulfilled action embeds [Settle]{Key, Seq} and merges its payload
//   - [Rejected] records the failure message
//
// Only the latest sequence number of a key may settle it. Older responses
// that replace data are dropped; older responses that adjust counters
// (item added, review liked, user followed, notification read) are merged
// without changing the lifecycle.
//
// # Observers
//
// [Store.Subscribe] registers a [Listener] that is called after each dispatch
// with the previous and next state.
package store

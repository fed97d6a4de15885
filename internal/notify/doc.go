// Package notify maintains the push connection that streams notification events.
//
// # Connection Manager
//
// [Manager] moves between [Disconnected], [Connecting] and [Connected]. It
// dials with golang.org/x/net/websocket and sends the current access token as
// "Authorization: Bearer" at every dial, so a refreshed token is picked up on
// the next reconnect. [Manager.Connect] is idempotent: while the loop runs,
// further calls do nothing.
//
// # Frames
//
// Each message is a JSON [Frame] {event, data}:
//   - notification : a [models.Notification] to prepend
//   - notification_read : the id of a notification now read
//   - unread_count : an authoritative unread counter
//
// # Reconnect Policy
//
// After a lost or failed connection the manager waits ReconnectDelay, doubling
// per consecutive failure up to MaxReconnectDelay. A successful connect resets
// the count. After MaxReconnectAttempts consecutive failures the loop stops and
// [Manager.Err] reports [shared.ErrReconnectExhausted].
package notify

// Package models defines the domain entities exchanged with the media API and held in client state.
//
// The package contains three categories of types:
//
// 1. Session: the credential triple persisted between runs
//   - [Session] : access token, refresh token and the signed-in [User]
//
// 2. Resources: server-owned records mirrored by the client
//   - [MediaItem], [Genre] : the browsable catalogue
//   - [MediaList], [ListItem], [ListDetails] : ordered personal lists
//   - [Rating], [Review] : per-media user feedback
//   - [Notification] : push and polled notifications
//   - [UserProfile], [UserItem] : social graph entries
//   - [Preferences] : recommendation tuning
//
// 3. Request parameters: filters and payloads sent to the API
//   - [MediaFilters], [GenreFilters], [ReviewQuery], [Page]
//   - [ListInput], [ReviewInput], [ReorderEntry]
//
// All JSON tags follow the API's camelCase wire format.
package models

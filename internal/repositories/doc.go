// Package repositories implements SQLite persistence for the client's local state.
//
// Key Implementations:
//   - [CredentialRepository] : key/value storage of the session credentials
//   - [MediaCacheRepository] : last fetched copy of media details, keyed by media id
//   - [MediaCacheAdapter] : adapts [MediaCacheRepository] to the task engine's cache hook
//
// Multi-key writes happen in a single transaction so a crash never leaves a
// mixed access/refresh token pair on disk.
package repositories

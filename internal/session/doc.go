// Package session persists the signed-in user's credentials between runs.
//
// [Storage] is a best-effort facade over a [Backend]: every operation logs and
// swallows backend failures, and [Storage.Read] degrades to an empty
// [models.Session]. When storage is unavailable the session simply stops
// being persistent.
//
// Backends:
//   - repositories.CredentialRepository : SQLite, the default
//   - [MemoryBackend] : process-local, used when no database is configured
//
// Tokens are surfaced as [oauth2.Token] values so the HTTP layer can use
// [oauth2.Token.SetAuthHeader]; the expiry is read from the access token's
// unverified JWT "exp" claim when present.
package session

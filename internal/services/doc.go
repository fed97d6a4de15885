// Package services implements the HTTP layer of the media API client.
//
// # Client
//
// [Client] builds JSON requests against the configured base URL, stamps each
// with an X-Request-ID, and decodes the {data, meta} envelope. A response
// body without a "data" key is treated as the payload itself.
//
// # Transport Pipeline
//
// [NewPipeline] assembles the intercepted [http.Client], outermost first:
//   - [RetryTransport] : re-issues 429 responses after Retry-After (or an
//     exponential backoff), up to a fixed count, then fails with
//     [shared.ErrRateLimited]
//   - [AuthTransport] : attaches the bearer token (memory, then storage) and on
//     401 refreshes once through a [Refresher] and replays the request
//   - [LimitTransport] : client-side token bucket
//
// The [TokenRefresher] must be built on a plain client so a failing refresh
// cannot recurse through the [AuthTransport].
//
// # Resource Services
//
// [API] groups one service per resource (auth, media, genres, lists,
// ratings, reviews, recommendations, users, notifications). Every method
// takes a [context.Context] and returns an [*APIError] on failure.
//
// # Error Handling
//
// [APIError.Message] carries the server's "message" when present and a
// resource-specific default ("Failed to fetch media") otherwise. It unwraps to:
//   - [shared.ErrNotFound] : 404 responses
//   - [shared.ErrAPIRequest] : every other failure
//   - the underlying cause, e.g. [shared.ErrRefreshFailed] or [context.Canceled]
package services

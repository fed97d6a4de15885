package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")

	// API and service errors
	ErrAPIRequest   = fmt.Errorf("API request failed")
	ErrNotFound     = fmt.Errorf("resource not found")
	ErrRateLimited  = fmt.Errorf("rate limit retries exhausted")
	ErrListNotFound = fmt.Errorf("list not found")
	ErrItemNotFound = fmt.Errorf("list item not found")

	// Notification channel errors
	ErrReconnectExhausted = fmt.Errorf("notification channel reconnect attempts exhausted")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)

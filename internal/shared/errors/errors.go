package errors

import "errors"

var (
	ErrMissingCookie       = errors.New("TRUTH_COOKIE is required for remote fetching")
	ErrInvalidAccountID    = errors.New("truth_account_id must be a numeric account id")
	ErrProxyUnusable       = errors.New("proxy candidate cannot be turned into a transport")
	ErrSourceUnavailable   = errors.New("upstream unavailable through every candidate")
	ErrRemoteFetchDisabled = errors.New("remote fetching is disabled")
)

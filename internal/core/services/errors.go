package services

import "errors"

// ErrNoClient is the cause reported when no remote client is wired.
var ErrNoClient = errors.New("document QA client not configured")

package memory

import "errors"

// ErrConcurrentUpdate is returned when a save carries a stale version.
var ErrConcurrentUpdate = errors.New("memory: concurrent update")

package service

import "errors"

// ErrInvalidArgument indicates caller misuse (empty category set, bad
// limit). A programming error, not a user-facing condition.
var ErrInvalidArgument = errors.New("invalid argument")

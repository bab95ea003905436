package repository

import "errors"

// ErrNotFound is returned when a requested record is not found in the repository.
// This abstracts away the underlying storage implementation from the service layer.
var ErrNotFound = errors.New("record not found")

// ErrRoundClosed is returned when a write targets a round that is already closed.
var ErrRoundClosed = errors.New("round is closed")

// ErrRoundChanged is returned when a tournament is no longer on the expected round.
var ErrRoundChanged = errors.New("current round changed")

package entity

import "errors"

// ErrNoteNotFound marks every "no such note for this owner" outcome: an
// out-of-range display index, a foreign owner's id, or a note deleted while
// a flow was still pointing at it. Any other repository error is treated as
// a storage failure by the dialogue layer.
var ErrNoteNotFound = errors.New("note not found")

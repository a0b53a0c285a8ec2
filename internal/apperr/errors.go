// Package apperr defines sentinel errors shared across layers.
package apperr

import "errors"

// ErrNotFound reports that a referenced row has no live counterpart in
// storage: an update naming an unknown note id, or a day lookup that
// unexpectedly yielded nothing.
var ErrNotFound = errors.New("not found")

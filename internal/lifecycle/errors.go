package lifecycle

import (
	"errors"

	"github.com/erazemk/najdeno/internal/apperr"
)

// Error kinds returned by the engine. They are the shared apperr values,
// re-exported so callers of this package need not import apperr.
type Error = apperr.Error

var (
	ErrNotFound     = apperr.ErrNotFound
	ErrInvalidState = apperr.ErrInvalidState
	ErrForbidden    = apperr.ErrForbidden
	ErrConflict     = apperr.ErrConflict
	ErrValidation   = apperr.ErrValidation
	ErrStore        = apperr.ErrStore
)

// errStale marks a compare-and-swap that matched no row: another writer
// changed the record after it was read.
var errStale = errors.New("stale record")

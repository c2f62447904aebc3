package tier

import "errors"

// ErrUnknownTier is returned for an index or slug outside the catalog.
var ErrUnknownTier = errors.New("unknown tier")

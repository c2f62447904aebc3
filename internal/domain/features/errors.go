package features

import "errors"

// ErrInvalidFeatureVector is returned when a vector cannot be assembled:
// a field is absent, non-numeric, or the arity is wrong.
var ErrInvalidFeatureVector = errors.New("invalid feature vector")

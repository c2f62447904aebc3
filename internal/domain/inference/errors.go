package inference

import (
	"errors"

	"github.com/okian/mobicost/internal/domain/features"
)

var (
	// ErrMissingArtifact is returned when the classifier or scaler is absent
	// or cannot be loaded.
	ErrMissingArtifact = errors.New("missing artifact")
	// ErrInvalidFeatureVector is returned when the vector cannot be assembled.
	ErrInvalidFeatureVector = features.ErrInvalidFeatureVector
	// ErrTransformFailure is returned when the scaler rejects the numeric subset.
	ErrTransformFailure = errors.New("transform failure")
	// ErrClassifierFailure is returned when the classifier errors or its
	// output violates the four-class contract.
	ErrClassifierFailure = errors.New("classifier failure")
)

// ErrorKind classifies err into the stable code used by metrics and the HTTP
// error envelope. Unrecognized errors yield "internal_error".
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrTransformFailure):
		return "transform_failure"
	case errors.Is(err, ErrInvalidFeatureVector):
		return "invalid_feature_vector"
	case errors.Is(err, ErrClassifierFailure):
		return "classifier_failure"
	case errors.Is(err, ErrMissingArtifact):
		return "missing_artifact"
	default:
		return "internal_error"
	}
}

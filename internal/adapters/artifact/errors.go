package artifact

import "errors"

var (
	// ErrInvalidArtifact is returned when an artifact parses but its content
	// does not describe a usable model.
	ErrInvalidArtifact = errors.New("invalid artifact")
	// ErrRemoteStatus is returned when the remote classifier answers with a
	// non-200 status.
	ErrRemoteStatus = errors.New("remote classifier status")
)

package gapy

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

var (
	// ErrConfig indicates required construction arguments were missing,
	// e.g. neither a private key nor a private key path was supplied.
	// Raised before any network call is attempted.
	ErrConfig = errors.New("gapy: invalid configuration")

	// ErrNotFound indicates a management lookup matched no resource id.
	ErrNotFound = errors.New("gapy: id not found")
)

// IsConfig reports whether err is a local configuration error.
func IsConfig(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsNotFound reports whether err is a failed management lookup or a 404
// surfaced by the backend.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound
	}
	return false
}

package gmail

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/mailmirror/internal/core/domain"
)

// wrapError maps a googleapi error onto the domain error taxonomy so callers
// never depend on this package's transport.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("%w: %v", domain.ErrRemoteAPI, err)
	}

	switch gerr.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, gerr.Message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, gerr.Message)
	default:
		return fmt.Errorf("%w: status %d: %s", domain.ErrRemoteAPI, gerr.Code, gerr.Message)
	}
}

// IsRateLimited reports whether the error is a 429 from the API.
func IsRateLimited(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests
}

package driveapi

import (
	"errors"
	"fmt"

	"github.com/imroc/req/v3"
)

var (
	ErrNoFolderID        = errors.New("driveapi: folder id missing")
	ErrSubfolderNotFound = errors.New("driveapi: subfolder not found")
)

// handleAPIError folds the transport error and API error state of a
// response into one error.
func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s: %w", operation, requestErr)
	}

	if resp.IsErrorState() {
		return fmt.Errorf("api error: %s: %s", operation, resp.Status)
	}

	return nil
}

package erpapi

import (
	"errors"
	"fmt"

	"github.com/imroc/req/v3"
)

var (
	ErrNoURL           = errors.New("erpapi: url missing")
	ErrNoAPIKey        = errors.New("erpapi: api key missing")
	ErrAuthFailed      = errors.New("erpapi: authentication failed")
	ErrProductNotFound = errors.New("erpapi: product not found")
)

func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s: %w", operation, requestErr)
	}

	if resp.IsErrorState() {
		return fmt.Errorf("api error: %s: %s", operation, resp.Status)
	}

	return nil
}

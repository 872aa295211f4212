// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package admin

import (
	"errors"
	"fmt"
	"net/http"
)

// Gateway errors.
var (
	ErrTimeout    = errors.New("admin request timed out")
	ErrEmptyURL   = errors.New("web service URL cannot be empty")
	ErrBadBaseURL = errors.New("invalid web service URL")
)

// HTTPError is a non-2xx admin response. The status code carries the
// classification callers branch on; Body is kept verbatim for display.
type HTTPError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("admin request failed: %s", http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("admin request failed: %s: %s", http.StatusText(e.StatusCode), e.Body)
}

// StatusOf returns the HTTP status code carried by err, or 0 when err is
// not an HTTPError.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

// IsAuthentication reports whether err is a 401 response.
func IsAuthentication(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// IsAuthorization reports whether err is a 403 response.
func IsAuthorization(err error) bool {
	return StatusOf(err) == http.StatusForbidden
}

// IsPermission reports whether err is permission-classified (401 or 403).
// Callers use this to choose degraded-but-functional behavior over hard
// failure.
func IsPermission(err error) bool {
	return IsAuthentication(err) || IsAuthorization(err)
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

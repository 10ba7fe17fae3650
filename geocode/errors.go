// Copyright 2025 The GeoQuery Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a geocoding failure with a classified type.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType classifies geocoding failures.
type ErrorType int

const (
	// ErrorTypeUnknown is an unclassified provider failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNotFound means the provider had no match for the location.
	ErrorTypeNotFound
	// ErrorTypeTimeout means the provider call exceeded its deadline.
	ErrorTypeTimeout
	// ErrorTypeRateLimit means the provider rejected the call for rate limiting.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded means the provider quota is exhausted.
	ErrorTypeQuotaExceeded
	// ErrorTypeNetwork means the provider could not be reached.
	ErrorTypeNetwork
	// ErrorTypeMalformed means the provider answered with an unparseable body.
	ErrorTypeMalformed
	// ErrorTypeInvalidRequest means the request itself was rejected.
	ErrorTypeInvalidRequest
)

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// notFound builds a NotFound error for a location.
func notFound(location string) *Error {
	return &Error{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("no results found for location: %s", location),
	}
}

// IsNotFound reports whether the error means the location has no match.
// Provider failures are never reported as not-found: a transient outage must
// not masquerade as a missing location.
func IsNotFound(err error) bool {
	var geoErr *Error
	if errors.As(err, &geoErr) {
		return geoErr.Type == ErrorTypeNotFound
	}

	return false
}

// IsUnavailable reports whether the error means the provider could not
// answer (timeout, network failure, malformed response, rate limit, quota).
func IsUnavailable(err error) bool {
	var geoErr *Error
	if errors.As(err, &geoErr) {
		return geoErr.Type != ErrorTypeNotFound
	}

	return false
}

// ClassifyHTTPError maps an HTTP status from a provider into an Error.
func ClassifyHTTPError(statusCode int) *Error {
	switch statusCode {
	case http.StatusTooManyRequests:
		return &Error{
			Type:    ErrorTypeRateLimit,
			Message: "rate limit reached",
		}
	case http.StatusForbidden:
		return &Error{
			Type:    ErrorTypeQuotaExceeded,
			Message: "quota exceeded or access denied",
		}
	case http.StatusBadRequest:
		return &Error{
			Type:    ErrorTypeInvalidRequest,
			Message: "invalid request",
		}
	case http.StatusNotFound:
		return &Error{
			Type:    ErrorTypeNotFound,
			Message: "location not found",
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &Error{
			Type:    ErrorTypeNetwork,
			Message: fmt.Sprintf("service unavailable (status %d)", statusCode),
		}
	default:
		return &Error{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("HTTP error %d", statusCode),
		}
	}
}

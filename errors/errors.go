package errors

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrWorkerPanic          = fmt.Errorf("worker panic")
	ErrEmptyWords           = fmt.Errorf("no words have been found")
	ErrEmptyWish            = fmt.Errorf("wish text is empty")
	ErrInvalidID            = fmt.Errorf("message id is empty")
	ErrConfirmationRequired = fmt.Errorf("clearing the wall must be confirmed")
	ErrNotFound             = fmt.Errorf("document not found")
	ErrMalformedDocument    = fmt.Errorf("malformed document")
	ErrStoreUnavailable     = fmt.Errorf("message store unavailable")
	ErrStoreClosed          = fmt.Errorf("message store closed")
	ErrSubscriptionClosed   = fmt.Errorf("subscription closed")
	ErrInvalidToken         = fmt.Errorf("invalid or expired session token")
	ErrMissingToken         = fmt.Errorf("session token is missing")
	ErrTokenGeneration      = fmt.Errorf("session token generation failed")
)

// MapToGRPCError translates domain errors into gRPC status errors.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok && !isDomain(err) {
		return err
	}
	return status.Error(grpcCode(err), err.Error())
}

// HTTPStatus returns the HTTP status code matching a domain error.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrEmptyWish), errors.Is(err, ErrInvalidID):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrConfirmationRequired):
		return http.StatusPreconditionRequired
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrMissingToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrStoreUnavailable), errors.Is(err, ErrStoreClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether the caller may resubmit the same request later.
func Retryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

func grpcCode(err error) codes.Code {
	switch {
	case errors.Is(err, ErrEmptyWish), errors.Is(err, ErrInvalidID):
		return codes.InvalidArgument
	case errors.Is(err, ErrConfirmationRequired):
		return codes.FailedPrecondition
	case errors.Is(err, ErrNotFound):
		return codes.NotFound
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrMissingToken):
		return codes.Unauthenticated
	case errors.Is(err, ErrStoreUnavailable), errors.Is(err, ErrStoreClosed):
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

func isDomain(err error) bool {
	for _, target := range []error{
		ErrEmptyWish, ErrInvalidID, ErrConfirmationRequired, ErrNotFound,
		ErrStoreUnavailable, ErrStoreClosed, ErrInvalidToken, ErrMissingToken,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsCallerError reports whether err is caused by the request rather than by the store.
func IsCallerError(err error) bool {
	return errors.Is(err, ErrEmptyWish) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConfirmationRequired)
}

package common

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/carrousel-labs/review-proxy/types"
)

var statusByErrorType = map[types.ErrorType]int{
	types.ErrTypeValidation:     fiber.StatusBadRequest,
	types.ErrTypeInvalidValue:   fiber.StatusBadRequest,
	types.ErrTypeBadRequest:     fiber.StatusBadRequest,
	types.ErrTypeNotFound:       fiber.StatusNotFound,
	types.ErrTypeRateLimit:      fiber.StatusTooManyRequests,
	types.ErrTypeNetwork:        fiber.StatusBadGateway,
	types.ErrTypeUpstream:       fiber.StatusBadGateway,
	types.ErrTypeTimeout:        fiber.StatusGatewayTimeout,
	types.ErrTypeUnavailable:    fiber.StatusServiceUnavailable,
	types.ErrTypeNotImplemented: fiber.StatusNotImplemented,
}

// StatusCode maps err onto the HTTP status returned to clients.
func StatusCode(err error) int {
	var se *types.StandardError
	if errors.As(err, &se) {
		if code, ok := statusByErrorType[se.Type]; ok {
			return code
		}
		return fiber.StatusInternalServerError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fiber.StatusGatewayTimeout
	}
	return fiber.StatusInternalServerError
}

// ToFiberError converts err into a *fiber.Error. Client errors keep their
// message; upstream and internal failures are reduced to the status text.
func ToFiberError(err error) *fiber.Error {
	code := StatusCode(err)
	if code < fiber.StatusInternalServerError {
		var se *types.StandardError
		if errors.As(err, &se) {
			return fiber.NewError(code, se.Message)
		}
		return fiber.NewError(code, err.Error())
	}
	return fiber.NewError(code)
}

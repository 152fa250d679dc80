package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/brewhouse/pkg/errors"
)

// DownstreamErrorResponse covers the two error body shapes the storefront
// talks to: the {"error":{"code","message"}} envelope of our own services and
// the flat {"code","message","details","hint"} body PostgREST returns.
type DownstreamErrorResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (d DownstreamErrorResponse) codeAndMessage() (string, string, bool) {
	if d.Error != nil {
		return d.Error.Code, d.Error.Message, true
	}
	if d.Message != "" {
		msg := d.Message
		if d.Details != "" {
			msg += " (" + d.Details + ")"
		}
		return d.Code, msg, true
	}
	return "", "", false
}

// ParseResponseError reads the body of a non-2xx response and translates it
// into an error carrying the downstream semantics. The body is consumed and
// closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	var downstream DownstreamErrorResponse
	if json.Unmarshal(bodyBytes, &downstream) == nil {
		if code, message, ok := downstream.codeAndMessage(); ok {
			return mapDownstreamError(resp.StatusCode, code, message, serviceName)
		}
	}

	return mapDownstreamError(resp.StatusCode, "", string(bodyBytes), serviceName)
}

// mapDownstreamError translates a downstream status into an AppError.
// Auth failures against the backend are our misconfiguration, so they surface
// as unavailability rather than as a client error.
func mapDownstreamError(status int, code, message, serviceName string) error {
	qualifiedMsg := fmt.Sprintf("%s: %s", serviceName, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(serviceName, message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualifiedMsg)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualifiedMsg)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return &apperrors.AppError{
			Code:    "UPSTREAM_AUTH",
			Message: qualifiedMsg,
			Status:  http.StatusServiceUnavailable,
			Err:     apperrors.ErrServiceUnavail,
		}
	case status >= 500:
		if code == "" {
			code = "UPSTREAM_ERROR"
		}
		return &apperrors.AppError{
			Code:    code,
			Message: qualifiedMsg,
			Status:  http.StatusServiceUnavailable,
			Err:     apperrors.ErrServiceUnavail,
		}
	default:
		if code == "" {
			code = "UPSTREAM_ERROR"
		}
		return &apperrors.AppError{
			Code:    code,
			Message: qualifiedMsg,
			Status:  status,
		}
	}
}

// IsSuccess reports whether the status code is 2xx.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

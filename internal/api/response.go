package api

import (
	"errors"
	"net/http"

	"finlog/pkg/finlog"
)

// Response represents a successful API response with unified format.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse represents an error API response with structured information.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeSuccessWithMessage writes a successful response with data and message.
func writeSuccessWithMessage(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// writeErrorResponse writes err with an HTTP status derived from its code.
// httpStatus is used for unclassified errors.
func writeErrorResponse(w http.ResponseWriter, httpStatus int, err error) {
	response := ErrorResponse{
		Code:    httpStatus,
		Message: err.Error(),
	}

	var finErr *finlog.Error
	if errors.As(err, &finErr) {
		response.ErrorCode = string(finErr.Code)
		response.Message = finErr.Message
		httpStatus = mapErrorCodeToHTTPStatus(finErr.Code)
		response.Code = httpStatus
	}

	if lw, ok := w.(interface{ SetErrorMessage(string) }); ok {
		lw.SetErrorMessage(err.Error())
	}
	writeJSON(w, httpStatus, response)
}

// mapErrorCodeToHTTPStatus maps business error codes to HTTP status codes.
func mapErrorCodeToHTTPStatus(code finlog.ErrorCode) int {
	switch code {
	case finlog.ErrCodeInvalidInput, finlog.ErrCodeValidation:
		return http.StatusBadRequest
	case finlog.ErrCodeNotFound:
		return http.StatusNotFound
	case finlog.ErrCodeDuplicate:
		return http.StatusConflict
	case finlog.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case finlog.ErrCodeDatabase, finlog.ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

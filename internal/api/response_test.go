package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"finlog/pkg/finlog"
)

func TestWriteSuccessWithMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	writeSuccessWithMessage(rr, "done", map[string]string{"status": "ok"})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp Response
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != 0 || resp.Message != "done" {
		t.Fatalf("unexpected response %+v", resp)
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok || data["status"] != "ok" {
		t.Fatalf("unexpected data payload: %v", resp.Data)
	}
}

func TestWriteErrorResponse(t *testing.T) {
	t.Run("structured error", func(t *testing.T) {
		rr := httptest.NewRecorder()
		writeErrorResponse(rr, http.StatusInternalServerError, finlog.NewError(finlog.ErrCodeNotFound, "missing"))

		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rr.Code)
		}
		var resp ErrorResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.ErrorCode != string(finlog.ErrCodeNotFound) || resp.Message != "missing" {
			t.Fatalf("unexpected response %+v", resp)
		}
	})

	t.Run("wrapped structured error", func(t *testing.T) {
		rr := httptest.NewRecorder()
		err := fmt.Errorf("outer: %w", finlog.NewError(finlog.ErrCodeDuplicate, "exists"))
		writeErrorResponse(rr, http.StatusInternalServerError, err)
		if rr.Code != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", rr.Code)
		}
	})

	t.Run("plain error", func(t *testing.T) {
		rr := httptest.NewRecorder()
		writeErrorResponse(rr, http.StatusBadRequest, errors.New("bad input"))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rr.Code)
		}
		var resp ErrorResponse
		_ = json.NewDecoder(rr.Body).Decode(&resp)
		if resp.ErrorCode != "" || resp.Message != "bad input" {
			t.Fatalf("unexpected response %+v", resp)
		}
	})
}

func TestMapErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code finlog.ErrorCode
		want int
	}{
		{name: "invalid input", code: finlog.ErrCodeInvalidInput, want: http.StatusBadRequest},
		{name: "validation", code: finlog.ErrCodeValidation, want: http.StatusBadRequest},
		{name: "not found", code: finlog.ErrCodeNotFound, want: http.StatusNotFound},
		{name: "duplicate", code: finlog.ErrCodeDuplicate, want: http.StatusConflict},
		{name: "unauthorized", code: finlog.ErrCodeUnauthorized, want: http.StatusUnauthorized},
		{name: "database", code: finlog.ErrCodeDatabase, want: http.StatusInternalServerError},
		{name: "internal", code: finlog.ErrCodeInternal, want: http.StatusInternalServerError},
		{name: "unknown", code: finlog.ErrorCode("SOMETHING_ELSE"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapErrorCodeToHTTPStatus(tt.code); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fotf/subscription-system/internal/core/domain"
)

func renderError(t *testing.T, err error) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var envelope map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid error envelope: %v", err)
	}
	return rec, envelope["error"]
}

func TestErrorHandler_DomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrMissingFields, http.StatusBadRequest},
		{domain.ErrUserExists, http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrUserNotFound, http.StatusNotFound},
		{domain.ErrProductNotFound, http.StatusNotFound},
		{domain.ErrSubscriptionNotFound, http.StatusNotFound},
		{domain.ErrForbidden, http.StatusForbidden},
	}

	for _, tc := range cases {
		rec, msg := renderError(t, tc.err)
		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		if msg == "" {
			t.Fatalf("%v: expected error message", tc.err)
		}
	}
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	rec, msg := renderError(t, echo.NewHTTPError(http.StatusForbidden, "admin access required"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if msg != "admin access required" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

// Unexpected errors must not leak internals to the client.
func TestErrorHandler_UnexpectedError(t *testing.T) {
	rec, msg := renderError(t, errors.New("mongo: socket closed mid-write"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if msg != "internal server error" {
		t.Fatalf("internal detail leaked: %q", msg)
	}
}

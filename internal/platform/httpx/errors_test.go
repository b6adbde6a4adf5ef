package httpx_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chronicle-cms/chronicle/internal/platform/httpx"
	"github.com/chronicle-cms/chronicle/internal/shared"
)

func TestRespondErrorMapsSharedSentinels(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("get category: %w", shared.ErrNotFound), http.StatusNotFound},
		{"duplicate", shared.ErrDuplicate, http.StatusConflict},
		{"invalid credentials", shared.ErrInvalidCredentials, http.StatusUnauthorized},
		{"infrastructure", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := httptest.NewRecorder()
			httpx.RespondError(res, tc.err)
			if res.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, res.Code)
			}
		})
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	res := httptest.NewRecorder()
	httpx.RespondError(res, errors.New("dial tcp 10.0.0.5:5432: connection refused"))
	if strings.Contains(res.Body.String(), "10.0.0.5") {
		t.Fatalf("internal error detail leaked: %s", res.Body.String())
	}
}

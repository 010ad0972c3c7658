package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name      string
		userRoles []string
		required  []string
		allowed   bool
	}{
		{"exact match", []string{RolePractitioner}, []string{RolePractitioner}, true},
		{"one of many", []string{RoleStaff}, []string{RolePractitioner, RoleStaff}, true},
		{"admin passes", []string{RoleAdmin}, []string{RolePractitioner}, true},
		{"missing role", []string{RoleStaff}, []string{RolePractitioner}, false},
		{"no roles", nil, []string{RoleStaff}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(context.WithValue(req.Context(), UserRolesKey, tt.userRoles))
			c := e.NewContext(req, httptest.NewRecorder())

			called := false
			err := RequireRole(tt.required...)(func(c echo.Context) error {
				called = true
				return nil
			})(c)

			if called != tt.allowed {
				t.Errorf("called = %v, want %v (err=%v)", called, tt.allowed, err)
			}
			if !tt.allowed {
				if httpErr, ok := err.(*echo.HTTPError); !ok || httpErr.Code != http.StatusForbidden {
					t.Errorf("expected 403, got %v", err)
				}
			}
		})
	}
}

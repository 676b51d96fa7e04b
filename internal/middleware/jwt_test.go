package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func protectedEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	g := e.Group("/v1", mw...)
	g.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"user_id": c.Get("user_id"),
			"role":    c.Get("role"),
		})
	})
	return e
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	e := protectedEcho(JWTAuth(testSecret))
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "42", "name": "Alice", "role": "MEMBER"})

	req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	e := protectedEcho(JWTAuth(testSecret))
	req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	e := protectedEcho(JWTAuth(testSecret))
	token := signToken(t, "another-secret", jwt.MapClaims{"sub": "42", "role": "MEMBER"})

	req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name string
		role string
		want int
	}{
		{"member allowed", "MEMBER", http.StatusOK},
		{"admin allowed", "ADMIN", http.StatusOK},
		{"unknown role", "GUEST", http.StatusForbidden},
		{"missing role", "", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRole := func(next echo.HandlerFunc) echo.HandlerFunc {
				return func(c echo.Context) error {
					if tc.role != "" {
						c.Set("role", tc.role)
					}
					return next(c)
				}
			}
			e := protectedEcho(setRole, RequireRole("MEMBER", "ADMIN"))
			req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestJWTAuthEndToEndWithRole(t *testing.T) {
	e := protectedEcho(JWTAuth(testSecret), RequireRole("ADMIN"))
	member := signToken(t, testSecret, jwt.MapClaims{"sub": "42", "role": "MEMBER"})

	req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+member)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member hitting admin route = %d, want 403", rec.Code)
	}
}

package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kiwari-pos/stockroom/internal/auth"
	"github.com/kiwari-pos/stockroom/internal/enum"
)

const testJWTSecret = "test-jwt-secret"

func adminClaims() *auth.Claims {
	return &auth.Claims{UserID: 1, CompanyID: 10, Role: enum.UserRoleAdmin}
}

func memberClaims() *auth.Claims {
	return &auth.Claims{UserID: 2, CompanyID: 10, Role: enum.UserRoleMember}
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return send(t, router, method, path, body, "")
}

func doAuthRequest(t *testing.T, router http.Handler, method, path string, body any, claims *auth.Claims) *httptest.ResponseRecorder {
	t.Helper()
	// Generate a real JWT so requests go through middleware.Authenticate.
	token, err := auth.GenerateToken(testJWTSecret, claims.UserID, claims.CompanyID, claims.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return send(t, router, method, path, body, token)
}

func send(t *testing.T, router http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeInto(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v; body: %s", err, rr.Body.String())
	}
}

func decodeMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	decodeInto(t, rr, &resp)
	return resp["message"]
}

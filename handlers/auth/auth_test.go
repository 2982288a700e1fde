package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"interdeck/core"
)

func setTestSecret(t *testing.T) {
	t.Helper()
	jwtSecret = []byte("test-secret")
}

func testUser() *core.User {
	return &core.User{
		Subject:   "github:12345",
		Login:     "presenter",
		AvatarURL: "https://avatars.example/u/12345",
		Name:      "Presenter",
	}
}

func TestCreateAndParseJWT(t *testing.T) {
	setTestSecret(t)

	token, err := createJWT(testUser())
	if err != nil {
		t.Fatalf("createJWT() failed: %v", err)
	}

	claims, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT() failed: %v", err)
	}
	if claims.Subject != "github:12345" {
		t.Errorf("Subject = %q, want github:12345", claims.Subject)
	}
	if claims.Login != "presenter" {
		t.Errorf("Login = %q, want presenter", claims.Login)
	}
}

func TestParseJWT_RejectsWrongSecret(t *testing.T) {
	jwtSecret = []byte("secret-a")
	token, err := createJWT(testUser())
	if err != nil {
		t.Fatalf("createJWT() failed: %v", err)
	}

	jwtSecret = []byte("secret-b")
	if _, err := ParseJWT(token); err == nil {
		t.Error("ParseJWT() accepted a token signed with another secret")
	}
}

func TestParseJWT_RejectsNonHMAC(t *testing.T) {
	setTestSecret(t)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, AppClaims{Login: "presenter"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build none-alg token: %v", err)
	}

	if _, err := ParseJWT(token); err == nil {
		t.Error("ParseJWT() accepted an unsigned token")
	}
}

func TestFinishLogin_JSONWhenHeadless(t *testing.T) {
	setTestSecret(t)
	t.Setenv("FRONTEND_URL", "")

	req := httptest.NewRequest(http.MethodGet, "/auth/callback", nil)
	rec := httptest.NewRecorder()
	finishLogin(rec, req, testUser())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	claims, err := ParseJWT(resp["token"])
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Subject != "github:12345" {
		t.Errorf("Subject = %q, want github:12345", claims.Subject)
	}
}

func TestFinishLogin_RedirectsToFrontend(t *testing.T) {
	setTestSecret(t)
	t.Setenv("FRONTEND_URL", "https://editor.example")

	req := httptest.NewRequest(http.MethodGet, "/auth/callback", nil)
	rec := httptest.NewRecorder()
	finishLogin(rec, req, testUser())

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}
	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "https://editor.example/?token=") {
		t.Errorf("Location = %q, want frontend redirect with token", location)
	}
}

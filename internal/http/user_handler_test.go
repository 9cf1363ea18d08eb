package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"noteful-api/internal/domain"
	"noteful-api/internal/repository"
	"noteful-api/internal/service"
)

const testSecret = "test-secret"

type testApp struct {
	router *gin.Engine
	repo   repository.UserRepository
	hasher *service.PasswordHasher
	tokens *service.JWTService
}

func newTestApp(t *testing.T, repo repository.UserRepository) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if repo == nil {
		repo = repository.NewMemoryUserRepository()
	}
	logger := zap.NewNop()
	hasher := service.NewPasswordHasher(bcrypt.MinCost)
	tokens := service.NewJWTService(testSecret, 7*24*time.Hour)

	r := NewRouter(
		logger,
		NewAuthHandler(logger, tokens),
		NewUserHandler(logger, service.NewUserService(logger, repo, hasher)),
		NewHealthHandler(logger, repo),
		service.NewCredentialStrategy(logger, repo, hasher),
		service.NewTokenStrategy(logger, tokens),
	)
	return &testApp{router: r, repo: repo, hasher: hasher, tokens: tokens}
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		payload, _ = json.Marshal(b)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectValidationError(t *testing.T, rec *httptest.ResponseRecorder, status int, message, location string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d (%s)", status, rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["code"] != float64(status) || body["reason"] != "ValidationError" {
		t.Fatalf("unexpected envelope %v", body)
	}
	if body["message"] != message || body["location"] != location {
		t.Fatalf("expected %q at %q, got %v", message, location, body)
	}
}

func TestUserHandlerCreateUser_Success(t *testing.T) {
	app := newTestApp(t, nil)

	rec := performRequest(app.router, http.MethodPost, "/users", map[string]string{
		"username": "exampleUser",
		"password": "examplePass",
		"fullname": "Example Example",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if len(body) != 3 {
		t.Fatalf("expected exactly id, username, fullname; got %v", body)
	}
	id, _ := body["id"].(string)
	if id == "" || body["username"] != "exampleUser" || body["fullname"] != "Example Example" {
		t.Fatalf("unexpected body %v", body)
	}
	if strings.Contains(rec.Body.String(), "$2a$") {
		t.Fatalf("response leaked password digest")
	}
	if loc := rec.Header().Get("Location"); loc != "/users/"+id {
		t.Fatalf("unexpected Location %q", loc)
	}
}

func TestUserHandlerCreateUser_APIPrefixLocation(t *testing.T) {
	app := newTestApp(t, nil)

	rec := performRequest(app.router, http.MethodPost, "/api/users", map[string]string{
		"username": "u1",
		"password": "goodpass1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	id, _ := decodeBody(t, rec)["id"].(string)
	if loc := rec.Header().Get("Location"); loc != "/api/users/"+id {
		t.Fatalf("unexpected Location %q", loc)
	}
}

func TestUserHandlerCreateUser_DuplicateSequential(t *testing.T) {
	app := newTestApp(t, nil)
	payload := map[string]string{"username": "u1", "password": "goodpass1"}

	if rec := performRequest(app.router, http.MethodPost, "/users", payload); rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	rec := performRequest(app.router, http.MethodPost, "/users", payload)
	expectValidationError(t, rec, http.StatusBadRequest, "Username already exists", "username")
}

func TestUserHandlerCreateUser_ValidationErrors(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		message  string
		location string
	}{
		{"whitespace username", `{"username":"ab ","password":"goodpass1"}`, "Cannot start or end with whitespace", "username"},
		{"short password", `{"username":"u1","password":"short"}`, "Must be at least 8 characters long", "password"},
		{"long password", `{"username":"u1","password":"` + strings.Repeat("x", 73) + `"}`, "Must be at most 72 characters long", "password"},
		{"short multibyte password", `{"username":"u1","password":"éééé"}`, "Must be at least 8 characters long", "password"},
		{"multibyte password over bcrypt limit", `{"username":"u1","password":"` + strings.Repeat("é", 40) + `"}`, "Must be at most 72 bytes long", "password"},
		{"missing password with non-string username", `{"username":7}`, "Missing 'password' in request body", "password"},
		{"non-string username", `{"username":7,"password":"goodpass1"}`, "Incorrect field type: expected string", "username"},
		{"empty body", ``, "Missing 'username' in request body", "username"},
		{"empty object", `{}`, "Missing 'username' in request body", "username"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, nil)
			rec := performRequest(app.router, http.MethodPost, "/users", tc.body)
			expectValidationError(t, rec, http.StatusUnprocessableEntity, tc.message, tc.location)
		})
	}
}

func TestUserHandlerCreateUser_InvalidJSON(t *testing.T) {
	app := newTestApp(t, nil)
	for _, body := range []string{`{"username":`, `["u1","goodpass1"]`} {
		rec := performRequest(app.router, http.MethodPost, "/users", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400 for %q, got %d", body, rec.Code)
		}
	}
}

type brokenUserRepo struct {
	*repository.MemoryUserRepository
}

func (brokenUserRepo) ExistsByUsername(context.Context, string) (bool, error) {
	return false, errors.New("connection reset by peer")
}

func TestUserHandlerCreateUser_StoreFailureIsGeneric500(t *testing.T) {
	app := newTestApp(t, brokenUserRepo{repository.NewMemoryUserRepository()})

	rec := performRequest(app.router, http.MethodPost, "/users", map[string]string{
		"username": "u1",
		"password": "goodpass1",
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection reset") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
}

func TestUserHandlerGetUser(t *testing.T) {
	app := newTestApp(t, nil)
	user, err := app.repo.Create(context.Background(), domain.User{Username: "u1", Fullname: "U One", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	token, err := app.tokens.Issue(user.Claim(), user.Username)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	get := func(path, bearer string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		rec := httptest.NewRecorder()
		app.router.ServeHTTP(rec, req)
		return rec
	}

	if rec := get("/users/"+user.ID, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec := get("/users/"+user.ID, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["id"] != user.ID || body["username"] != "u1" || body["fullname"] != "U One" {
		t.Fatalf("unexpected body %v", body)
	}

	if rec := get("/users/does-not-exist", token); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

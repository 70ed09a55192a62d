package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/db/memory"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/auth/hasher"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/auth/service"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/auth/validate"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("down") }

type failingSvc struct{ service.Service }

func (failingSvc) Register(context.Context, validate.RegisterInput) (model.Account, error) {
	return model.Account{}, errors.New("db exploded")
}

func newRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := memory.NewMemoryAccountRepo()
	jm, err := jwt.NewJWTUtil("test-secret")
	require.NoError(t, err)
	svc := service.New(repo, hasher.NewBcrypt(hasher.DefaultBcryptCost), jm, validate.New(), zap.NewNop())
	return NewRouter(cfg, NewHandler(svc, repo, zap.NewNop()), zap.NewNop())
}

func do(t *testing.T, r http.Handler, method, path string, body any, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, r http.Handler, name string) dto.AccountDTO {
	t.Helper()
	w := do(t, r, http.MethodPost, "/register", dto.RegisterDTO{
		Username: name, Email: name + "@example.com", Password: "secret", ConfirmPassword: "secret",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var out dto.AccountDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRouter_RegisterLoginList(t *testing.T) {
	r := newRouter(t, &config.Config{})

	alice := register(t, r, "alice")
	require.Equal(t, "alice", alice.Username)
	require.NotEmpty(t, alice.ID)
	register(t, r, "bob")

	w := do(t, r, http.MethodPost, "/login", dto.LoginDTO{Username: "alice", Password: "secret"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "passwordDigest")
	var sess dto.LoginResponseDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	require.NotEmpty(t, sess.Token)
	require.NotEmpty(t, sess.ExpiresAt)

	w = do(t, r, http.MethodGet, "/users", nil, map[string]string{"Authorization": "Bearer " + sess.Token})
	require.Equal(t, http.StatusOK, w.Code)
	var users dto.UsersDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users.Users, 1)
	require.Equal(t, "bob", users.Users[0].Username)
}

func TestRouter_RegisterErrors(t *testing.T) {
	r := newRouter(t, &config.Config{})
	register(t, r, "alice")

	w := do(t, r, http.MethodPost, "/register", dto.RegisterDTO{
		Username: "alice", Email: "other@example.com", Password: "x", ConfirmPassword: "x",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var out dto.ErrorDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Equal(t, "Bad Input", out.Error)
	require.Equal(t, map[string]string{"username": "username is already taken"}, out.Errors)

	w = do(t, r, http.MethodPost, "/register", dto.RegisterDTO{Password: "a", ConfirmPassword: "b"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	out = dto.ErrorDTO{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Equal(t, "passwords must match", out.Errors["confirmPassword"])
	require.Contains(t, out.Errors, "username")
	require.Contains(t, out.Errors, "email")
}

func TestRouter_BadJSON(t *testing.T) {
	r := newRouter(t, &config.Config{})

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_LoginErrors(t *testing.T) {
	r := newRouter(t, &config.Config{})
	register(t, r, "alice")

	w := do(t, r, http.MethodPost, "/login", dto.LoginDTO{Username: "ghost", Password: "x"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "user not found")

	w = do(t, r, http.MethodPost, "/login", dto.LoginDTO{Username: "alice", Password: "wrong"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "password is not correct")
}

func TestRouter_UsersUnauthenticated(t *testing.T) {
	r := newRouter(t, &config.Config{})

	for _, hdr := range []map[string]string{nil, {"Authorization": "Bearer garbage"}, {"Authorization": "Token x"}} {
		w := do(t, r, http.MethodGet, "/users", nil, hdr)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.JSONEq(t, `{"error":"Unauthenticated"}`, w.Body.String())
	}
}

func TestRouter_InternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(&config.Config{}, NewHandler(failingSvc{}, memory.NewMemoryAccountRepo(), nil), zap.NewNop())

	w := do(t, r, http.MethodPost, "/register", dto.RegisterDTO{}, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "db exploded")
}

func TestRouter_Health(t *testing.T) {
	r := newRouter(t, &config.Config{})
	w := do(t, r, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	gin.SetMode(gin.TestMode)
	down := NewRouter(&config.Config{}, NewHandler(nil, downStore{}, nil), zap.NewNop())
	w = do(t, down, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_Metrics(t *testing.T) {
	r := newRouter(t, &config.Config{})
	w := do(t, r, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRouter_CORS(t *testing.T) {
	r := newRouter(t, &config.Config{AllowedOrigins: []string{"https://chat.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", "https://chat.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, "https://chat.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dinelog/internal/auth"
	"github.com/dinelog/internal/db"
	"github.com/dinelog/internal/repository"
	"github.com/dinelog/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
)

type testEnv struct {
	api    *API
	store  *repository.Store
	tokens *auth.JWTProvider
}

func setupTestAPI(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(db.DriverSQLite, dsn, nil)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	store := repository.New(gdb, "test-app")

	objects, err := storage.NewLocalStore(t.TempDir(), "/static/uploads")
	if err != nil {
		t.Fatalf("failed to create local store: %v", err)
	}
	tokens, err := auth.NewJWTProvider("handler-test-secret", "dinelog-test", time.Hour)
	if err != nil {
		t.Fatalf("failed to create token provider: %v", err)
	}

	api := NewAPI(Options{
		Store:       store,
		Objects:     objects,
		Tokens:      tokens,
		Credentials: auth.NewCredentialService(store, tokens),
		Logger:      zaptest.NewLogger(t),
		Location:    time.UTC,
	})
	return &testEnv{api: api, store: store, tokens: tokens}
}

func (e *testEnv) token(t *testing.T, claims auth.Claims) string {
	t.Helper()
	token, _, err := e.tokens.Issue(claims)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

// newJSONContext 构造一个带 JSON 请求体的测试上下文，claims 非空时视为已通过鉴权。
func newJSONContext(t *testing.T, method, target string, body any, claims *auth.Claims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if claims != nil {
		c.Set(claimsContextKey, claims)
	}
	return c, w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
}

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimitrije/gather-api/internal/models"
	"github.com/dimitrije/gather-api/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// NewTestJWTService returns the JWT service shared by handler and API tests.
func NewTestJWTService() *services.JWTService {
	return services.NewJWTService("test-secret-key", "gather-api", 15*time.Minute)
}

func GenerateToken(t *testing.T, jwtSvc *services.JWTService, userID uuid.UUID, email string) string {
	t.Helper()
	token, err := jwtSvc.GenerateAccessToken(userID, email)
	require.NoError(t, err)
	return token
}

// Serve sends body as JSON when non-nil and authenticates with token when non-empty.
func Serve(handler http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// APIClient calls the router as a single signed-in user.
type APIClient struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func NewAPIClient(t *testing.T, handler http.Handler, jwtSvc *services.JWTService, user *models.User) *APIClient {
	t.Helper()
	return &APIClient{t: t, handler: handler, token: GenerateToken(t, jwtSvc, user.ID, user.Email)}
}

func (c *APIClient) Get(path string) *httptest.ResponseRecorder {
	return Serve(c.handler, http.MethodGet, path, nil, c.token)
}

func (c *APIClient) Post(path string, body any) *httptest.ResponseRecorder {
	return Serve(c.handler, http.MethodPost, path, body, c.token)
}

func (c *APIClient) Patch(path string, body any) *httptest.ResponseRecorder {
	return Serve(c.handler, http.MethodPatch, path, body, c.token)
}

func (c *APIClient) Delete(path string) *httptest.ResponseRecorder {
	return Serve(c.handler, http.MethodDelete, path, nil, c.token)
}

// Decode fails the test unless rec has the wanted status, then decodes its JSON body into v.
func Decode(t *testing.T, rec *httptest.ResponseRecorder, want int, v any) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body: %s", rec.Body.String())
	if v != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
	}
}

package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SAP-F-2025/form-service/internal/utils"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParser struct {
	claims *casdoorsdk.Claims
	err    error
	tokens []string
}

func (f *fakeParser) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	f.tokens = append(f.tokens, token)
	return f.claims, f.err
}

func newTestRouter(parser TokenParser) (*gin.Engine, **Identity) {
	gin.SetMode(gin.TestMode)
	var seen *Identity
	router := gin.New()
	router.Use(Middleware(parser, utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))))
	router.GET("/whoami", func(c *gin.Context) {
		seen = IdentityFrom(c)
		c.Status(http.StatusNoContent)
	})
	return router, &seen
}

func TestMiddleware_ResolvesIdentity(t *testing.T) {
	parser := &fakeParser{claims: &casdoorsdk.Claims{User: casdoorsdk.User{
		Id:          "u-1",
		Name:        "ana",
		DisplayName: "Ana Pérez",
		Email:       "ana@example.com",
	}}}
	router, seen := newTestRouter(parser)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"abc.def.ghi"}, parser.tokens)
	require.NotNil(t, *seen)
	assert.Equal(t, Identity{ID: "u-1", Name: "Ana Pérez", Email: "ana@example.com"}, **seen)
}

func TestMiddleware_NoTokenIsAnonymous(t *testing.T) {
	parser := &fakeParser{}
	router, seen := newTestRouter(parser)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Nil(t, *seen)
	assert.Empty(t, parser.tokens)
}

func TestMiddleware_RejectsBadTokens(t *testing.T) {
	tests := []struct {
		name   string
		header string
		err    error
	}{
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz"},
		{name: "empty bearer", header: "Bearer "},
		{name: "verification failure", header: "Bearer expired", err: errors.New("token is expired")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, seen := newTestRouter(&fakeParser{err: tt.err})

			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
			assert.Nil(t, *seen)
		})
	}
}

func TestIdentityFromClaims_Fallbacks(t *testing.T) {
	identity := identityFromClaims(&casdoorsdk.Claims{User: casdoorsdk.User{Name: "bob"}})
	assert.Equal(t, Identity{ID: "bob", Name: "bob"}, identity)
}

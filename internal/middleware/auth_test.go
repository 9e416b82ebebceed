package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizrecords/internal/model"
)

type stubValidator map[string]*model.AuthClaims

func (s stubValidator) ValidateToken(token string, _ string) (*model.AuthClaims, error) {
	claims, ok := s[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	auth := NewAuthMiddleware(stubValidator{
		"editor-token": {UserID: "u-1", Username: "ed", Role: RoleEditor},
		"viewer-token": {UserID: "u-2", Username: "vi", Role: RoleViewer},
	})

	var seen *model.AuthClaims
	protected := auth.RequireAuth(auth.RequireRoles(RoleEditor, RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))

	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{name: "missing token", status: http.StatusUnauthorized},
		{name: "malformed header", header: "Token editor-token", status: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "insufficient role", header: "Bearer viewer-token", status: http.StatusForbidden},
		{name: "editor via header", header: "Bearer editor-token", status: http.StatusNoContent},
		{name: "editor via query", query: "?access_token=editor-token", status: http.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/trash"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			protected.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}

	require.NotNil(t, seen)
	assert.Equal(t, "u-1", seen.UserID)
}

package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
)

// writeMethods are the HTTP methods that mutate state. Reads stay open so
// that read-only tooling (status dashboards, `orchestratorctl * list`
// without a saved token) keeps working against a cluster that requires
// auth for writes.
var writeMethods = map[string]bool{
	http.MethodPut:    true,
	http.MethodDelete: true,
	http.MethodPost:   true,
}

// Claims is the orchestrator's JWT payload: a subject plus the standard
// registered claims for expiry and issued-at.
type Claims struct {
	jwt.RegisteredClaims
	Subject string `json:"sub"`
}

// IssueToken signs a bearer token for subject, valid for ttl, using HS256.
func IssueToken(signingKey []byte, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Subject: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

// AuthMiddleware rejects PUT/POST/DELETE requests that don't carry a valid
// HS256 bearer token signed with signingKey. If signingKey is empty, auth
// is disabled entirely (local/dev mode).
func AuthMiddleware(api huma.API, signingKey []byte) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if len(signingKey) == 0 || !writeMethods[ctx.Method()] {
			next(ctx)
			return
		}

		raw := strings.TrimPrefix(ctx.Header("Authorization"), "Bearer ")
		if raw == "" {
			huma.WriteErr(api, ctx, http.StatusUnauthorized, "missing bearer token")
			return
		}

		var claims Claims
		_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return signingKey, nil
		})
		if err != nil {
			huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid bearer token", err)
			return
		}

		next(ctx)
	}
}

package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"provider-funnel/internal/common/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type userKey struct{}
type sessionKey struct{}

func userFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userKey{}).(string)
	return id
}

func sessionFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// authenticateJWT returns the subject of an HS256 token signed with secret.
func authenticateJWT(token, secret string) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", stderrors.New("bearer tokens are not accepted")
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &jwt.RegisteredClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid {
		return "", stderrors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", stderrors.New("subject claim required")
	}
	return claims.Subject, nil
}

func bearerToken(authz string) (string, bool) {
	parts := strings.Fields(authz)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// authenticate attaches the token subject as the user ID. Requests without an
// Authorization header stay anonymous; a header that does not verify is 401.
func authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if authz == "" {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := bearerToken(authz)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: errors.NewUnauthorizedError("bearer token required")})
				return
			}
			userID, err := authenticateJWT(token, secret)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: errors.NewUnauthorizedError(err.Error())})
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, userID)))
		})
	}
}

// withSession reads the session ID header, issuing a new one when absent, and
// echoes it on the response.
func withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(SessionHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(SessionHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
	})
}

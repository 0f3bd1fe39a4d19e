package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/supremetuning/tuningcalc/internal/errors"
	"github.com/supremetuning/tuningcalc/internal/logger"
)

// TokenExpiry is how long an issued admin token stays valid
const TokenExpiry = 2 * time.Hour

// adminRole is the only role the service issues or accepts
const adminRole = "admin"

// CredentialSource provides the stored admin credentials
type CredentialSource interface {
	Credentials(ctx context.Context) (username, password string, err error)
}

// Claims is the JWT payload for admin sessions
type Claims struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Auth issues and verifies admin tokens
type Auth struct {
	log         logger.Logger
	secret      []byte
	credentials CredentialSource
	now         func() time.Time
}

// New creates an Auth with the given signing secret
func New(log logger.Logger, secret string, credentials CredentialSource) *Auth {
	return &Auth{
		log:         log,
		secret:      []byte(secret),
		credentials: credentials,
		now:         time.Now,
	}
}

// Login checks the credentials and returns a signed token on success
func (a *Auth) Login(ctx context.Context, username, password string) (string, error) {
	storedUser, storedPass, err := a.credentials.Credentials(ctx)
	if err != nil {
		return "", err
	}
	if username != storedUser || password != storedPass {
		return "", errors.Unauthorized("invalid credentials")
	}

	now := a.now()
	claims := Claims{
		Role:     adminRole,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", err
	}

	a.log.Info("admin logged in", "username", username)
	return signed, nil
}

// VerifyToken parses and validates a token, returning its claims
func (a *Auth) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Forbidden("unexpected signing method")
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		return nil, errors.Forbidden("invalid or expired token")
	}
	if claims.Role != adminRole {
		return nil, errors.Forbidden("admin access required")
	}
	return claims, nil
}

type contextKey string

// claimsKey is where RequireAdmin stores the verified claims
const claimsKey contextKey = "authClaims"

// ClaimsFromContext returns the claims stored by RequireAdmin, if any
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// RequireAdmin is middleware that rejects requests without a valid admin
// bearer token. A missing token yields 401, a bad or non-admin token 403,
// so clients can distinguish "log in" from "log in again".
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authentication token")
			return
		}

		claims, err := a.VerifyToken(token)
		if err != nil {
			writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from the Authorization header
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"code":"` + code + `","error":"` + message + `"}`))
}

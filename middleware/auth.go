package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/skilloww/cs2panel/models"
)

type contextKey string

const userContextKey contextKey = "user"

// SessionCookieName carries the signed session token issued at login.
const SessionCookieName = "session"

const (
	jwtClaimUserID = "sub"
	jwtClaimRole   = "role"
)

// Authenticate validates the session token from the cookie or from an
// Authorization: Bearer header and stores its claims in the request
// context.
func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := tokenFromRequest(r)
			if tokenString == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authorize restricts a route to the named roles. It must run after
// Authenticate.
func Authorize(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := GetUserRoleFromContext(r.Context())
			if err != nil {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			for _, allowed := range roles {
				if allowed == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func GetUserIDFromContext(ctx context.Context) (string, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", errors.New("user claims not found in context")
	}

	idClaim, ok := claims[jwtClaimUserID]
	if !ok {
		return "", fmt.Errorf("missing %q claim in token", jwtClaimUserID)
	}
	id, ok := idClaim.(string)
	if !ok || id == "" {
		return "", fmt.Errorf("invalid %q claim in token", jwtClaimUserID)
	}
	return id, nil
}

func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", errors.New("user claims not found in context")
	}

	roleClaim, ok := claims[jwtClaimRole]
	if !ok {
		return "", fmt.Errorf("missing %q claim in token", jwtClaimRole)
	}
	roleStr, ok := roleClaim.(string)
	if !ok {
		return "", fmt.Errorf("invalid %q claim in token", jwtClaimRole)
	}

	role := models.UserRole(roleStr)
	switch role {
	case models.RoleUser, models.RoleAdmin:
		return role, nil
	default:
		return "", fmt.Errorf("invalid role value in claim: %q", roleStr)
	}
}

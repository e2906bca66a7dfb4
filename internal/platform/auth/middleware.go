package auth

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/docnotes/docnotes/internal/platform/httperr"
)

const (
	sessionContextKey = "auth_session"
	tokenContextKey   = "auth_token"
)

// SessionMiddleware authenticates every request with a Bearer token. Missing
// or unresolvable tokens get a 401.
func SessionMiddleware(resolver Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return httperr.Unauthenticated(c, "missing bearer token")
			}

			sess, err := resolver.Resolve(c.Request().Context(), token)
			if err != nil {
				return httperr.Unauthenticated(c, "invalid or expired token")
			}

			c.Set(sessionContextKey, sess)
			c.Set(tokenContextKey, token)
			return next(c)
		}
	}
}

// OptionalSession resolves a token when one is present but never rejects the
// request. Used by endpoints that answer differently for anonymous callers.
func OptionalSession(resolver Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := bearerToken(c); token != "" {
				if sess, err := resolver.Resolve(c.Request().Context(), token); err == nil {
					c.Set(sessionContextKey, sess)
					c.Set(tokenContextKey, token)
				}
			}
			return next(c)
		}
	}
}

// RequireRole rejects with 403 unless the session role is one of the given
// roles. Admin always passes.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := SessionFromContext(c)
			if sess == nil {
				return httperr.Unauthenticated(c, "missing bearer token")
			}
			if sess.Role != RoleAdmin && !allowed[sess.Role] {
				return httperr.Forbidden(c, "insufficient role")
			}
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// SessionFromContext returns the resolved session, or nil for anonymous
// requests.
func SessionFromContext(c echo.Context) *Session {
	sess, _ := c.Get(sessionContextKey).(*Session)
	return sess
}

// UserIDFromContext returns the authenticated user id, or uuid.Nil.
func UserIDFromContext(c echo.Context) uuid.UUID {
	if sess := SessionFromContext(c); sess != nil {
		return sess.UserID
	}
	return uuid.Nil
}

// TokenFromContext returns the raw bearer token of the current session.
func TokenFromContext(c echo.Context) string {
	token, _ := c.Get(tokenContextKey).(string)
	return token
}

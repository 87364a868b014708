// Package middleware carries the session middleware that resolves the
// access_token cookie into a request identity.
package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sehoonk/echo-blog/model"
	"github.com/sehoonk/echo-blog/token"
)

// CookieName is the session cookie carrying the signed token.
const CookieName = "access_token"

// identityKey is the echo context key the resolved identity is stored under.
const identityKey = "user"

// UserFinder is the slice of the user store the middleware needs to
// reissue a token for a still-existing user.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Session resolves the session cookie on every request.
//
// The branches are deliberate policy, not accidental fallthrough:
// a missing cookie passes through anonymously, and a cookie that fails
// verification for any reason (expired, tampered, malformed) is treated
// exactly like a missing one. Downstream handlers cannot tell a corrupted
// cookie from no cookie at all. When a valid token has less than half its
// lifetime remaining, a fresh one is issued as a side effect.
func Session(issuer *token.Issuer, users UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CookieName)
			if err != nil {
				return next(c) // no token
			}

			claims, err := issuer.Verify(cookie.Value)
			if err != nil {
				return next(c) // bad token, treated as anonymous
			}

			c.Set(identityKey, &model.Identity{
				ID:       claims.UserID,
				Username: claims.Username,
			})

			if issuer.NeedsRefresh(claims) {
				// Reissue only for users that still exist. A failed
				// lookup leaves the current cookie in place.
				user, err := users.FindByID(c.Request().Context(), claims.UserID)
				if err == nil && user != nil {
					if fresh, err := issuer.Generate(user.ID.Hex(), user.Username); err == nil {
						SetSessionCookie(c, fresh)
					}
				}
			}

			return next(c)
		}
	}
}

// IdentityFrom returns the identity attached by the session middleware,
// or nil for an anonymous request.
func IdentityFrom(c echo.Context) *model.Identity {
	identity, _ := c.Get(identityKey).(*model.Identity)
	return identity
}

// SetSessionCookie installs the token as an http-only 7-day cookie.
func SetSessionCookie(c echo.Context, tok string) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    tok,
		Path:     "/",
		MaxAge:   int(token.TTL.Seconds()),
		HttpOnly: true,
	})
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

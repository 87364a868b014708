package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sehoonk/echo-blog/middleware"
	"github.com/sehoonk/echo-blog/model"
	"github.com/sehoonk/echo-blog/store"
	"github.com/sehoonk/echo-blog/token"
)

// UserStore is the slice of the credential store the auth endpoints use.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, username, hashedPassword string) (*model.User, error)
}

// Auth holds the dependencies of the /api/auth endpoint group.
type Auth struct {
	Users  UserStore
	Tokens *token.Issuer
}

type registerRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=20"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account and logs it in right away by setting the
// session cookie. The username pre-check gives a clean 409; the unique
// index catches the check-then-insert race.
func (a *Auth) Register(c echo.Context) error {
	req := new(registerRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	existing, err := a.Users.FindByUsername(ctx, req.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		return echo.NewHTTPError(http.StatusConflict, "username already exists")
	}

	user := &model.User{Username: req.Username}
	if err := user.SetPassword(req.Password); err != nil {
		return err
	}

	created, err := a.Users.Create(ctx, user.Username, user.HashedPassword)
	if errors.Is(err, store.ErrUsernameTaken) {
		return echo.NewHTTPError(http.StatusConflict, "username already exists")
	}
	if err != nil {
		return err
	}

	if err := a.setSession(c, created); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, created)
}

// Login checks the credentials and sets the session cookie. Unknown
// username and wrong password answer identically so usernames cannot be
// enumerated.
func (a *Auth) Login(c echo.Context) error {
	req := new(loginRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	user, err := a.Users.FindByUsername(c.Request().Context(), req.Username)
	if err != nil {
		return err
	}
	if user == nil || !user.CheckPassword(req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	if err := a.setSession(c, user); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Check returns the identity attached by the session middleware. An
// anonymous request gets a 401 whose body is the (null) identity.
func (a *Auth) Check(c echo.Context) error {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return c.JSON(http.StatusUnauthorized, identity)
	}
	return c.JSON(http.StatusOK, identity)
}

// Logout clears the session cookie. Tokens are stateless, so there is
// nothing to revoke server-side.
func (a *Auth) Logout(c echo.Context) error {
	middleware.ClearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

func (a *Auth) setSession(c echo.Context, user *model.User) error {
	tok, err := a.Tokens.Generate(user.ID.Hex(), user.Username)
	if err != nil {
		return err
	}
	middleware.SetSessionCookie(c, tok)
	return nil
}

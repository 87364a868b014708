package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sehoonk/echo-blog/middleware"
	"github.com/sehoonk/echo-blog/model"
	"github.com/sehoonk/echo-blog/store"
)

// listBodyLimit is the number of characters of a post body shown in
// listings before the rest is cut off.
const listBodyLimit = 200

// PostStore is the slice of the post store the post endpoints use.
type PostStore interface {
	Create(ctx context.Context, title, body string, tags []string, author model.Author) (*model.Post, error)
	FindByID(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context, filter store.ListFilter, page int) ([]model.Post, int64, error)
	Update(ctx context.Context, id string, patch store.PostPatch) (*model.Post, error)
	Remove(ctx context.Context, id string) error
}

// Posts holds the dependencies of the /api/posts endpoint group.
type Posts struct {
	Store PostStore
}

type writePostRequest struct {
	Title string   `json:"title" validate:"required"`
	Body  string   `json:"body" validate:"required"`
	Tags  []string `json:"tags" validate:"required"`
}

type updatePostRequest struct {
	Title *string   `json:"title"`
	Body  *string   `json:"body"`
	Tags  *[]string `json:"tags"`
}

// List answers GET /api/posts?username=&tag=&page= with one page of up
// to ten posts, newest first. The total page count travels in the
// Last-Page header, and long bodies are cut to 200 characters.
func (p *Posts) List(c echo.Context) error {
	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "page must be a number")
		}
		page = parsed
	}
	if page < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "page must be >= 1")
	}

	filter := store.ListFilter{
		Username: c.QueryParam("username"),
		Tag:      c.QueryParam("tag"),
	}

	posts, total, err := p.Store.List(c.Request().Context(), filter, page)
	if err != nil {
		return err
	}

	for i := range posts {
		posts[i].Body = truncateBody(posts[i].Body)
	}

	lastPage := (total + store.PageSize - 1) / store.PageSize
	c.Response().Header().Set("Last-Page", strconv.FormatInt(lastPage, 10))
	return c.JSON(http.StatusOK, posts)
}

// Write answers POST /api/posts. Only logged-in users can write; the
// session identity becomes the post's permanent author.
func (p *Posts) Write(c echo.Context) error {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	req := new(writePostRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	authorID, err := primitive.ObjectIDFromHex(identity.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	post, err := p.Store.Create(c.Request().Context(), req.Title, req.Body, req.Tags, model.Author{
		ID:       authorID,
		Username: identity.Username,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// Read answers GET /api/posts/:id with the full post body.
func (p *Posts) Read(c echo.Context) error {
	post, err := p.resolve(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// Update answers PATCH /api/posts/:id. Only the post's author may
// change it, and only the provided fields are touched.
func (p *Posts) Update(c echo.Context) error {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	post, err := p.resolve(c)
	if err != nil {
		return err
	}
	if post.User.ID.Hex() != identity.ID {
		return echo.NewHTTPError(http.StatusForbidden)
	}

	req := new(updatePostRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := p.Store.Update(c.Request().Context(), c.Param("id"), store.PostPatch{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		return err
	}
	if updated == nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	return c.JSON(http.StatusOK, updated)
}

// Remove answers DELETE /api/posts/:id. The delete stays open to any
// caller and answers 204 whether or not the post existed.
func (p *Posts) Remove(c echo.Context) error {
	err := p.Store.Remove(c.Request().Context(), c.Param("id"))
	if errors.Is(err, store.ErrInvalidID) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// resolve loads the :id post, mapping a malformed id to 400 and a
// missing post to 404.
func (p *Posts) resolve(c echo.Context) (*model.Post, error) {
	post, err := p.Store.FindByID(c.Request().Context(), c.Param("id"))
	if errors.Is(err, store.ErrInvalidID) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, echo.NewHTTPError(http.StatusNotFound)
	}
	return post, nil
}

func truncateBody(body string) string {
	runes := []rune(body)
	if len(runes) < listBodyLimit {
		return body
	}
	return string(runes[:listBodyLimit]) + "..."
}

package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authmw "github.com/Skotchmaster/library/internal/middleware/auth"
	"github.com/Skotchmaster/library/internal/tokens"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	// SearchHandler is nil when no search backend is configured.
	SearchHandler *SearchHTTP
	Bearer        *authmw.Bearer
	Ready         func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	if e.Validator == nil {
		e.Validator = NewValidator()
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/signup", d.AuthHandler.SignUp)
	e.POST("/signin", d.AuthHandler.SignIn)

	anyToken := d.Bearer.Require("")
	canRefresh := d.Bearer.Require(tokens.AbilityRefresh)
	canWrite := d.Bearer.Require(tokens.AbilityCatalogWrite)

	e.GET("/profile", d.AuthHandler.Profile, anyToken)
	e.POST("/signout", d.AuthHandler.SignOut, anyToken)
	e.POST("/refresh", d.AuthHandler.Refresh, canRefresh)

	authors := e.Group("/authors")
	authors.GET("", d.CatalogHandler.ListAuthors)
	authors.GET("/:id", d.CatalogHandler.GetAuthor)
	authors.GET("/:id/books", d.CatalogHandler.AuthorBooks)
	authors.POST("", d.CatalogHandler.CreateAuthor, canWrite)
	authors.PUT("/:id", d.CatalogHandler.UpdateAuthor, canWrite)
	authors.PATCH("/:id", d.CatalogHandler.PatchAuthor, canWrite)
	authors.DELETE("/:id", d.CatalogHandler.DeleteAuthor, canWrite)

	books := e.Group("/books")
	books.GET("", d.CatalogHandler.ListBooks)
	books.GET("/:id", d.CatalogHandler.GetBook)
	books.POST("", d.CatalogHandler.CreateBook, canWrite)
	books.PUT("/:id", d.CatalogHandler.UpdateBook, canWrite)
	books.PATCH("/:id", d.CatalogHandler.PatchBook, canWrite)
	books.DELETE("/:id", d.CatalogHandler.DeleteBook, canWrite)

	if d.SearchHandler != nil {
		e.GET("/search/books", d.SearchHandler.SearchBooks)
	}
}

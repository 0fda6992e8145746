package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/library/internal/logging"
	"github.com/Skotchmaster/library/internal/search"
	"github.com/Skotchmaster/library/internal/util"
)

type BookSearcher interface {
	SearchBooks(ctx context.Context, query string, from, size int) (int64, []search.BookDocument, error)
}

type SearchHTTP struct {
	Index BookSearcher
}

func (h *SearchHTTP) SearchBooks(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search.books")

	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		l.Warn("search_books_error", "status", http.StatusUnprocessableEntity, "reason", "empty query")
		return echo.NewHTTPError(http.StatusUnprocessableEntity, echo.Map{
			"message": "The given data was invalid.",
			"errors":  map[string][]string{"q": {"The q field is required."}},
		})
	}

	page, perPage := util.Normalize(
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("per_page"), util.DefaultPerPage),
	)
	from, limit := util.Calculate(page, perPage)

	total, docs, err := h.Index.SearchBooks(ctx, q, from, limit)
	if err != nil {
		l.Error("search_books_error", "status", http.StatusServiceUnavailable, "reason", "search backend failed", "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is unavailable")
	}
	if docs == nil {
		docs = []search.BookDocument{}
	}

	return c.JSON(http.StatusOK, pageResponse[search.BookDocument]{Data: docs, Meta: util.Meta(page, perPage, total)})
}

package httpserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/library/internal/service"
	"github.com/Skotchmaster/library/internal/transport"
	"github.com/Skotchmaster/library/internal/util"
)

func bindAndValidate(c echo.Context, l *slog.Logger, event string, req any) error {
	if err := c.Bind(req); err != nil {
		l.Warn(event, "status", http.StatusBadRequest, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		l.Warn(event, "status", http.StatusUnprocessableEntity, "reason", "validation failed", "error", err)
		return validationError(err)
	}
	return nil
}

// parseID reads a positive numeric :id; anything else is reported as missing.
func parseID(c echo.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func listParams(c echo.Context) service.ListParams {
	return service.ListParams{
		Page:      util.ParseIntDefault(c.QueryParam("page"), 1),
		PerPage:   util.ParseIntDefault(c.QueryParam("per_page"), util.DefaultPerPage),
		Q:         c.QueryParam("q"),
		Sort:      c.QueryParam("sort"),
		Direction: c.QueryParam("direction"),
	}
}

// bookFilters ignores filters whose values do not parse.
func bookFilters(c echo.Context) service.BookFilters {
	var f service.BookFilters
	if n, err := strconv.ParseUint(strings.TrimSpace(c.QueryParam("author_id")), 10, 64); err == nil {
		id := uint(n)
		f.AuthorID = &id
	}
	if b, err := strconv.ParseBool(strings.TrimSpace(c.QueryParam("disponivel"))); err == nil {
		f.Disponivel = &b
	}
	if n, err := strconv.Atoi(strings.TrimSpace(c.QueryParam("ano_de"))); err == nil {
		f.AnoDe = &n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(c.QueryParam("ano_ate"))); err == nil {
		f.AnoAte = &n
	}
	return f
}

type pageResponse[T any] struct {
	Data []T                `json:"data"`
	Meta transport.PageMeta `json:"meta"`
}

func pageJSON[T any](c echo.Context, p *service.Page[T]) error {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return c.JSON(http.StatusOK, pageResponse[T]{Data: items, Meta: p.Meta})
}

type dataResponse struct {
	Data any `json:"data"`
}

package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/library/internal/logging"
	"github.com/Skotchmaster/library/internal/service"
	"github.com/Skotchmaster/library/internal/transport"
)

const (
	msgAuthorNotFound = "author not found"
	msgBookNotFound   = "book not found"
	msgAuthorHasBooks = "Cannot delete an author that has associated books."
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

// catalogError maps service errors onto responses, logging under event.
func catalogError(l *slog.Logger, event string, err error, notFound string) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", http.StatusNotFound, "reason", notFound)
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	case errors.Is(err, service.ErrHasBooks):
		l.Warn(event, "status", http.StatusConflict, "reason", "author has books")
		return echo.NewHTTPError(http.StatusConflict, msgAuthorHasBooks)
	case errors.Is(err, service.ErrDuplicateTitle):
		l.Warn(event, "status", http.StatusConflict, "reason", "duplicate title")
		return echo.NewHTTPError(http.StatusConflict, echo.Map{
			"message": "This author already has a book with this title.",
			"errors":  map[string][]string{"titulo": {"The titulo has already been taken for this author."}},
		})
	case errors.Is(err, service.ErrUnknownAuthor):
		l.Warn(event, "status", http.StatusUnprocessableEntity, "reason", "unknown author")
		return echo.NewHTTPError(http.StatusUnprocessableEntity, echo.Map{
			"message": "The given data was invalid.",
			"errors":  map[string][]string{"author_id": {"The selected author_id is invalid."}},
		})
	}
	l.Error(event, "status", http.StatusInternalServerError, "reason", "catalog failure", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

func (h *CatalogHTTP) ListAuthors(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_authors")

	page, err := h.Svc.ListAuthors(ctx, listParams(c))
	if err != nil {
		return catalogError(l, "list_authors_error", err, msgAuthorNotFound)
	}
	return pageJSON(c, page)
}

func (h *CatalogHTTP) GetAuthor(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_author")

	id, ok := parseID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, msgAuthorNotFound)
	}
	a, err := h.Svc.GetAuthor(ctx, id)
	if err != nil {
		return catalogError(l, "get_author_error", err, msgAuthorNotFound)
	}
	return c.JSON(http.StatusOK, dataResponse{Data: a})
}

func (h *CatalogHTTP) CreateAuthor(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_author")

	var req transport.AuthorRequest
	if err := bindAndValidate(c, l, "create_author_error", &req); err != nil {
		return err
	}

	a, err := h.Svc.CreateAuthor(ctx, req)
	if err != nil {
		return catalogError(l, "create_author_error", err, msgAuthorNotFound)
	}

	l.Info("create_author_success", "author_id", a.ID)
	return c.JSON(http.StatusCreated, dataResponse{Data: a})
}

// UpdateAuthor serves PUT, where every field is required.
func (h *CatalogHTTP) UpdateAuthor(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_author")

	id, ok := parseID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, msgAuthorNotFound)
	}
	var req transport.AuthorRequest
	if err := bindAndValidate(c, l, "update_author_error", &req); err != nil {
		return err
	}

	a, err := h.Svc.UpdateAuthor(ctx, id, transport.PatchAuthorRequest{Nome: &req.Nome, Biografia: req.Biografia})
	if err != nil {
		return catalogError(l, "update_author_error", err, msgAuthorNotFound)
	}

	l.Info("update_author_success", "author_id", a.ID)
	return c.JSON(http.StatusOK, dataResponse{Data: a})
}

func (h *CatalogHTTP) PatchAuthor(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.patch_author")

	id, ok := parseID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, msgAuthorNotFound)
	}
	var req transport.PatchAuthorRequest
	if err := bindAndValidate(c, l, "patch_author_error", &req); err != nil {
		return err
	}

	a, err := h.Svc.UpdateAuthor(ctx, id, req)
	if err != nil {
		return catalogError(l, "patch_author_error", err, msgAuthorNotFound)
	}

	l.Info("patch_author_success", "author_id", a.ID)
	return c.JSON(http.StatusOK, dataResponse{Data: a})
}

func (h *CatalogHTTP) DeleteAuthor(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_author")

	id, ok := parseID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, msgAuthorNotFound)
	}
	if err := h.Svc.DeleteAuthor(ctx, id); err != nil {
		return catalogError(l, "delete_author_error", err, msgAuthorNotFound)
	}

	l.Info("delete_author_success", "author_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) AuthorBooks(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.author_books")

	id, ok := parseID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, msgAuthorNotFound)
	}
	page, err := h.Svc.AuthorBooks(ctx, id, listParams(c))
	if err != nil {
		return catalogError(l, "author_books_error", err, msgAuthorNotFound)
	}
	return pageJSON(c, page)
}

func (h *CatalogHTTP) ListBooks(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_books")

	page, err := h.Svc.ListBooks(ctx, listParams(c), bookFilters(c))
	if err != nil {
		return catalogError(l, "list_books_error", err, msgBookNotFound)
	}
	return pageJSON(c, page)
}

func (h *CatalogHTTP) GetBook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_book")

	id, ok := parseID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, msgBookNotFound)
	}
	b, err := h.Svc.GetBook(ctx, id)
	if err != nil {
		return catalogError(l, "get_book_error", err, msgBookNotFound)
	}
	return c.JSON(http.StatusOK, dataResponse{Data: b})
}

func (h *CatalogHTTP) CreateBook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_book")

	var req transport.BookRequest
	if err := bindAndValidate(c, l, "create_book_error", &req); err != nil {
		return err
	}

	b, err := h.Svc.CreateBook(ctx, req)
	if err != nil {
		return catalogError(l, "create_book_error", err, msgBookNotFound)
	}

	l.Info("create_book_success", "book_id", b.ID)
	return c.JSON(http.StatusCreated, dataResponse{Data: b})
}

// UpdateBook serves PUT, where every required field must be present.
func (h *CatalogHTTP) UpdateBook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_book")

	id, ok := parseID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, msgBookNotFound)
	}
	var req transport.BookRequest
	if err := bindAndValidate(c, l, "update_book_error", &req); err != nil {
		return err
	}

	b, err := h.Svc.UpdateBook(ctx, id, transport.PatchBookRequest{
		Titulo:        &req.Titulo,
		Genero:        &req.Genero,
		AnoPublicacao: &req.AnoPublicacao,
		Disponivel:    req.Disponivel,
		AuthorID:      &req.AuthorID,
	})
	if err != nil {
		return catalogError(l, "update_book_error", err, msgBookNotFound)
	}

	l.Info("update_book_success", "book_id", b.ID)
	return c.JSON(http.StatusOK, dataResponse{Data: b})
}

func (h *CatalogHTTP) PatchBook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.patch_book")

	id, ok := parseID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, msgBookNotFound)
	}
	var req transport.PatchBookRequest
	if err := bindAndValidate(c, l, "patch_book_error", &req); err != nil {
		return err
	}

	b, err := h.Svc.UpdateBook(ctx, id, req)
	if err != nil {
		return catalogError(l, "patch_book_error", err, msgBookNotFound)
	}

	l.Info("patch_book_success", "book_id", b.ID)
	return c.JSON(http.StatusOK, dataResponse{Data: b})
}

func (h *CatalogHTTP) DeleteBook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_book")

	id, ok := parseID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, msgBookNotFound)
	}
	if err := h.Svc.DeleteBook(ctx, id); err != nil {
		return catalogError(l, "delete_book_error", err, msgBookNotFound)
	}

	l.Info("delete_book_success", "book_id", id)
	return c.NoContent(http.StatusNoContent)
}

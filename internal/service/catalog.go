package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Skotchmaster/library/internal/events"
	"github.com/Skotchmaster/library/internal/logging"
	"github.com/Skotchmaster/library/internal/models"
	"github.com/Skotchmaster/library/internal/repo"
	"github.com/Skotchmaster/library/internal/transport"
	"github.com/Skotchmaster/library/internal/util"
)

var (
	authorSortColumns = []string{"id", "nome", "created_at", "updated_at"}
	bookSortColumns   = []string{"id", "titulo", "genero", "ano_publicacao", "disponivel", "author_id", "created_at", "updated_at"}
)

const (
	defaultAuthorSort = "nome"
	defaultBookSort   = "titulo"
)

type CatalogRepo interface {
	ListAuthors(ctx context.Context, q transport.AuthorQuery) (int64, []models.Author, error)
	GetAuthor(ctx context.Context, id uint) (*models.Author, error)
	CreateAuthor(ctx context.Context, a *models.Author) error
	SaveAuthor(ctx context.Context, a *models.Author) error
	DeleteAuthor(ctx context.Context, id uint) error

	ListBooks(ctx context.Context, q transport.BookQuery) (int64, []models.Book, error)
	GetBook(ctx context.Context, id uint) (*models.Book, error)
	CreateBook(ctx context.Context, b *models.Book) error
	SaveBook(ctx context.Context, b *models.Book) error
	DeleteBook(ctx context.Context, id uint) error
	BookTitleTaken(ctx context.Context, authorID uint, titulo string, exceptID uint) (bool, error)
}

// Indexer mirrors book writes into the search index.
type Indexer interface {
	IndexBook(ctx context.Context, b models.Book) error
	DeleteBook(ctx context.Context, id uint) error
}

// ListParams are raw listing options; invalid values are normalized, never rejected.
type ListParams struct {
	Page      int
	PerPage   int
	Q         string
	Sort      string
	Direction string
}

type BookFilters struct {
	AuthorID   *uint
	Disponivel *bool
	AnoDe      *int
	AnoAte     *int
}

type Page[T any] struct {
	Items []T
	Meta  transport.PageMeta
}

type CatalogService struct {
	Repo   CatalogRepo
	Events events.Publisher
	Index  Indexer
}

type catalogPayload struct {
	ID       uint   `json:"id"`
	Nome     string `json:"nome,omitempty"`
	Titulo   string `json:"titulo,omitempty"`
	AuthorID uint   `json:"author_id,omitempty"`
}

func idKey(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func (s *CatalogService) logger(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx).With("svc", "catalog")
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repo.ErrConflict):
		return ErrConflict
	}
	return err
}

func (s *CatalogService) ListAuthors(ctx context.Context, p ListParams) (*Page[models.Author], error) {
	page, perPage := util.Normalize(p.Page, p.PerPage)
	from, limit := util.Calculate(page, perPage)

	total, items, err := s.Repo.ListAuthors(ctx, transport.AuthorQuery{
		Q:      strings.TrimSpace(p.Q),
		Sort:   util.SortColumn(p.Sort, authorSortColumns, defaultAuthorSort),
		Desc:   util.Direction(p.Direction),
		Offset: from,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	return &Page[models.Author]{Items: items, Meta: util.Meta(page, perPage, total)}, nil
}

func (s *CatalogService) GetAuthor(ctx context.Context, id uint) (*models.Author, error) {
	a, err := s.Repo.GetAuthor(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return a, nil
}

func (s *CatalogService) CreateAuthor(ctx context.Context, req transport.AuthorRequest) (*models.Author, error) {
	a := &models.Author{Nome: strings.TrimSpace(req.Nome), Biografia: req.Biografia}
	if err := s.Repo.CreateAuthor(ctx, a); err != nil {
		return nil, fmt.Errorf("create author: %w", err)
	}

	s.logger(ctx).Info("author_created", "author_id", a.ID)
	publish(ctx, s.Events, events.TopicCatalog, idKey(a.ID),
		events.New(events.AuthorCreated, catalogPayload{ID: a.ID, Nome: a.Nome}))
	return a, nil
}

func (s *CatalogService) UpdateAuthor(ctx context.Context, id uint, req transport.PatchAuthorRequest) (*models.Author, error) {
	a, err := s.Repo.GetAuthor(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if req.Nome != nil {
		a.Nome = strings.TrimSpace(*req.Nome)
	}
	if req.Biografia != nil {
		a.Biografia = req.Biografia
	}
	if err := s.Repo.SaveAuthor(ctx, a); err != nil {
		return nil, fmt.Errorf("update author: %w", err)
	}

	s.logger(ctx).Info("author_updated", "author_id", a.ID)
	publish(ctx, s.Events, events.TopicCatalog, idKey(a.ID),
		events.New(events.AuthorUpdated, catalogPayload{ID: a.ID, Nome: a.Nome}))
	return a, nil
}

// DeleteAuthor refuses with ErrHasBooks while any book references the author.
func (s *CatalogService) DeleteAuthor(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteAuthor(ctx, id); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			s.logger(ctx).Info("author_delete_rejected", "author_id", id, "reason", "has_books")
			return ErrHasBooks
		}
		return mapRepoErr(err)
	}

	s.logger(ctx).Info("author_deleted", "author_id", id)
	publish(ctx, s.Events, events.TopicCatalog, idKey(id),
		events.New(events.AuthorDeleted, catalogPayload{ID: id}))
	return nil
}

// AuthorBooks lists one author's books; ErrNotFound when the author is unknown.
func (s *CatalogService) AuthorBooks(ctx context.Context, authorID uint, p ListParams) (*Page[models.Book], error) {
	if _, err := s.Repo.GetAuthor(ctx, authorID); err != nil {
		return nil, mapRepoErr(err)
	}
	return s.ListBooks(ctx, p, BookFilters{AuthorID: &authorID})
}

func (s *CatalogService) ListBooks(ctx context.Context, p ListParams, f BookFilters) (*Page[models.Book], error) {
	page, perPage := util.Normalize(p.Page, p.PerPage)
	from, limit := util.Calculate(page, perPage)

	total, items, err := s.Repo.ListBooks(ctx, transport.BookQuery{
		Q:          strings.TrimSpace(p.Q),
		AuthorID:   f.AuthorID,
		Disponivel: f.Disponivel,
		AnoDe:      f.AnoDe,
		AnoAte:     f.AnoAte,
		Sort:       util.SortColumn(p.Sort, bookSortColumns, defaultBookSort),
		Desc:       util.Direction(p.Direction),
		Offset:     from,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return &Page[models.Book]{Items: items, Meta: util.Meta(page, perPage, total)}, nil
}

func (s *CatalogService) GetBook(ctx context.Context, id uint) (*models.Book, error) {
	b, err := s.Repo.GetBook(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return b, nil
}

func (s *CatalogService) CreateBook(ctx context.Context, req transport.BookRequest) (*models.Book, error) {
	b := &models.Book{
		Titulo:        strings.TrimSpace(req.Titulo),
		Genero:        strings.TrimSpace(req.Genero),
		AnoPublicacao: req.AnoPublicacao,
		Disponivel:    true,
		AuthorID:      req.AuthorID,
	}
	if req.Disponivel != nil {
		b.Disponivel = *req.Disponivel
	}

	if err := s.checkBook(ctx, b); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateBook(ctx, b); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	created, err := s.Repo.GetBook(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("reload book: %w", err)
	}

	s.logger(ctx).Info("book_created", "book_id", created.ID, "author_id", created.AuthorID)
	s.indexBook(ctx, created)
	publish(ctx, s.Events, events.TopicCatalog, idKey(created.ID),
		events.New(events.BookCreated, catalogPayload{ID: created.ID, Titulo: created.Titulo, AuthorID: created.AuthorID}))
	return created, nil
}

func (s *CatalogService) UpdateBook(ctx context.Context, id uint, req transport.PatchBookRequest) (*models.Book, error) {
	b, err := s.Repo.GetBook(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	if req.Titulo != nil {
		b.Titulo = strings.TrimSpace(*req.Titulo)
	}
	if req.Genero != nil {
		b.Genero = strings.TrimSpace(*req.Genero)
	}
	if req.AnoPublicacao != nil {
		b.AnoPublicacao = *req.AnoPublicacao
	}
	if req.Disponivel != nil {
		b.Disponivel = *req.Disponivel
	}
	if req.AuthorID != nil {
		b.AuthorID = *req.AuthorID
	}
	b.Author = nil

	if err := s.checkBook(ctx, b); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveBook(ctx, b); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	updated, err := s.Repo.GetBook(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("reload book: %w", err)
	}

	s.logger(ctx).Info("book_updated", "book_id", updated.ID)
	s.indexBook(ctx, updated)
	publish(ctx, s.Events, events.TopicCatalog, idKey(updated.ID),
		events.New(events.BookUpdated, catalogPayload{ID: updated.ID, Titulo: updated.Titulo, AuthorID: updated.AuthorID}))
	return updated, nil
}

func (s *CatalogService) DeleteBook(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteBook(ctx, id); err != nil {
		return mapRepoErr(err)
	}

	s.logger(ctx).Info("book_deleted", "book_id", id)
	if s.Index != nil {
		if err := s.Index.DeleteBook(ctx, id); err != nil {
			s.logger(ctx).Warn("search_unindex_failed", "book_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicCatalog, idKey(id),
		events.New(events.BookDeleted, catalogPayload{ID: id}))
	return nil
}

// checkBook verifies the referenced author exists and that the title is
// free for that author, ignoring b itself.
func (s *CatalogService) checkBook(ctx context.Context, b *models.Book) error {
	if _, err := s.Repo.GetAuthor(ctx, b.AuthorID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUnknownAuthor
		}
		return fmt.Errorf("find author: %w", err)
	}

	taken, err := s.Repo.BookTitleTaken(ctx, b.AuthorID, b.Titulo, b.ID)
	if err != nil {
		return fmt.Errorf("check title: %w", err)
	}
	if taken {
		return ErrDuplicateTitle
	}
	return nil
}

func (s *CatalogService) indexBook(ctx context.Context, b *models.Book) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexBook(ctx, *b); err != nil {
		s.logger(ctx).Warn("search_index_failed", "book_id", b.ID, "error", err)
	}
}

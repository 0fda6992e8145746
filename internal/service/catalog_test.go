package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/library/internal/events"
	"github.com/Skotchmaster/library/internal/transport"
)

type catalogFixture struct {
	svc   *CatalogService
	pub   *recordingPublisher
	index *fakeIndexer
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	f := &catalogFixture{pub: &recordingPublisher{}, index: &fakeIndexer{}}
	f.svc = &CatalogService{Repo: newRepo(t), Events: f.pub, Index: f.index}
	return f
}

func ptr[T any](v T) *T { return &v }

func TestCatalog_AuthorsCRUD(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	a, err := f.svc.CreateAuthor(ctx, transport.AuthorRequest{Nome: "  Machado de Assis ", Biografia: ptr("Romancista")})
	require.NoError(t, err)
	assert.Equal(t, "Machado de Assis", a.Nome)

	got, err := f.svc.GetAuthor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Romancista", *got.Biografia)

	updated, err := f.svc.UpdateAuthor(ctx, a.ID, transport.PatchAuthorRequest{Nome: ptr("Joaquim Maria")})
	require.NoError(t, err)
	assert.Equal(t, "Joaquim Maria", updated.Nome)
	assert.Equal(t, "Romancista", *updated.Biografia)

	_, err = f.svc.UpdateAuthor(ctx, 999, transport.PatchAuthorRequest{Nome: ptr("x")})
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.svc.DeleteAuthor(ctx, a.ID))
	_, err = f.svc.GetAuthor(ctx, a.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, f.svc.DeleteAuthor(ctx, a.ID), ErrNotFound)

	assert.Equal(t, []string{events.AuthorCreated, events.AuthorUpdated, events.AuthorDeleted}, f.pub.types())
}

func TestCatalog_DeleteAuthorWithBooks(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	a, err := f.svc.CreateAuthor(ctx, transport.AuthorRequest{Nome: "Clarice Lispector"})
	require.NoError(t, err)
	_, err = f.svc.CreateBook(ctx, transport.BookRequest{Titulo: "A Hora da Estrela", AnoPublicacao: 1977, AuthorID: a.ID})
	require.NoError(t, err)

	err = f.svc.DeleteAuthor(ctx, a.ID)
	require.ErrorIs(t, err, ErrHasBooks)
	require.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.GetAuthor(ctx, a.ID)
	require.NoError(t, err)
}

func TestCatalog_CreateBook(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	a, err := f.svc.CreateAuthor(ctx, transport.AuthorRequest{Nome: "Machado de Assis"})
	require.NoError(t, err)

	b, err := f.svc.CreateBook(ctx, transport.BookRequest{Titulo: "Dom Casmurro", Genero: "Romance", AnoPublicacao: 1899, AuthorID: a.ID})
	require.NoError(t, err)
	assert.True(t, b.Disponivel)
	require.NotNil(t, b.Author)
	assert.Equal(t, "Machado de Assis", b.Author.Nome)

	require.Len(t, f.index.indexed, 1)
	assert.Equal(t, b.ID, f.index.indexed[0].ID)

	off, err := f.svc.CreateBook(ctx, transport.BookRequest{Titulo: "Esau e Jaco", AnoPublicacao: 1904, AuthorID: a.ID, Disponivel: ptr(false)})
	require.NoError(t, err)
	assert.False(t, off.Disponivel)

	_, err = f.svc.CreateBook(ctx, transport.BookRequest{Titulo: "Dom Casmurro", AnoPublicacao: 1900, AuthorID: a.ID})
	require.ErrorIs(t, err, ErrDuplicateTitle)

	_, err = f.svc.CreateBook(ctx, transport.BookRequest{Titulo: "Orfao", AnoPublicacao: 1900, AuthorID: 999})
	require.ErrorIs(t, err, ErrUnknownAuthor)
	require.ErrorIs(t, err, ErrValidation)

	other, err := f.svc.CreateAuthor(ctx, transport.AuthorRequest{Nome: "Outro"})
	require.NoError(t, err)
	_, err = f.svc.CreateBook(ctx, transport.BookRequest{Titulo: "Dom Casmurro", AnoPublicacao: 2001, AuthorID: other.ID})
	require.NoError(t, err)
}

func TestCatalog_UpdateBook(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	machado, err := f.svc.CreateAuthor(ctx, transport.AuthorRequest{Nome: "Machado de Assis"})
	require.NoError(t, err)
	clarice, err := f.svc.CreateAuthor(ctx, transport.AuthorRequest{Nome: "Clarice Lispector"})
	require.NoError(t, err)

	dom, err := f.svc.CreateBook(ctx, transport.BookRequest{Titulo: "Dom Casmurro", AnoPublicacao: 1899, AuthorID: machado.ID})
	require.NoError(t, err)
	quincas, err := f.svc.CreateBook(ctx, transport.BookRequest{Titulo: "Quincas Borba", AnoPublicacao: 1891, AuthorID: machado.ID})
	require.NoError(t, err)

	same, err := f.svc.UpdateBook(ctx, dom.ID, transport.PatchBookRequest{Titulo: ptr("Dom Casmurro"), Disponivel: ptr(false)})
	require.NoError(t, err)
	assert.False(t, same.Disponivel)

	_, err = f.svc.UpdateBook(ctx, quincas.ID, transport.PatchBookRequest{Titulo: ptr("Dom Casmurro")})
	require.ErrorIs(t, err, ErrDuplicateTitle)

	_, err = f.svc.UpdateBook(ctx, quincas.ID, transport.PatchBookRequest{AuthorID: ptr(uint(999))})
	require.ErrorIs(t, err, ErrUnknownAuthor)

	moved, err := f.svc.UpdateBook(ctx, quincas.ID, transport.PatchBookRequest{AuthorID: &clarice.ID})
	require.NoError(t, err)
	assert.Equal(t, clarice.ID, moved.AuthorID)
	assert.Equal(t, "Clarice Lispector", moved.Author.Nome)

	_, err = f.svc.UpdateBook(ctx, 999, transport.PatchBookRequest{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_DeleteBook(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	a, err := f.svc.CreateAuthor(ctx, transport.AuthorRequest{Nome: "Machado de Assis"})
	require.NoError(t, err)
	b, err := f.svc.CreateBook(ctx, transport.BookRequest{Titulo: "Dom Casmurro", AnoPublicacao: 1899, AuthorID: a.ID})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteBook(ctx, b.ID))
	assert.Equal(t, []uint{b.ID}, f.index.deleted)
	require.ErrorIs(t, f.svc.DeleteBook(ctx, b.ID), ErrNotFound)
	assert.Contains(t, f.pub.types(), events.BookDeleted)
}

func TestCatalog_IndexFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	f.index.err = errors.New("cluster red")

	a, err := f.svc.CreateAuthor(ctx, transport.AuthorRequest{Nome: "Machado de Assis"})
	require.NoError(t, err)
	b, err := f.svc.CreateBook(ctx, transport.BookRequest{Titulo: "Dom Casmurro", AnoPublicacao: 1899, AuthorID: a.ID})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteBook(ctx, b.ID))
}

func TestCatalog_ListNormalizesParams(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	a, err := f.svc.CreateAuthor(ctx, transport.AuthorRequest{Nome: "Machado de Assis"})
	require.NoError(t, err)
	for _, title := range []string{"C", "A", "B"} {
		_, err := f.svc.CreateBook(ctx, transport.BookRequest{Titulo: title, AnoPublicacao: 1900, AuthorID: a.ID})
		require.NoError(t, err)
	}

	page, err := f.svc.ListBooks(ctx, ListParams{Page: -1, PerPage: 500, Sort: "password_hash", Direction: "sideways"}, BookFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Meta.Page)
	assert.Equal(t, 100, page.Meta.PerPage)
	assert.Equal(t, int64(3), page.Meta.Total)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "A", page.Items[0].Titulo)

	page, err = f.svc.ListBooks(ctx, ListParams{Page: 2, PerPage: 2, Direction: "desc"}, BookFilters{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "A", page.Items[0].Titulo)
	assert.True(t, page.Meta.HasPrev)
	assert.False(t, page.Meta.HasNext)
	assert.Equal(t, int64(2), page.Meta.TotalPages)

	authors, err := f.svc.ListAuthors(ctx, ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 15, authors.Meta.PerPage)
	assert.Len(t, authors.Items, 1)
}

func TestCatalog_AuthorBooks(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	a, err := f.svc.CreateAuthor(ctx, transport.AuthorRequest{Nome: "Machado de Assis"})
	require.NoError(t, err)
	b, err := f.svc.CreateAuthor(ctx, transport.AuthorRequest{Nome: "Clarice Lispector"})
	require.NoError(t, err)
	_, err = f.svc.CreateBook(ctx, transport.BookRequest{Titulo: "Dom Casmurro", AnoPublicacao: 1899, AuthorID: a.ID})
	require.NoError(t, err)
	_, err = f.svc.CreateBook(ctx, transport.BookRequest{Titulo: "Perto do Coracao Selvagem", AnoPublicacao: 1943, AuthorID: b.ID})
	require.NoError(t, err)

	page, err := f.svc.AuthorBooks(ctx, a.ID, ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Dom Casmurro", page.Items[0].Titulo)

	_, err = f.svc.AuthorBooks(ctx, 999, ListParams{})
	require.ErrorIs(t, err, ErrNotFound)
}

// Package search keeps an Elasticsearch index of books for free-text lookup.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/library/internal/models"
)

// BookDocument is the indexed form of a book, with the author's name inlined.
type BookDocument struct {
	ID            uint   `json:"id"`
	Titulo        string `json:"titulo"`
	Genero        string `json:"genero"`
	AnoPublicacao int    `json:"ano_publicacao"`
	Disponivel    bool   `json:"disponivel"`
	AuthorID      uint   `json:"author_id"`
	Author        string `json:"author"`
}

func DocumentFromBook(b models.Book) BookDocument {
	doc := BookDocument{
		ID:            b.ID,
		Titulo:        b.Titulo,
		Genero:        b.Genero,
		AnoPublicacao: b.AnoPublicacao,
		Disponivel:    b.Disponivel,
		AuthorID:      b.AuthorID,
	}
	if b.Author != nil {
		doc.Author = b.Author.Nome
	}
	return doc
}

type Index struct {
	es    *elasticsearch.Client
	index string
}

func NewIndex(es *elasticsearch.Client, index string) *Index {
	return &Index{es: es, index: index}
}

// NewClient connects to addr and checks the cluster answers Info.
func NewClient(addr, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{addr},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("info", res)
	}
	return client, nil
}

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("elasticsearch %s: %s: %s", op, res.Status(), bytes.TrimSpace(body))
}

func (i *Index) IndexBook(ctx context.Context, b models.Book) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(DocumentFromBook(b)); err != nil {
		return fmt.Errorf("encode book: %w", err)
	}

	res, err := i.es.Index(i.index, &buf,
		i.es.Index.WithContext(ctx),
		i.es.Index.WithDocumentID(strconv.FormatUint(uint64(b.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("index book: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res)
	}
	return nil
}

// DeleteBook removes the document; a missing document is not an error.
func (i *Index) DeleteBook(ctx context.Context, id uint) error {
	res, err := i.es.Delete(i.index, strconv.FormatUint(uint64(id), 10),
		i.es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return responseError("delete", res)
	}
	return nil
}

func (i *Index) SearchBooks(ctx context.Context, query string, from, size int) (int64, []BookDocument, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"titulo^2", "genero", "author"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search books: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source BookDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	docs := make([]BookDocument, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		docs[n] = hit.Source
	}
	return r.Hits.Total.Value, docs, nil
}

// Nop satisfies the indexing side when Elasticsearch is not configured.
type Nop struct{}

func (Nop) IndexBook(context.Context, models.Book) error { return nil }
func (Nop) DeleteBook(context.Context, uint) error       { return nil }

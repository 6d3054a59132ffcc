package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"github.com/google/uuid"

	"github.com/Skotchmaster/crud_template/internal/models"
)

const DefaultIndex = "users"

// Document is the indexed view of a user. The password never leaves the
// database.
type Document struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    *string   `json:"email"`
	Name     string    `json:"name"`
	Root     bool      `json:"root"`
}

func NewDocument(u models.User) Document {
	return Document{ID: u.ID, Username: u.Username, Email: u.Email, Name: u.Name, Root: u.Root}
}

type Index struct {
	es    *elasticsearch.Client
	index string
}

func NewIndex(es *elasticsearch.Client, index string) *Index {
	if index == "" {
		index = DefaultIndex
	}
	return &Index{es: es, index: index}
}

const mapping = `{
  "mappings": {
    "properties": {
      "id":       {"type": "keyword"},
      "username": {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "email":    {"type": "text"},
      "name":     {"type": "text"},
      "root":     {"type": "boolean"}
    }
  }
}`

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (i *Index) EnsureIndex(ctx context.Context) error {
	res, err := i.es.Indices.Exists([]string{i.index}, i.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = i.es.Indices.Create(i.index,
		i.es.Indices.Create.WithContext(ctx),
		i.es.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return checkResponse(res, "create index")
}

func (i *Index) Put(ctx context.Context, u models.User) error {
	body, err := json.Marshal(NewDocument(u))
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	res, err := i.es.Index(i.index, bytes.NewReader(body),
		i.es.Index.WithContext(ctx),
		i.es.Index.WithDocumentID(u.ID.String()),
		i.es.Index.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("index user: %w", err)
	}
	return checkResponse(res, "index user")
}

// Delete removes the document. A missing document is not an error.
func (i *Index) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := i.es.Delete(i.index, id.String(),
		i.es.Delete.WithContext(ctx),
		i.es.Delete.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil
	}
	return checkResponse(res, "delete user")
}

func (i *Index) Search(ctx context.Context, q string, from, size int) (int64, []Document, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"username^2", "name", "email"},
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
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("search: %s: %s", res.Status(), msg)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	docs := make([]Document, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		docs[n] = hit.Source
	}
	return r.Hits.Total.Value, docs, nil
}

func checkResponse(res *esapi.Response, op string) error {
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("%s: %s: %s", op, res.Status(), msg)
	}
	return nil
}

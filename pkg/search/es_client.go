package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	es8 "github.com/elastic/go-elasticsearch/v8"
)

// PostDocument is what gets indexed for a post
type PostDocument struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

type ES struct {
	Client *es8.Client
	Index  string
}

func New(esURL, index string) (*ES, error) {
	es, err := es8.NewClient(es8.Config{Addresses: []string{esURL}, Transport: &http.Transport{}})
	if err != nil {
		return nil, err
	}
	return &ES{Client: es, Index: index}, nil
}

// EnsureIndex creates the index with its mapping. An existing index is not an error.
func (e *ES) EnsureIndex(ctx context.Context) error {
	mapping := `{
	  "mappings": {
	    "properties": {
	      "title":      {"type":"text"},
	      "username":   {"type":"text"},
	      "created_at": {"type":"date"}
	    }
	  }
	}`
	res, err := e.Client.Indices.Create(e.Index,
		e.Client.Indices.Create.WithBody(bytes.NewBufferString(mapping)),
		e.Client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("create index %s: %s", e.Index, res.Status())
	}
	return nil
}

func (e *ES) IndexPost(ctx context.Context, doc PostDocument) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := e.Client.Index(e.Index, bytes.NewReader(b),
		e.Client.Index.WithDocumentID(strconv.FormatUint(uint64(doc.ID), 10)),
		e.Client.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)
	if res.IsError() {
		return fmt.Errorf("index post %d: %s", doc.ID, res.Status())
	}
	return nil
}

func (e *ES) DeletePost(ctx context.Context, id uint) error {
	res, err := e.Client.Delete(e.Index, strconv.FormatUint(uint64(id), 10),
		e.Client.Delete.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete post %d: %s", id, res.Status())
	}
	return nil
}

// SearchPostIDs returns ids of posts whose title or owner username match q,
// every term having to match one of the two fields.
func (e *ES) SearchPostIDs(ctx context.Context, q string, size int) ([]uint, error) {
	body := map[string]any{
		"size":    size,
		"_source": false,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":    q,
				"fields":   []string{"title", "username"},
				"type":     "cross_fields",
				"operator": "and",
			},
		},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	res, err := e.Client.Search(
		e.Client.Search.WithContext(ctx),
		e.Client.Search.WithIndex(e.Index),
		e.Client.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search posts: %s", res.Status())
	}

	var out struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]uint, 0, len(out.Hits.Hits))
	for _, hit := range out.Hits.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

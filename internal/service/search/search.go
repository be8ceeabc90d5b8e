package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/Skotchmaster/lab_management/internal/models"
)

const ReagentIndex = "reagents"

// IndexReagent upserts the reagent document; the search index is a derived
// view, so failures here never fail the write path.
func IndexReagent(ctx context.Context, es *elasticsearch.Client, reagent *models.Reagent) error {
	data, err := json.Marshal(reagent)
	if err != nil {
		return fmt.Errorf("index reagent: %w", err)
	}

	res, err := es.Index(
		ReagentIndex,
		bytes.NewReader(data),
		es.Index.WithDocumentID(reagent.ID),
		es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index reagent: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index reagent: %s", res.Status())
	}
	return nil
}

func DeleteReagent(ctx context.Context, es *elasticsearch.Client, id string) error {
	res, err := es.Delete(ReagentIndex, id, es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete reagent from index: %w", err)
	}
	defer res.Body.Close()
	return nil
}

func Reagents(ctx context.Context, es *elasticsearch.Client, query string, from, size int) (int64, []models.Reagent, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "catalog_number^2", "supplier", "notes"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(ReagentIndex),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Reagent `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	reagents := make([]models.Reagent, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		reagents[i] = hit.Source
	}
	return r.Hits.Total.Value, reagents, nil
}

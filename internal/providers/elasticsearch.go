package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"provider-funnel/internal/common/database"
	"provider-funnel/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const defaultProviderIndex = "providers"

// ElasticsearchSource reads provider documents from a search index. Documents
// use the same JSON shape as models.Provider.
type ElasticsearchSource struct {
	es      *database.ElasticsearchClient
	index   string
	maxHits int
}

func NewElasticsearchSource(es *database.ElasticsearchClient, maxHits int) *ElasticsearchSource {
	index := es.Index
	if index == "" {
		index = defaultProviderIndex
	}
	if maxHits <= 0 {
		maxHits = 500
	}
	return &ElasticsearchSource{es: es, index: index, maxHits: maxHits}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source models.Provider `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func buildCategoryQuery(category string, size int) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"category": category}},
				},
				"must_not": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"active": false}},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"position": map[string]interface{}{"order": "asc", "unmapped_type": "integer"}},
			map[string]interface{}{"id": map[string]interface{}{"order": "asc", "unmapped_type": "keyword"}},
		},
		"size": size,
	}
}

func (s *ElasticsearchSource) Providers(ctx context.Context, category string) ([]models.Provider, error) {
	body, err := json.Marshal(buildCategoryQuery(category, s.maxHits))
	if err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
	}
	res, err := req.Do(ctx, s.es.Client)
	if err != nil {
		return nil, fmt.Errorf("search providers: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search providers failed: %s", res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]models.Provider, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		p := hit.Source
		if p.ID == "" {
			p.ID = hit.ID
		}
		out = append(out, p)
	}
	return out, nil
}

package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"mentor-match/internal/common/database"
	apperrors "mentor-match/internal/common/errors"
	"mentor-match/internal/common/logger"
	"mentor-match/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// defaultPoolSize bounds ListProviders against the index.
const defaultPoolSize = 1000

// SearchStore serves providers from the Elasticsearch directory index.
type SearchStore struct {
	es       *database.ElasticsearchClient
	index    string
	poolSize int
	logger   logger.Logger
}

func NewSearchStore(es *database.ElasticsearchClient, index string, log logger.Logger) *SearchStore {
	return &SearchStore{
		es:       es,
		index:    index,
		poolSize: defaultPoolSize,
		logger:   logger.ForComponent(log, "search-store"),
	}
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string          `json:"_id"`
			Source models.Provider `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// ListProviders returns the pool in provider id order.
func (s *SearchStore) ListProviders(ctx context.Context) ([]*models.Provider, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort": []interface{}{
			map[string]interface{}{
				"id.keyword": map[string]interface{}{"order": "asc", "unmapped_type": "keyword"},
			},
		},
		"track_total_hits": true,
	}

	providers, total, err := s.search(ctx, body, s.poolSize)
	if err != nil {
		return nil, err
	}
	if total > int64(len(providers)) {
		s.logger.Warn("provider pool truncated", map[string]interface{}{
			"index":    s.index,
			"total":    total,
			"returned": len(providers),
		})
	}
	return providers, nil
}

func (s *SearchStore) GetProvider(ctx context.Context, id string) (*models.Provider, error) {
	req := esapi.GetRequest{Index: s.index, DocumentID: id}
	res, err := req.Do(ctx, s.es.Client)
	if err != nil {
		return nil, apperrors.NewProviderSearchFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrProviderNotFound
	}
	if res.IsError() {
		return nil, apperrors.NewProviderSearchFailedError(fmt.Errorf("get provider: %s", res.Status()))
	}

	var doc struct {
		ID     string          `json:"_id"`
		Source models.Provider `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, apperrors.NewProviderSearchFailedError(err)
	}
	if doc.Source.ID == "" {
		doc.Source.ID = doc.ID
	}
	return &doc.Source, nil
}

// SearchProviders runs a directory search: free text over name, program and
// specializations, with an optional exact specialization filter.
func (s *SearchStore) SearchProviders(ctx context.Context, q ProviderQuery) ([]*models.Provider, error) {
	providers, _, err := s.search(ctx, buildSearchQuery(q), q.size())
	return providers, err
}

func buildSearchQuery(q ProviderQuery) map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{}

	if q.Text != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Text,
				"fields": []string{"name^3", "program^2", "programName^2", "specializations"},
				"type":   "best_fields",
			},
		})
	}
	if q.Specialization != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"specializations": q.Specialization},
		})
	}
	if q.ApprovedOnly {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"status": models.ProviderStatusApproved},
		})
	}
	if len(must) == 0 {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"rating": "desc"},
		},
	}
}

func (s *SearchStore) search(ctx context.Context, body map[string]interface{}, size int) ([]*models.Provider, int64, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, 0, apperrors.NewProviderSearchFailedError(err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(raw),
		Size:  &size,
	}
	res, err := req.Do(ctx, s.es.Client)
	if err != nil {
		return nil, 0, apperrors.NewProviderSearchFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, apperrors.NewProviderSearchFailedError(fmt.Errorf("search %s: %s", s.index, res.Status()))
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, 0, apperrors.NewProviderSearchFailedError(err)
	}

	providers := make([]*models.Provider, 0, len(r.Hits.Hits))
	for i := range r.Hits.Hits {
		p := r.Hits.Hits[i].Source
		if p.ID == "" {
			p.ID = r.Hits.Hits[i].ID
		}
		providers = append(providers, &p)
	}
	return providers, r.Hits.Total.Value, nil
}

// IndexProvider upserts a provider document keyed by its ID.
func (s *SearchStore) IndexProvider(ctx context.Context, p *models.Provider, refresh bool) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: p.ID,
		Body:       bytes.NewReader(raw),
	}
	if refresh {
		req.Refresh = "true"
	}

	res, err := req.Do(ctx, s.es.Client)
	if err != nil {
		return fmt.Errorf("index provider %s: %w", p.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index provider %s: %s", p.ID, res.Status())
	}
	return nil
}

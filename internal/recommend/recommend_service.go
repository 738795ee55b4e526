package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Suggestion is the single upsell line the catalog proposes for a seed item.
type Suggestion struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Slug       string   `json:"slug,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	Currency   string   `json:"currency"`
	CoverImage string   `json:"coverImage,omitempty"`
}

//go:generate mockgen -source=recommend_service.go -destination=../mock/recommend/recommend_service_mock.go -package=mock
type Service interface {
	// Fetch returns one suggestion for the seed item, or nil when the
	// catalog has nothing to propose. The request is abortable through ctx.
	Fetch(ctx context.Context, seedID, seedSlug string) (*Suggestion, error)
}

type service struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewService(baseURL string, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

func (s *service) Fetch(ctx context.Context, seedID, seedSlug string) (*Suggestion, error) {
	query := url.Values{}
	query.Set("seed", seedID)
	if seedSlug != "" {
		query.Set("slug", seedSlug)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/recommendations?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var suggestion Suggestion
	if err := json.NewDecoder(resp.Body).Decode(&suggestion); err != nil {
		return nil, fmt.Errorf("decode suggestion: %w", err)
	}
	if suggestion.ID == "" {
		return nil, nil
	}
	return &suggestion, nil
}

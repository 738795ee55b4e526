package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

//go:generate mockgen -source=shipping_client.go -destination=../mock/shipping/shipping_client_mock.go -package=mock
type RateClient interface {
	GetRates(ctx context.Context, req RateRequest) (Quote, error)
}

type rateClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewRateClient(baseURL string, logger *zap.Logger) RateClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &rateClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

func (c *rateClient) GetRates(ctx context.Context, req RateRequest) (Quote, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Quote{}, fmt.Errorf("encode rate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/rates", bytes.NewReader(body))
	if err != nil {
		return Quote{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Quote{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return Quote{}, fmt.Errorf("rate collaborator returned status %d", resp.StatusCode)
	}

	var decoded rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Quote{}, fmt.Errorf("decode rate response: %w", err)
	}

	quote := Quote{
		Amount:   decoded.Amount,
		Currency: decoded.Currency,
		Options:  make([]Option, 0, len(decoded.Methods)),
	}
	for _, m := range decoded.Methods {
		quote.Options = append(quote.Options, Option{
			ID:               m.ID,
			Name:             m.Name,
			Amount:           m.Amount,
			Currency:         m.Currency,
			DeliveryEstimate: m.DeliveryEstimate,
		})
	}
	return quote, nil
}

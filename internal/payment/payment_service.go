package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	paymenterrors "go-storefront-checkout/internal/payment/errors"

	"go.uber.org/zap"
)

//go:generate mockgen -source=payment_service.go -destination=../mock/payment/payment_service_mock.go -package=mock
type Service interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (Session, error)
	ConfirmOrder(ctx context.Context, req ConfirmOrderRequest) error
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
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

func (s *service) CreateSession(ctx context.Context, req CreateSessionRequest) (Session, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Session{}, fmt.Errorf("encode session request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", paymenterrors.ErrGatewayUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", paymenterrors.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", paymenterrors.ErrGatewayUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var session Session
		if err := json.Unmarshal(raw, &session); err != nil {
			return Session{}, paymenterrors.ErrMalformedResponse
		}
		if session.ClientSecret == "" || session.PublishableKey == "" {
			return Session{}, paymenterrors.ErrMalformedResponse
		}
		return session, nil

	case resp.StatusCode == http.StatusConflict:
		return Session{}, parseConflict(raw)

	default:
		s.logger.Warn("gateway session creation failed",
			zap.Int("status", resp.StatusCode))
		return Session{}, fmt.Errorf("%w: status %d", paymenterrors.ErrGatewayUnavailable, resp.StatusCode)
	}
}

// parseConflict maps a 409 body onto the stock-conflict taxonomy. A 409
// that matches neither shape is a contract violation, not a network error.
func parseConflict(raw []byte) error {
	var body conflictBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return paymenterrors.ErrMalformedResponse
	}

	if len(body.Missing) > 0 {
		return &paymenterrors.UnavailableError{Missing: body.Missing}
	}
	if body.Requested > 0 {
		return &paymenterrors.QuantityError{
			Available: body.Available,
			Requested: body.Requested,
			Message:   body.Message,
		}
	}
	return paymenterrors.ErrMalformedResponse
}

// ConfirmOrder tells the order system that gateway-side payment succeeded.
// Best effort: a server-side fallback reconciles missed confirmations.
func (s *service) ConfirmOrder(ctx context.Context, req ConfirmOrderRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode confirm request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/orders/confirm", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", paymenterrors.ErrGatewayUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", paymenterrors.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", paymenterrors.ErrGatewayUnavailable, resp.StatusCode)
	}
	return nil
}

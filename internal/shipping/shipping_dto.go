package shipping

import "go-storefront-checkout/internal/customer"

// ==================== DOMAIN ====================

type Option struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	DeliveryEstimate string  `json:"deliveryEstimate"`
}

type Quote struct {
	Amount   float64  `json:"amount"`
	Currency string   `json:"currency"`
	Options  []Option `json:"options"`
}

// ==================== COLLABORATOR CONTRACT ====================

type RateRequest struct {
	Address  customer.Snapshot `json:"address"`
	Subtotal float64           `json:"subtotal"`
}

type rateResponse struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Methods  []struct {
		ID               string  `json:"id"`
		Name             string  `json:"name"`
		Amount           float64 `json:"amount"`
		Currency         string  `json:"currency"`
		DeliveryEstimate string  `json:"deliveryEstimate"`
	} `json:"methods"`
}

// RefreshInput is the dependency snapshot a quote refresh is keyed on. Any
// field change supersedes whatever was pending or in flight.
type RefreshInput struct {
	Address             customer.Snapshot
	FulfillmentShipping bool
	PhysicalItems       int
	CartSize            int
	PhysicalSubtotal    float64
}

// EngineState is a consistent view of the engine for rendering.
type EngineState struct {
	Quote      *Quote  `json:"quote,omitempty"`
	SelectedID string  `json:"selectedId,omitempty"`
	Selected   *Option `json:"selected,omitempty"`
}

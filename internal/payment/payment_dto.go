package payment

import (
	"go-storefront-checkout/internal/cart"
	"go-storefront-checkout/internal/customer"
)

// ==================== REQUEST STRUCTS ====================

type CreateSessionRequest struct {
	Locale                 string            `json:"locale"`
	Customer               customer.Snapshot `json:"customer"`
	Items                  []cart.Item       `json:"items"`
	ShippingOptionID       string            `json:"shippingOptionId,omitempty"`
	ProductFulfillmentMode string            `json:"productFulfillmentMode"`
	ServiceAppointmentMode string            `json:"serviceAppointmentMode,omitempty"`
	ServiceRequestedDate   string            `json:"serviceRequestedDate,omitempty"`
	ServiceRequestedTime   string            `json:"serviceRequestedTime,omitempty"`
}

type ConfirmOrderRequest struct {
	OrderID         string `json:"orderId"`
	PaymentIntentID string `json:"paymentIntentId"`
	Locale          string `json:"locale"`
}

// ==================== RESPONSE STRUCTS ====================

// Session is immutable once issued by the gateway. Ownership lives with the
// checkout orchestrator, which discards it when the cart snapshot it was
// built from changes.
type Session struct {
	ClientSecret   string `json:"clientSecret"`
	PublishableKey string `json:"publishableKey"`
	OrderID        string `json:"orderId,omitempty"`
	OrderNumber    string `json:"orderNumber,omitempty"`
}

type conflictBody struct {
	Missing   []string `json:"missing"`
	Available int      `json:"available"`
	Requested int      `json:"requested"`
	Message   string   `json:"message"`
}

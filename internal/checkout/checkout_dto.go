package checkout

import (
	"go-storefront-checkout/internal/cart"
	"go-storefront-checkout/internal/customer"
	"go-storefront-checkout/internal/payment"
	"go-storefront-checkout/internal/recommend"
	"go-storefront-checkout/internal/shipping"
)

// Fulfillment and appointment modes are part of the client contract.
const (
	FulfillmentShipping = "shipping"
	FulfillmentPickup   = "pickup"

	AppointmentRequested = "requested"
	AppointmentCallback  = "callback"
)

// ==================== REQUEST STRUCTS ====================

type UpdateCustomerRequest struct {
	Customer customer.Snapshot `json:"customer"`
}

type UpdateOptionsRequest struct {
	FulfillmentMode string `json:"fulfillmentMode" validate:"omitempty,oneof=shipping pickup"`
	AppointmentMode string `json:"appointmentMode" validate:"omitempty,oneof=requested callback"`
	RequestedDate   string `json:"requestedDate"`
	RequestedTime   string `json:"requestedTime"`
}

type StepRequest struct {
	Intent string `json:"intent" binding:"required"`
}

type SelectShippingOptionRequest struct {
	OptionID string `json:"optionId" binding:"required"`
}

type CompleteRequest struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
}

// ==================== RESPONSE STRUCTS ====================

type StateResponse struct {
	Step                 string                   `json:"step"`
	Locale               string                   `json:"locale"`
	Customer             customer.Snapshot        `json:"customer"`
	FulfillmentMode      string                   `json:"fulfillmentMode"`
	AppointmentMode      string                   `json:"appointmentMode"`
	ServiceRequestedDate string                   `json:"serviceRequestedDate,omitempty"`
	ServiceRequestedTime string                   `json:"serviceRequestedTime,omitempty"`
	Items                []cart.Item              `json:"items"`
	ItemCount            int                      `json:"itemCount"`
	Subtotal             float64                  `json:"subtotal"`
	Fingerprint          string                   `json:"fingerprint"`
	Session              *payment.Session         `json:"session,omitempty"`
	SessionInFlight      bool                     `json:"sessionInFlight"`
	PrefetchAttempted    bool                     `json:"prefetchAttempted"`
	PrefetchError        string                   `json:"prefetchError,omitempty"`
	Error                string                   `json:"error,omitempty"`
	Shipping             shipping.EngineState     `json:"shipping"`
	FreeShipping         *cart.FreeShippingStatus `json:"freeShipping,omitempty"`
}

type CompleteResponse struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber,omitempty"`
}

type RecommendationResponse struct {
	Suggestion *recommend.Suggestion `json:"suggestion"`
}

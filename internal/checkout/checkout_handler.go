package checkout

import (
	"errors"
	"net/http"

	carterrors "go-storefront-checkout/internal/cart/errors"
	checkouterrors "go-storefront-checkout/internal/checkout/errors"
	"go-storefront-checkout/internal/middleware"
	paymenterrors "go-storefront-checkout/internal/payment/errors"
	"go-storefront-checkout/internal/pkg/response"
	"go-storefront-checkout/internal/shipping"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	manager *Manager
}

func NewHandler(m *Manager) *Handler {
	return &Handler{manager: m}
}

func (h *Handler) locale(ctx *gin.Context) string {
	return ctx.GetString(middleware.LocaleKey)
}

func (h *Handler) State(ctx *gin.Context) {
	state, err := h.manager.State(ctx, ctx.Param("cartId"), h.locale(ctx))
	if err != nil {
		respondCheckoutError(ctx, err)
		return
	}
	response.Success(ctx, http.StatusOK, state, nil)
}

func (h *Handler) UpdateCustomer(ctx *gin.Context) {
	var req UpdateCustomerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", err.Error())
		return
	}

	state, err := h.manager.UpdateCustomer(ctx, ctx.Param("cartId"), h.locale(ctx), req)
	if err != nil {
		respondCheckoutError(ctx, err)
		return
	}
	response.Success(ctx, http.StatusOK, state, nil)
}

func (h *Handler) UpdateOptions(ctx *gin.Context) {
	var req UpdateOptionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", err.Error())
		return
	}

	state, err := h.manager.UpdateOptions(ctx, ctx.Param("cartId"), h.locale(ctx), req)
	if err != nil {
		respondCheckoutError(ctx, err)
		return
	}
	response.Success(ctx, http.StatusOK, state, nil)
}

// Step applies a transition intent. Guard failures return 422 together
// with the unchanged state so the client can render both.
func (h *Handler) Step(ctx *gin.Context) {
	var req StepRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", err.Error())
		return
	}

	state, err := h.manager.Apply(ctx, ctx.Param("cartId"), h.locale(ctx), Intent(req.Intent))
	if err != nil {
		switch {
		case errors.Is(err, checkouterrors.ErrCompleteRequiredFields),
			errors.Is(err, checkouterrors.ErrCartEmpty):
			response.Error(ctx, http.StatusUnprocessableEntity, "STEP_GUARD", err.Error(), state)
		case errors.Is(err, checkouterrors.ErrUnknownIntent):
			response.Error(ctx, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		default:
			respondCheckoutError(ctx, err)
		}
		return
	}
	response.Success(ctx, http.StatusOK, state, nil)
}

func (h *Handler) CreateSession(ctx *gin.Context) {
	state, err := h.manager.CreateSession(ctx, ctx.Param("cartId"), h.locale(ctx))
	if err != nil {
		switch {
		case errors.Is(err, checkouterrors.ErrCompleteRequiredFields),
			errors.Is(err, checkouterrors.ErrCartEmpty):
			response.Error(ctx, http.StatusUnprocessableEntity, "SESSION_GUARD", err.Error(), state)
		case errors.Is(err, paymenterrors.ErrItemsUnavailable),
			errors.Is(err, paymenterrors.ErrInsufficientQuantity):
			response.Error(ctx, http.StatusConflict, "STOCK_CONFLICT", state.Error, nil)
		default:
			response.Error(ctx, http.StatusBadGateway, "PAYMENT_UNAVAILABLE", "payment session could not be created", nil)
		}
		return
	}
	response.Success(ctx, http.StatusCreated, state, nil)
}

func (h *Handler) SelectShippingOption(ctx *gin.Context) {
	var req SelectShippingOptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", err.Error())
		return
	}

	state, err := h.manager.SelectShippingOption(ctx, ctx.Param("cartId"), h.locale(ctx), req.OptionID)
	if err != nil {
		switch {
		case errors.Is(err, shipping.ErrNoQuote), errors.Is(err, shipping.ErrUnknownOption):
			response.Error(ctx, http.StatusUnprocessableEntity, "SHIPPING_OPTION", err.Error(), nil)
		default:
			respondCheckoutError(ctx, err)
		}
		return
	}
	response.Success(ctx, http.StatusOK, state, nil)
}

func (h *Handler) Complete(ctx *gin.Context) {
	var req CompleteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", err.Error())
		return
	}

	res, err := h.manager.Complete(ctx, ctx.Param("cartId"), h.locale(ctx), req)
	if err != nil {
		if errors.Is(err, checkouterrors.ErrNoSession) {
			response.Error(ctx, http.StatusConflict, "NO_SESSION", err.Error(), nil)
			return
		}
		respondCheckoutError(ctx, err)
		return
	}
	response.Success(ctx, http.StatusOK, res, nil)
}

func (h *Handler) Recommendation(ctx *gin.Context) {
	suggestion, err := h.manager.Recommendation(ctx, ctx.Param("cartId"))
	if err != nil {
		respondCheckoutError(ctx, err)
		return
	}
	response.Success(ctx, http.StatusOK, RecommendationResponse{Suggestion: suggestion}, nil)
}

func respondCheckoutError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, carterrors.ErrInvalidCartID), errors.Is(err, carterrors.ErrInvalidItem):
		response.Error(ctx, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	default:
		response.Error(ctx, http.StatusInternalServerError, "CHECKOUT_ERROR", "checkout operation failed", nil)
	}
}

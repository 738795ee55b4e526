package cart

import (
	"errors"
	"net/http"

	carterrors "go-storefront-checkout/internal/cart/errors"
	"go-storefront-checkout/internal/pkg/response"
	"go-storefront-checkout/internal/shipping"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	store     *Store
	threshold float64
}

func NewHandler(store *Store, freeShippingThreshold float64) *Handler {
	return &Handler{store: store, threshold: freeShippingThreshold}
}

func (h *Handler) Detail(ctx *gin.Context) {
	items, err := h.store.Read(ctx, ctx.Param("cartId"))
	if err != nil {
		respondCartError(ctx, err)
		return
	}
	response.Success(ctx, http.StatusOK, h.detail(items), nil)
}

func (h *Handler) Count(ctx *gin.Context) {
	items, err := h.store.Read(ctx, ctx.Param("cartId"))
	if err != nil {
		respondCartError(ctx, err)
		return
	}
	response.Success(ctx, http.StatusOK, CartCountResponse{Count: ItemCount(items)}, nil)
}

func (h *Handler) AddItem(ctx *gin.Context) {
	var req AddItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", err.Error())
		return
	}

	items, err := h.store.AddItem(ctx, ctx.Param("cartId"), req)
	if err != nil {
		respondCartError(ctx, err)
		return
	}
	response.Success(ctx, http.StatusCreated, h.detail(items), nil)
}

func (h *Handler) UpdateQty(ctx *gin.Context) {
	var req UpdateQtyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", err.Error())
		return
	}

	items, err := h.store.UpdateQty(ctx, ctx.Param("cartId"), ctx.Param("itemId"), req)
	if err != nil {
		respondCartError(ctx, err)
		return
	}
	response.Success(ctx, http.StatusOK, h.detail(items), nil)
}

func (h *Handler) Increment(ctx *gin.Context) {
	items, err := h.store.Increment(ctx, ctx.Param("cartId"), ctx.Param("itemId"))
	if err != nil {
		respondCartError(ctx, err)
		return
	}
	response.Success(ctx, http.StatusOK, h.detail(items), nil)
}

func (h *Handler) Decrement(ctx *gin.Context) {
	items, err := h.store.Decrement(ctx, ctx.Param("cartId"), ctx.Param("itemId"))
	if err != nil {
		respondCartError(ctx, err)
		return
	}
	response.Success(ctx, http.StatusOK, h.detail(items), nil)
}

func (h *Handler) RemoveItem(ctx *gin.Context) {
	items, err := h.store.RemoveItem(ctx, ctx.Param("cartId"), ctx.Param("itemId"))
	if err != nil {
		respondCartError(ctx, err)
		return
	}
	response.Success(ctx, http.StatusOK, h.detail(items), nil)
}

func (h *Handler) Clear(ctx *gin.Context) {
	if err := h.store.Clear(ctx, ctx.Param("cartId")); err != nil {
		respondCartError(ctx, err)
		return
	}
	response.Success(ctx, http.StatusOK, h.detail(nil), nil)
}

func (h *Handler) detail(items []Item) CartDetailResponse {
	if items == nil {
		items = []Item{}
	}

	resp := CartDetailResponse{
		Items:            items,
		Subtotal:         Subtotal(items),
		PhysicalSubtotal: PhysicalSubtotal(items),
		Currency:         defaultCurrency,
		ItemCount:        ItemCount(items),
	}
	if len(items) > 0 {
		resp.Currency = items[0].Currency
	}

	if h.threshold > 0 {
		remaining, percent := shipping.FreeShippingProgress(resp.PhysicalSubtotal, h.threshold)
		resp.FreeShipping = &FreeShippingStatus{
			Threshold: h.threshold,
			Remaining: remaining,
			Percent:   percent,
			Unlocked:  remaining == 0,
		}
	}
	return resp
}

func respondCartError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, carterrors.ErrInvalidCartID), errors.Is(err, carterrors.ErrInvalidItem):
		response.Error(ctx, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, carterrors.ErrItemNotFound):
		response.Error(ctx, http.StatusNotFound, "ITEM_NOT_FOUND", err.Error(), nil)
	default:
		response.Error(ctx, http.StatusInternalServerError, "CART_ERROR", "cart operation failed", nil)
	}
}

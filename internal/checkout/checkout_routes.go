package checkout

import (
	"go-storefront-checkout/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	checkout := r.Group("/checkout/:cartId")
	checkout.Use(middleware.LocaleMiddleware())
	{
		checkout.GET("", handler.State)
		checkout.PUT("/customer", handler.UpdateCustomer)
		checkout.PUT("/options", handler.UpdateOptions)
		checkout.POST("/step", handler.Step)
		checkout.POST("/payment-session", handler.CreateSession)
		checkout.PUT("/shipping-option", handler.SelectShippingOption)
		checkout.POST("/complete", handler.Complete)
		checkout.GET("/recommendation", handler.Recommendation)
	}
}

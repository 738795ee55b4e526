package app

import (
	"os"

	"go-storefront-checkout/internal/cart"
	"go-storefront-checkout/internal/checkout"
	"go-storefront-checkout/internal/payment"
	"go-storefront-checkout/internal/recommend"
	"go-storefront-checkout/internal/shipping"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func registerModules(router *gin.Engine, store *cart.Store, writer *kafka.Writer, logger *zap.Logger, threshold float64) {
	// --- Collaborator clients ---
	paymentSvc := payment.NewService(os.Getenv("PAYMENT_BASE_URL"), logger)
	rateClient := shipping.NewRateClient(os.Getenv("SHIPPING_BASE_URL"), logger)
	recommendSvc := recommend.NewService(os.Getenv("CATALOG_BASE_URL"), logger)

	// --- Services ---
	checkoutManager := checkout.NewManager(checkout.ManagerDeps{
		Store:                 store,
		Gateway:               paymentSvc,
		Rates:                 rateClient,
		Recommend:             recommendSvc,
		Writer:                writer,
		Logger:                logger,
		FreeShippingThreshold: threshold,
	})

	// --- Handlers ---
	cartHandler := cart.NewHandler(store, threshold)
	checkoutHandler := checkout.NewHandler(checkoutManager)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		cart.RegisterRoutes(api, cartHandler)
		checkout.RegisterRoutes(api, checkoutHandler)
	}
}

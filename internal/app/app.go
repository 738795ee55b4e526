package app

import (
	"context"
	"os"
	"strconv"

	"go-storefront-checkout/internal/cart"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultFreeShippingThreshold = 60.0

func BuildApp(router *gin.Engine, logger *zap.Logger) error {
	// 1. Setup Infrastructure
	redisClient, err := connectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}

	kafkaWriter, err := connectKafkaWithRetry(os.Getenv("KAFKA_BROKER"), "checkout.events", 5)
	if err != nil {
		// Events are best effort; the flow works without a broker.
		logger.Warn("kafka unavailable, order events disabled", zap.Error(err))
		kafkaWriter = nil
	}

	// 2. Cart store + cross-instance change signal
	store := cart.NewStore(cart.StoreDeps{
		Storage: cart.NewRedisStorage(redisClient),
		Redis:   redisClient,
		Logger:  logger,
	})
	go store.Listen(context.Background())

	// 3. Register Modules & Routes
	registerModules(router, store, kafkaWriter, logger, freeShippingThreshold())

	return nil
}

func freeShippingThreshold() float64 {
	raw := os.Getenv("FREE_SHIPPING_THRESHOLD")
	if raw == "" {
		return defaultFreeShippingThreshold
	}
	threshold, err := strconv.ParseFloat(raw, 64)
	if err != nil || threshold < 0 {
		return defaultFreeShippingThreshold
	}
	return threshold
}

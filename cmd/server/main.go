package main

import (
	"net/http"

	"storefront-be/internal/cart"
	"storefront-be/internal/config"
	"storefront-be/internal/db"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/product"
	"storefront-be/internal/transport"
	"storefront-be/internal/user"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo)

	cartRepo := cart.NewRepository(database)
	cartSvc := cart.NewService(cartRepo, productSvc)

	gateway := payment.NewStripeGateway(cfg.StripeSecretKey)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, cartSvc, productSvc, gateway, order.Pricing{
		TaxRate:               cfg.TaxRate,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		ShippingFlatFee:       cfg.ShippingFlatFee,
	})

	statsRepo := metrics.NewRepository(database)

	router := transport.NewRouter(transport.Handlers{
		Auth:    transport.NewAuthHandler(userSvc),
		Product: transport.NewProductHandler(productSvc),
		Cart:    transport.NewCartHandler(cartSvc),
		Order:   transport.NewOrderHandler(orderSvc),
		Payment: transport.NewPaymentHandler(gateway, orderSvc, cfg.StripeWebhookSecret),
		Admin:   transport.NewAdminHandler(statsRepo),
	})

	logger.L().Info("storefront API listening", zap.String("port", cfg.AppPort))
	if err := http.ListenAndServe(":"+cfg.AppPort, router); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

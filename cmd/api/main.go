package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/forno/pizza-shop-api/internal/config"
	"github.com/forno/pizza-shop-api/internal/handler"
	"github.com/forno/pizza-shop-api/internal/mail"
	"github.com/forno/pizza-shop-api/internal/middleware"
	"github.com/forno/pizza-shop-api/internal/payment"
	"github.com/forno/pizza-shop-api/internal/repository"
	"github.com/forno/pizza-shop-api/internal/service"
	"github.com/forno/pizza-shop-api/internal/storage"
	"github.com/forno/pizza-shop-api/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.DB.DSN())
	if err != nil {
		log.Error("parse db config", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = cfg.DB.MaxConns

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}
	log.Info("connected to PostgreSQL")

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// RabbitMQ
	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error("connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()

	amqpCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer amqpCh.Close()

	if err := worker.SetupRabbitMQ(amqpCh); err != nil {
		log.Error("setup RabbitMQ", "error", err)
		os.Exit(1)
	}
	log.Info("connected to RabbitMQ")

	// S3
	uploader, err := storage.NewS3Uploader(ctx, cfg.S3)
	if err != nil {
		log.Error("configure S3 uploader", "error", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := repository.NewUserRepository(dbPool)
	categoryRepo := repository.NewCategoryRepository(dbPool)
	productRepo := repository.NewProductRepository(dbPool)
	orderRepo := repository.NewOrderRepository(dbPool)

	// Services
	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	userSvc := service.NewUserService(userRepo)
	categorySvc := service.NewCategoryService(categoryRepo)
	productSvc := service.NewProductService(productRepo, categoryRepo, redisClient)
	orderSvc := service.NewOrderService(orderRepo, productRepo, amqpCh, redisClient, log)
	gateway := payment.NewGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	mailer := mail.NewService(cfg.Postmark.ServerToken, cfg.Postmark.From)

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc)
	categoryH := handler.NewCategoryHandler(categorySvc)
	productH := handler.NewProductHandler(productSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	paymentH := handler.NewPaymentHandler(gateway, orderRepo, orderSvc)
	uploadH := handler.NewUploadHandler(uploader)
	healthH := handler.NewHealthHandler(dbPool, redisClient, amqpConn)

	// Worker
	notifyWorker := worker.NewNotificationWorker(amqpCh, orderRepo, mailer, redisClient, log)

	// Router
	router := gin.Default()
	router.GET("/healthz", healthH.Healthz)
	router.GET("/readyz", healthH.Readyz)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/signup", authH.Signup)
		auth.POST("/login", authH.Login)
		auth.GET("/capabilities", middleware.AuthMiddleware(cfg.JWT.Secret), authH.Capabilities)

		v1.GET("/menu", productH.Menu)
		v1.GET("/best-sellers", productH.BestSellers)

		categories := v1.Group("/categories")
		categories.GET("", categoryH.List)

		categoryAdmin := categories.Group("", middleware.AuthMiddleware(cfg.JWT.Secret), middleware.StaffOnly())
		categoryAdmin.POST("", categoryH.Create)
		categoryAdmin.PUT("/:id", categoryH.Update)
		categoryAdmin.DELETE("/:id", categoryH.Delete)

		products := v1.Group("/products")
		products.GET("/:id", productH.GetByID)

		productAdmin := products.Group("", middleware.AuthMiddleware(cfg.JWT.Secret), middleware.StaffOnly())
		productAdmin.POST("", productH.Create)
		productAdmin.PUT("/:id", productH.Update)
		productAdmin.DELETE("/:id", productH.Delete)

		orders := v1.Group("/orders")
		orders.POST("", orderH.Create)
		orders.GET("/:id", orderH.Get)

		orderAdmin := orders.Group("", middleware.AuthMiddleware(cfg.JWT.Secret), middleware.StaffOnly())
		orderAdmin.GET("", orderH.List)
		orderAdmin.GET("/stats", orderH.Stats)
		orderAdmin.PUT("/:id/status", orderH.UpdateStatus)

		payments := v1.Group("/payments")
		payments.POST("/intent", paymentH.CreateIntent)
		payments.POST("/webhook", paymentH.Webhook)

		users := v1.Group("/users", middleware.AuthMiddleware(cfg.JWT.Secret))
		users.GET("/me", userH.Profile)
		// Self-edits are allowed for any authenticated user; the service
		// enforces who may edit whom.
		users.PUT("/:id", userH.Update)

		userAdmin := users.Group("", middleware.StaffOnly())
		userAdmin.GET("", userH.List)
		userAdmin.GET("/:id", userH.Get)
		userAdmin.PUT("/:id/role", userH.ChangeRole)
		userAdmin.DELETE("/:id", userH.Delete)

		// Open until the first super admin exists; the service gates
		// subsequent calls on the caller's role.
		admin := v1.Group("/admin", middleware.OptionalAuth(cfg.JWT.Secret))
		admin.POST("/super-admins", userH.CreateSuperAdmin)

		upload := v1.Group("/uploads", middleware.AuthMiddleware(cfg.JWT.Secret), middleware.StaffOnly())
		upload.POST("", uploadH.Upload)
	}

	if err := notifyWorker.Start(ctx); err != nil {
		log.Error("start notification worker", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	notifyWorker.Stop()
	time.Sleep(500 * time.Millisecond)
	cancel()
	log.Info("server stopped")
}

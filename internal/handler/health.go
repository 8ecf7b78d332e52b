package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

const serviceName = "pizza-shop-api"

type HealthHandler struct {
	db     *pgxpool.Pool
	cache  *redis.Client
	broker *amqp.Connection
}

func NewHealthHandler(db *pgxpool.Pool, cache *redis.Client, broker *amqp.Connection) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, broker: broker}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
}

// Readyz checks each dependency the order flow needs: Postgres for
// orders and the menu, Redis for caching and notification dedupe,
// RabbitMQ for the notification queue.
func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx := c.Request.Context()

	checks := gin.H{"postgres": "ok", "redis": "ok", "rabbitmq": "ok"}
	ready := true

	if err := h.db.Ping(ctx); err != nil {
		checks["postgres"] = "unreachable"
		ready = false
	}
	if err := h.cache.Ping(ctx).Err(); err != nil {
		checks["redis"] = "unreachable"
		ready = false
	}
	if h.broker.IsClosed() {
		checks["rabbitmq"] = "connection closed"
		ready = false
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"service": serviceName, "ready": ready, "checks": checks})
}

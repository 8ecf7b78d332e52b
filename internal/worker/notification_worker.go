package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/forno/pizza-shop-api/internal/mail"
	"github.com/forno/pizza-shop-api/internal/model"
	"github.com/forno/pizza-shop-api/internal/repository"
)

const (
	notificationQueue = "order.notifications"
	dlxExchange       = "order.notifications.dlx"
	dlqQueueName      = "order.notifications.dlq"
	idempotencyTTL    = 24 * time.Hour
)

// NotificationWorker drains the notification queue and sends customer
// email. It lives off the request path: nothing here can fail an order
// operation.
type NotificationWorker struct {
	channel     *amqp.Channel
	orderRepo   repository.OrderRepository
	mailer      mail.Sender
	redisClient *redis.Client
	log         *slog.Logger
	done        chan struct{}
}

func NewNotificationWorker(
	ch *amqp.Channel,
	orderRepo repository.OrderRepository,
	mailer mail.Sender,
	redisClient *redis.Client,
	log *slog.Logger,
) *NotificationWorker {
	return &NotificationWorker{
		channel:     ch,
		orderRepo:   orderRepo,
		mailer:      mailer,
		redisClient: redisClient,
		log:         log,
		done:        make(chan struct{}),
	}
}

// SetupRabbitMQ declares exchanges, queues, and bindings (DLX/DLQ).
func SetupRabbitMQ(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(dlxExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(dlqQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := ch.QueueBind(dlqQueueName, notificationQueue, dlxExchange, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}
	if _, err := ch.QueueDeclare(notificationQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    dlxExchange,
		"x-dead-letter-routing-key": notificationQueue,
	}); err != nil {
		return fmt.Errorf("declare notification queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}
	return nil
}

func (w *NotificationWorker) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(notificationQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.processMessage(ctx, msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.log.Info("notification worker started")
	return nil
}

func (w *NotificationWorker) Stop() { close(w.done) }

func (w *NotificationWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	var notif model.NotificationMessage
	if err := json.Unmarshal(msg.Body, &notif); err != nil {
		w.log.Error("unmarshal notification message", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	log := w.log.With("order_id", notif.OrderID, "kind", notif.Kind)

	// One email per (order, kind, status), deduped via Redis.
	idempotencyKey := fmt.Sprintf("notified:%s:%s:%s", notif.OrderID, notif.Kind, notif.Status)
	exists, err := w.redisClient.Exists(ctx, idempotencyKey).Result()
	if err != nil {
		log.Error("check idempotency key", "error", err)
		_ = msg.Nack(false, true)
		return
	}
	if exists > 0 {
		log.Info("notification already sent, skipping")
		_ = msg.Ack(false)
		return
	}

	if err := w.sendNotification(ctx, notif); err != nil {
		log.Error("send notification failed", "error", err)
		_ = msg.Nack(false, false) // → DLQ
		return
	}

	if err := w.redisClient.Set(ctx, idempotencyKey, "1", idempotencyTTL).Err(); err != nil {
		log.Error("set idempotency key", "error", err)
	}

	_ = msg.Ack(false)
	log.Info("notification sent")
}

func (w *NotificationWorker) sendNotification(ctx context.Context, notif model.NotificationMessage) error {
	order, err := w.orderRepo.GetByID(ctx, notif.OrderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return fmt.Errorf("order not found: %s", notif.OrderID)
	}

	switch notif.Kind {
	case model.NotificationOrderConfirmation:
		return w.mailer.SendOrderConfirmation(order)
	case model.NotificationStatusUpdate:
		return w.mailer.SendStatusUpdate(order, notif.Status)
	default:
		return fmt.Errorf("unknown notification kind: %s", notif.Kind)
	}
}

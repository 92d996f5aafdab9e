package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/jpsm83/restaurant-pos/pkg/app"
	"github.com/jpsm83/restaurant-pos/pkg/cache"
	"github.com/jpsm83/restaurant-pos/pkg/config"
	"github.com/jpsm83/restaurant-pos/pkg/database"
	"github.com/jpsm83/restaurant-pos/pkg/events"
	"github.com/jpsm83/restaurant-pos/pkg/logger"
	"github.com/jpsm83/restaurant-pos/pkg/telemetry"
	catalogEvents "github.com/jpsm83/restaurant-pos/services/catalog/domain/events"
	invsvcs "github.com/jpsm83/restaurant-pos/services/inventory/application/services"
	invdomain "github.com/jpsm83/restaurant-pos/services/inventory/domain"
	purchasingEvents "github.com/jpsm83/restaurant-pos/services/purchasing/domain/events"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx := context.Background()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	appConfig := &app.Application{
		Db:       pool,
		Logger:   log,
		EventBus: eventBus,
		Redis:    redisClient,
	}

	if err := registerSubscribers(ctx, appConfig); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// registerSubscribers wires all domain event handlers.
// Add new topics here as more services publish events.
func registerSubscribers(ctx context.Context, a *app.Application) error {
	handlers := map[string]func(context.Context, *message.Message) error{
		catalogEvents.TopicBusinessGoodUpdated:             handleBusinessGoodUpdated(a),
		purchasingEvents.TopicPurchaseReconciliationFailed: handleReconciliationFailed(a),
	}

	topics := make([]string, 0, len(handlers))
	for topic, handler := range handlers {
		errCh, err := a.EventBus.Subscribe(ctx, topic, handler)
		if err != nil {
			return err
		}
		topics = append(topics, topic)

		// Drain subscriber errors in background so the channel never blocks.
		go func(topic string) {
			for err := range errCh {
				a.Logger.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}(topic)
	}

	a.Logger.Info("event subscribers registered", "topics", topics)
	return nil
}

// handleBusinessGoodUpdated returns a handler for business_good.updated events.
// Handlers must be idempotent — EventBus retries up to 3× on failure.
// Warms the Redis menu read model so GET /business-goods/{id}/menu is served
// from cache.
func handleBusinessGoodUpdated(a *app.Application) func(context.Context, *message.Message) error {
	goodCache := cache.NewBusinessGoodCache(a.Redis)
	return func(ctx context.Context, msg *message.Message) error {
		var evt catalogEvents.BusinessGoodUpdatedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}

		if err := goodCache.Set(ctx, &cache.CachedBusinessGood{
			ID:           evt.BusinessGoodID,
			BusinessID:   evt.BusinessID,
			Name:         evt.Name,
			SellingPrice: evt.SellingPrice,
			CostPrice:    evt.CostPrice,
			Allergens:    evt.Allergens,
			UpdatedAt:    evt.OccurredAt,
		}); err != nil {
			// Cache warming is best-effort; log but do not fail the handler.
			a.Logger.WarnContext(ctx, "cache warm failed for business_good.updated",
				"business_good_id", evt.BusinessGoodID, "error", err)
		} else {
			a.Logger.InfoContext(ctx, "cache warmed",
				"business_good_id", evt.BusinessGoodID, "business_id", evt.BusinessID)
		}

		return nil
	}
}

// handleReconciliationFailed returns a handler for purchase.reconciliation_failed
// events. Rebuilds the open snapshot's system counts from the purchase ledger —
// a full recount, so replays and out-of-order deliveries converge on the same
// totals.
func handleReconciliationFailed(a *app.Application) func(context.Context, *message.Message) error {
	inventory := invsvcs.New(a).Inventory
	return func(ctx context.Context, msg *message.Message) error {
		var evt purchasingEvents.ReconciliationFailedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}

		inv, err := inventory.Recount(ctx, evt.BusinessID)
		if errors.Is(err, invdomain.ErrNoOpenInventory) {
			// The snapshot closed between failure and retry; nothing to rebuild.
			a.Logger.InfoContext(ctx, "recount skipped, no open inventory",
				"business_id", evt.BusinessID, "purchase_id", evt.PurchaseID)
			return nil
		}
		if err != nil {
			return err
		}

		a.Logger.InfoContext(ctx, "inventory recounted after failed reconciliation",
			"business_id", evt.BusinessID,
			"purchase_id", evt.PurchaseID,
			"inventory_id", inv.ID,
			"reason", evt.Reason,
		)
		return nil
	}
}

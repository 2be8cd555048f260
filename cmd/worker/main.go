package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-commerce-api/internal/app/api"
	platformobservability "github.com/Apurer/go-gin-commerce-api/internal/platform/observability"
	orderactivities "github.com/Apurer/go-gin-commerce-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-commerce-api/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "commerce-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	storageCfg, err := api.StorageConfigFromEnv()
	if err != nil {
		logger.Error("invalid storage configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if storageCfg.PostgresDSN == "" {
		// In-memory stock would diverge from the API process.
		logger.Error("POSTGRES_DSN is required for the checkout worker")
		os.Exit(1)
	}
	storage, cleanupStorage := api.OpenStorage(ctx, storageCfg, logger)
	defer cleanupStorage()
	acts := orderactivities.NewActivities(api.BuildCheckoutSteps(storage, instruments))

	namespace := envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace)
	temporalClient, err := api.DialTemporal(envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort), namespace, instruments, "temporal-worker")
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.CheckoutTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.CheckoutWorkflow, workflow.RegisterOptions{Name: orderworkflows.CheckoutWorkflowName})
	w.RegisterActivityWithOptions(acts.BeginPurchase, activity.RegisterOptions{Name: orderactivities.BeginPurchaseActivityName})
	w.RegisterActivityWithOptions(acts.ReservePurchase, activity.RegisterOptions{Name: orderactivities.ReservePurchaseActivityName})
	w.RegisterActivityWithOptions(acts.ConfirmPurchase, activity.RegisterOptions{Name: orderactivities.ConfirmPurchaseActivityName})
	w.RegisterActivityWithOptions(acts.AbandonPurchase, activity.RegisterOptions{Name: orderactivities.AbandonPurchaseActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.CheckoutTaskQueue), slog.String("namespace", namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

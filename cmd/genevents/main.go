package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"clickstream/internal/event"
	"clickstream/internal/platform/config"
	"clickstream/internal/platform/kafka/producer"
	"clickstream/internal/platform/logger"
)

var pageURLs = []string{
	"/products/electronics",
	"/checkout/success",
	"/products/add",
	"/orders/return",
	"/purchase/",
	"/cart/add",
	"/cart/remove",
	"/product/remove",
	"/products/gloves",
	"/products/bottles",
}

// main emits a burst of synthetic user events for local runs: ensures the
// topic exists, produces N randomized events at a fixed interval, flushes,
// and exits.
func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("genevents exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.GeneratorFromEnv()

	prod, err := producer.New(ctx, cfg.Brokers)
	if err != nil {
		return err
	}
	defer prod.Close()

	if err := prod.EnsureTopic(ctx, cfg.Topic, int32(cfg.Partitions)); err != nil {
		return err
	}

	for i := 0; i < cfg.Count; i++ {
		payload, err := json.Marshal(randomEvent())
		if err != nil {
			return err
		}
		if err := prod.Send(ctx, cfg.Topic, []byte(uuid.NewString()), payload); err != nil {
			return err
		}
		log.Info("sent event", "topic", cfg.Topic, "payload", string(payload))

		select {
		case <-ctx.Done():
			return prod.Flush(context.Background())
		case <-time.After(cfg.Interval):
		}
	}

	return prod.Flush(ctx)
}

func randomEvent() event.WireEvent {
	return event.WireEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		UserID:    fmt.Sprintf("usr_%d", rand.IntN(10)),
		EventType: "page_view",
		PageURL:   pageURLs[rand.IntN(len(pageURLs))],
		SessionID: fmt.Sprintf("sess_%d", 50+rand.IntN(51)),
	}
}

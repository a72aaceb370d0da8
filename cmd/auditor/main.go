package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clickstream/internal/audit"
	"clickstream/internal/pipeline"
	"clickstream/internal/platform/config"
	"clickstream/internal/platform/kafka/consumer"
	"clickstream/internal/platform/logger"
	platformmongo "clickstream/internal/platform/mongo"
)

// main wires the audit consumer group: broker → validator → durable audit
// trail. Every record, parsed or not, becomes exactly one document.
func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("auditor exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kafkaCfg := config.KafkaFromEnv(config.GroupAuditor, 60*time.Second)
	mongoCfg := config.MongoFromEnv()

	mdb, err := platformmongo.New(ctx, mongoCfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mdb.Close(closeCtx)
	}()

	store := audit.NewMongoStore(mdb.Collection())
	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}

	cons, err := consumer.New(ctx, kafkaCfg)
	if err != nil {
		return err
	}
	defer cons.Close()

	sink := audit.NewSink(store, log)
	handler := pipeline.NewAuditHandler(sink, log)
	loop := pipeline.NewLoop(kafkaCfg.GroupID, cons, handler, kafkaCfg.PollMaxRecords, kafkaCfg.BatchSleep, log)

	log.Info("starting auditor",
		"brokers", kafkaCfg.Brokers,
		"topic", kafkaCfg.Topic,
		"group", kafkaCfg.GroupID,
		"collection", mongoCfg.Collection,
	)
	return loop.Run(ctx)
}

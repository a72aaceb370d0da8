package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clickstream/internal/aggregate"
	"clickstream/internal/pipeline"
	"clickstream/internal/platform/config"
	"clickstream/internal/platform/kafka/consumer"
	"clickstream/internal/platform/logger"
	platformredis "clickstream/internal/platform/redis"
)

// main wires the aggregation consumer group: broker → validator → expiring
// aggregate counters. The audit trail runs as its own process; the two
// groups coordinate only through the broker's partition assignment.
func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("aggregator exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kafkaCfg := config.KafkaFromEnv(config.GroupAggregator, 10*time.Second)
	redisCfg := config.RedisFromEnv()

	rdb, err := platformredis.New(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer rdb.Close()

	cons, err := consumer.New(ctx, kafkaCfg)
	if err != nil {
		return err
	}
	defer cons.Close()

	sink := aggregate.NewSink(aggregate.NewRedisStore(rdb.Client), log)
	handler := pipeline.NewAggregateHandler(sink, log)
	loop := pipeline.NewLoop(kafkaCfg.GroupID, cons, handler, kafkaCfg.PollMaxRecords, kafkaCfg.BatchSleep, log)

	log.Info("starting aggregator",
		"brokers", kafkaCfg.Brokers,
		"topic", kafkaCfg.Topic,
		"group", kafkaCfg.GroupID,
	)
	return loop.Run(ctx)
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Consumer group ids for the two independent readers of the events topic.
const (
	GroupAggregator = "event-processor"
	GroupAuditor    = "audit"
)

// Kafka captures broker-level configuration for one consumer group.
type Kafka struct {
	Brokers        []string
	Topic          string
	GroupID        string
	PollTimeout    time.Duration
	PollMaxRecords int
	// BatchSleep is the deliberate pause between poll cycles. It is the
	// pipeline's only pacing mechanism.
	BatchSleep time.Duration
}

// Redis captures key-value store connection configuration.
type Redis struct {
	URL string
}

// Mongo captures document store connection configuration.
type Mongo struct {
	URI        string
	Database   string
	Collection string
}

// Dashboard captures the read-side HTTP service configuration.
type Dashboard struct {
	Addr string
	// ActiveUsersBuckets and PageViewsBuckets are how many trailing minute
	// buckets each read fans out over. They track the sink TTLs (300s/900s);
	// looking further back only reads keys that have already expired.
	ActiveUsersBuckets int
	PageViewsBuckets   int
	TopPagesLimit      int
}

// Generator captures the synthetic event producer configuration.
type Generator struct {
	Brokers    []string
	Topic      string
	Partitions int
	Count      int
	Interval   time.Duration
}

// KafkaFromEnv builds Kafka config from environment variables so mains stay
// lean. Each consumer group carries its own default inter-batch sleep.
func KafkaFromEnv(groupID string, batchSleep time.Duration) Kafka {
	return Kafka{
		Brokers:        splitCSV(getString("KAFKA_BOOTSTRAP_SERVERS", "localhost:9094")),
		Topic:          getString("KAFKA_TOPIC", "user-events"),
		GroupID:        getString("CONSUMER_GROUP_ID", groupID),
		PollTimeout:    getDuration("POLL_TIMEOUT_MS", time.Millisecond, 1000*time.Millisecond),
		PollMaxRecords: getInt("POLL_MAX_RECORDS", 500),
		BatchSleep:     getDuration("BATCH_SLEEP_SECONDS", time.Second, batchSleep),
	}
}

func RedisFromEnv() Redis {
	return Redis{
		URL: getString("REDIS_URL", "redis://localhost:6379"),
	}
}

func MongoFromEnv() Mongo {
	return Mongo{
		URI:        getString("MONGODB_URI", "mongodb://localhost:27017"),
		Database:   getString("MONGO_DB", "analytics"),
		Collection: getString("MONGO_COLLECTION", "events"),
	}
}

func GeneratorFromEnv() Generator {
	return Generator{
		Brokers:    splitCSV(getString("KAFKA_BOOTSTRAP_SERVERS", "localhost:9094")),
		Topic:      getString("KAFKA_TOPIC", "user-events"),
		Partitions: getInt("TOPIC_PARTITIONS", 1),
		Count:      getInt("EVENT_COUNT", 10),
		Interval:   getDuration("EVENT_INTERVAL_MS", time.Millisecond, time.Second),
	}
}

func DashboardFromEnv() Dashboard {
	return Dashboard{
		Addr:               getString("DASHBOARD_ADDR", ":8080"),
		ActiveUsersBuckets: getInt("ACTIVE_USERS_BUCKETS", 5),
		PageViewsBuckets:   getInt("PAGE_VIEWS_BUCKETS", 15),
		TopPagesLimit:      getInt("TOP_PAGES_LIMIT", 10),
	}
}

func splitCSV(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(key string, unit, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * unit
		}
	}
	return def
}

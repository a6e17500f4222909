package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Configuration is the full service configuration, loaded from the environment.
type Configuration struct {
	Service       ServiceConfig
	Dashboard     DashboardConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// ServiceConfig holds listener settings.
type ServiceConfig struct {
	Name            string
	HTTPPort        string
	GRPCPort        string
	ShutdownTimeout time.Duration
}

// DashboardConfig controls which charts are displayed and how batches are accepted.
type DashboardConfig struct {
	Charts       []string
	MaxBatchSize int
	RateLimit    float64
	RateBurst    int
}

// KafkaConfig holds the chart update publisher settings.
type KafkaConfig struct {
	Enabled      bool
	Brokers      []string
	TopicSeries  string
	TopicReports string
	Principal    string
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel    string
	LogFormat   string
	MetricsAddr string
}

// DefaultCharts is every chart the dashboard can display.
var DefaultCharts = []string{
	"timeSeries", "distribution",
	"cleanProb", "mildGibberish", "noise", "wordSalad", "labelDistribution",
	"processingTime",
}

// Load reads the configuration from the environment, falling back to
// defaults for unset or unparseable values.
func Load() *Configuration {
	name := envOrDefault("SERVICE_NAME", "prediction-dashboard")
	return &Configuration{
		Service: ServiceConfig{
			Name:            name,
			HTTPPort:        envOrDefault("HTTP_PORT", "8080"),
			GRPCPort:        envOrDefault("GRPC_PORT", "50051"),
			ShutdownTimeout: envOrDefaultDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Dashboard: DashboardConfig{
			Charts:       envOrDefaultList("DASHBOARD_CHARTS", DefaultCharts),
			MaxBatchSize: envOrDefaultInt("DASHBOARD_MAX_BATCH_SIZE", 10000),
			RateLimit:    envOrDefaultFloat("DASHBOARD_RATE_LIMIT", 20),
			RateBurst:    envOrDefaultInt("DASHBOARD_RATE_BURST", 40),
		},
		Kafka: KafkaConfig{
			Enabled:      envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:      envOrDefaultList("KAFKA_BROKERS", []string{"localhost:9092"}),
			TopicSeries:  envOrDefault("KAFKA_TOPIC_SERIES", "dashboard.chart.series"),
			TopicReports: envOrDefault("KAFKA_TOPIC_REPORTS", "dashboard.refresh.report"),
			Principal:    envOrDefault("KAFKA_PRINCIPAL", name),
		},
		Observability: ObservabilityConfig{
			LogLevel:    strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
			LogFormat:   envOrDefault("LOG_FORMAT", "json"),
			MetricsAddr: envOrDefault("METRICS_ADDR", ":9090"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envOrDefaultInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envOrDefaultFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// envOrDefaultList splits a comma-separated value, dropping blanks.
func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return append([]string(nil), def...)
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), def...)
	}
	return out
}

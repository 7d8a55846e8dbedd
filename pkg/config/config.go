package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	LogLevel    string

	ServerPort int
	// Port of the storefront client's local API.
	ClientPort int

	// Client-side durable storage. REDIS_URL wins over STORAGE_DSN when both are set.
	StorageDSN string
	RedisURL   string

	GraphQLURL string
	AuthURL    string

	PushURL               string
	PushTransport         string
	KafkaBrokers          []string
	KafkaTopic            string
	KafkaGroupID          string
	ReconnectDelay        time.Duration
	MaxReconnectAttempts  int
	PushFirstUpdateDelay  time.Duration
	PushMinUpdateInterval time.Duration
	PushMaxUpdateInterval time.Duration

	DatabaseURL       string
	ProductsSourceURL string
	// Optional search engine for the mock catalog. Empty URL means SQL search.
	ElasticURL      string
	ElasticUser     string
	ElasticPassword string
	ElasticIndex    string
	JWTSecret       []byte
	DemoEmail       string
	DemoPassword    string

	CatalogURL     string
	AuthServiceURL string
	PushHubURL     string
}

// LoadDotEnv reads the given .env file if present; missing files are not an error.
func LoadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil {
		log.Printf("Notice: %s not loaded: %v. Using system environment variables", path, err)
	}
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),
		ClientPort: EnvIntDefault("STOREFRONT_PORT", 3000),

		StorageDSN: EnvDefault("STORAGE_DSN", "file:storefront.db"),
		RedisURL:   os.Getenv("REDIS_URL"),

		GraphQLURL: EnvDefault("GRAPHQL_URL", "http://localhost:8080/graphql"),
		AuthURL:    EnvDefault("AUTH_URL", "http://localhost:8080/auth/login"),

		PushURL:               EnvDefault("PUSH_URL", "ws://localhost:8080/ws"),
		PushTransport:         EnvDefault("PUSH_TRANSPORT", "websocket"),
		KafkaBrokers:          CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:            EnvDefault("KAFKA_TOPIC", "product_events"),
		KafkaGroupID:          EnvDefault("KAFKA_GROUP_ID", "storefront-feed"),
		ReconnectDelay:        EnvDurationDefault("WS_RECONNECT_DELAY", 3*time.Second),
		MaxReconnectAttempts:  EnvIntDefault("WS_MAX_RECONNECT_ATTEMPTS", 5),
		PushFirstUpdateDelay:  EnvDurationDefault("PUSH_FIRST_UPDATE_DELAY", 5*time.Second),
		PushMinUpdateInterval: EnvDurationDefault("PUSH_MIN_UPDATE_INTERVAL", 10*time.Second),
		PushMaxUpdateInterval: EnvDurationDefault("PUSH_MAX_UPDATE_INTERVAL", 30*time.Second),

		DatabaseURL:       EnvDefault("DATABASE_URL", "file:mockserver.db"),
		ProductsSourceURL: os.Getenv("PRODUCTS_SOURCE_URL"),
		ElasticURL:        os.Getenv("ELASTICSEARCH_URL"),
		ElasticUser:       os.Getenv("ELASTICSEARCH_USER"),
		ElasticPassword:   os.Getenv("ELASTICSEARCH_PASSWORD"),
		ElasticIndex:      EnvDefault("ELASTICSEARCH_INDEX", "products"),
		JWTSecret:         []byte(os.Getenv("JWT_SECRET")),
		DemoEmail:         EnvDefault("DEMO_EMAIL", "demo@example.com"),
		DemoPassword:      EnvDefault("DEMO_PASSWORD", "demo1234"),

		CatalogURL:     EnvDefault("CATALOG_URL", "http://localhost:8081"),
		AuthServiceURL: EnvDefault("AUTH_SERVICE_URL", "http://localhost:8082"),
		PushHubURL:     EnvDefault("PUSH_HUB_URL", "http://localhost:8083"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
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

func EnvDurationDefault(key string, def time.Duration) time.Duration {
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

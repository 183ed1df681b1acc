package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Firestore configuration.
	FirestoreProjectID   string
	FirestoreCredentials string

	// Stale-content sweeper configuration.
	SweepInterval time.Duration

	// Administrator review surface.
	AdminPassword string
	JWTSecret     string
	JWTTTL        time.Duration

	// Geoapify reverse geocoding configuration.
	GeoapifyKey       string
	GeoapifyEnabled   bool
	GeoapifyTimeout   time.Duration
	GeoapifyCacheSize int

	// Weather configuration.
	WeatherKey     string
	WeatherEnabled bool
	WeatherTimeout time.Duration

	// Emergency alert fan-out (disabled unless brokers are set).
	KafkaBrokers    []string
	KafkaAlertTopic string
	AlertsEnabled   bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	sweepInterval, err := parseDuration("SWEEP_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}
	geoapifyTimeout, err := parseDuration("GEOAPIFY_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	weatherTimeout, err := parseDuration("WEATHER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	jwtTTL, err := parseDuration("ADMIN_JWT_TTL", "12h")
	if err != nil {
		return nil, err
	}

	geoapifyKey := os.Getenv("GEOAPIFY_KEY")
	geoapifyEnabled := geoapifyKey != ""
	if v := os.Getenv("GEOAPIFY_ENABLED"); v != "" {
		geoapifyEnabled = v == "true"
	}

	weatherKey := os.Getenv("WEATHER_KEY")
	weatherEnabled := weatherKey != ""
	if v := os.Getenv("WEATHER_ENABLED"); v != "" {
		weatherEnabled = v == "true"
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	alertsEnabled := len(brokers) > 0
	if v := os.Getenv("ALERTS_ENABLED"); v != "" {
		alertsEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FirestoreProjectID:   os.Getenv("FIRESTORE_PROJECT_ID"),
		FirestoreCredentials: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),

		SweepInterval: sweepInterval,

		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		JWTSecret:     os.Getenv("ADMIN_JWT_SECRET"),
		JWTTTL:        jwtTTL,

		GeoapifyKey:       geoapifyKey,
		GeoapifyEnabled:   geoapifyEnabled,
		GeoapifyTimeout:   geoapifyTimeout,
		GeoapifyCacheSize: parseGeoapifyCacheSize(),

		WeatherKey:     weatherKey,
		WeatherEnabled: weatherEnabled,
		WeatherTimeout: weatherTimeout,

		KafkaBrokers:    brokers,
		KafkaAlertTopic: envOrDefault("KAFKA_ALERT_TOPIC", "floodtrack-sos-alerts"),
		AlertsEnabled:   alertsEnabled,
	}

	if cfg.FirestoreProjectID == "" {
		return nil, errors.New("FIRESTORE_PROJECT_ID is required")
	}
	if cfg.AdminPassword == "" {
		return nil, errors.New("ADMIN_PASSWORD is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("ADMIN_JWT_SECRET is required")
	}
	if cfg.GeoapifyEnabled && cfg.GeoapifyKey == "" {
		return nil, errors.New("GEOAPIFY_ENABLED is true but GEOAPIFY_KEY is not set")
	}
	if cfg.WeatherEnabled && cfg.WeatherKey == "" {
		return nil, errors.New("WEATHER_ENABLED is true but WEATHER_KEY is not set")
	}
	if cfg.AlertsEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("ALERTS_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseGeoapifyCacheSize() int {
	if s := os.Getenv("GEOAPIFY_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

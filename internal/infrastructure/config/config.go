package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers         []string
	ConsumerGroup   string
	DisburseTopic   string
	DeadLetterTopic string
	EventTopic      string
}

type IssuanceConfig struct {
	SessionTTL     time.Duration
	EligibilityTTL time.Duration
	IdempotencyTTL time.Duration
	LockTTL        time.Duration
	CooldownWindow time.Duration
	WorkerCount    int
}

type Config struct {
	GRPCPort    int
	HTTPPort    int
	DB          DatabaseConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Issuance    IssuanceConfig
	OTLPAddr    string
	ServiceName string
}

func (c Config) Validate() {
	if c.DB.Password == "" {
		panic("DB_PASSWORD environment variable is required")
	}
}

func Load() Config {
	return Config{
		GRPCPort: getEnvInt("GRPC_PORT", 9090),
		HTTPPort: getEnvInt("HTTP_PORT", 8080),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "credimart"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "credimart_lending"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:         strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			ConsumerGroup:   getEnv("KAFKA_CONSUMER_GROUP", "lending-disbursement"),
			DisburseTopic:   getEnv("KAFKA_DISBURSE_TOPIC", "lending.disbursements"),
			DeadLetterTopic: getEnv("KAFKA_DEAD_LETTER_TOPIC", "lending.disbursements.dlq"),
			EventTopic:      getEnv("KAFKA_EVENT_TOPIC", "lending.events"),
		},
		Issuance: IssuanceConfig{
			SessionTTL:     getEnvDuration("OFFER_SESSION_TTL", 10*time.Minute),
			EligibilityTTL: getEnvDuration("ELIGIBILITY_CACHE_TTL", 5*time.Minute),
			IdempotencyTTL: getEnvDuration("IDEMPOTENCY_CACHE_TTL", 5*time.Minute),
			LockTTL:        getEnvDuration("ISSUE_LOCK_TTL", 30*time.Second),
			CooldownWindow: getEnvDuration("ISSUE_COOLDOWN_WINDOW", 2*time.Hour),
			WorkerCount:    getEnvInt("DISBURSE_WORKERS", 3),
		},
		OTLPAddr:    getEnv("OTLP_ADDR", "localhost:4317"),
		ServiceName: "lending-service",
	}
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

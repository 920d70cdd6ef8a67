package config

import (
	"github.com/spf13/viper"
)

// Config is read from environment variables. In a cluster the DB and AWS
// values come from the pod environment; locally the defaults point at
// docker-compose services and LocalStack.

type Config struct {
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	ServerPort string `mapstructure:"SERVER_PORT"`
	IsLocalDev bool   `mapstructure:"IS_LOCAL_DEV"`

	AWSRegion   string `mapstructure:"AWS_REGION"`
	AWSEndpoint string `mapstructure:"AWS_ENDPOINT"`

	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`

	// NotifyMode selects how notification jobs are dispatched: "inline" runs
	// the in-process worker pool, "sqs" publishes to the durable queue
	// consumed by cmd/notify-worker.
	NotifyMode          string `mapstructure:"NOTIFY_MODE"`
	NotifyQueueURL      string `mapstructure:"NOTIFY_SQS_QUEUE_URL"`
	NotifySender        string `mapstructure:"NOTIFY_SENDER"`
	NotifyWorkers       int    `mapstructure:"NOTIFY_WORKERS"`
	NotifyQueueCapacity int    `mapstructure:"NOTIFY_QUEUE_CAPACITY"`
	NotifyMaxAttempts   int    `mapstructure:"NOTIFY_MAX_ATTEMPTS"`
	NotifyDrainSeconds  int    `mapstructure:"NOTIFY_DRAIN_SECONDS"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("DB_HOST", "db")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "attendance_db")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("IS_LOCAL_DEV", false)
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("AWS_ENDPOINT", "http://localstack:4566")
	viper.SetDefault("OTLP_ENDPOINT", "jaeger:4317")
	viper.SetDefault("NOTIFY_MODE", "inline")
	viper.SetDefault("NOTIFY_SQS_QUEUE_URL", "http://localstack:4566/000000000000/attendance-notifications")
	viper.SetDefault("NOTIFY_SENDER", "no-reply@attendance-service.com")
	viper.SetDefault("NOTIFY_WORKERS", 4)
	viper.SetDefault("NOTIFY_QUEUE_CAPACITY", 256)
	viper.SetDefault("NOTIFY_MAX_ATTEMPTS", 5)
	viper.SetDefault("NOTIFY_DRAIN_SECONDS", 10)

	// Read in environment variables that match the keys.
	viper.AutomaticEnv()

	err = viper.Unmarshal(&config)
	return
}

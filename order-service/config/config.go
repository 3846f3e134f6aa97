package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServiceName   string        `mapstructure:"service_name"`
	Env           string        `mapstructure:"env"`
	Port          string        `mapstructure:"port"`
	Database      Database      `mapstructure:"database"`
	AWS           AWS           `mapstructure:"aws"`
	Collaborators Collaborators `mapstructure:"collaborators"`
	Reaper        Reaper        `mapstructure:"reaper"`
	Subscriber    Subscriber    `mapstructure:"subscriber"`
}

type Database struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	Database       string `mapstructure:"database"`
	SSLMode        string `mapstructure:"ssl_mode"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

type AWS struct {
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Region          string `mapstructure:"region"`
	EndpointSNS     string `mapstructure:"endpoint_sns"`
	EndpointSQS     string `mapstructure:"endpoint_sqs"`
	SNSTopicArn     string `mapstructure:"sns_topic_arn"`
	SQSQueueURL     string `mapstructure:"sqs_queue_url"`
}

type Collaborators struct {
	Inventory Collaborator `mapstructure:"inventory"`
	User      Collaborator `mapstructure:"user"`
}

type Collaborator struct {
	BaseURL            string `mapstructure:"base_url"`
	TimeoutSeconds     int    `mapstructure:"timeout_seconds"`
	BreakerMaxFailures uint32 `mapstructure:"breaker_max_failures"`
	BreakerOpenSeconds int    `mapstructure:"breaker_open_seconds"`
}

type Reaper struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
	ExpiryMinutes   int `mapstructure:"expiry_minutes"`
}

type Subscriber struct {
	Workers int32 `mapstructure:"workers"`
}

func ReadConfig() (*Config, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return nil, fmt.Errorf("unable to get current file")
	}

	configDir := filepath.Join(filepath.Dir(filename))
	viper.SetConfigName(getConfigName())
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir)

	// Allow environment variables to override config
	viper.AutomaticEnv()
	viper.SetEnvPrefix("ORDER")

	setDefaultsFromEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	err = viper.Unmarshal(&config)
	if err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func getConfigName() string {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		return "local"
	}
	return env
}

func setDefaultsFromEnv() {
	// Service defaults
	viper.SetDefault("service_name", "order-service")
	viper.SetDefault("env", getEnv("ENV", "local"))
	viper.SetDefault("port", getEnv("PORT", "8080"))

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "order_system")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.migrations_path", "file://migrations")

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		viper.Set("database.url", dbURL)
	}

	// AWS defaults
	viper.SetDefault("aws.access_key_id", getEnv("AWS_ACCESS_KEY_ID", "test"))
	viper.SetDefault("aws.secret_access_key", getEnv("AWS_SECRET_ACCESS_KEY", "test"))
	viper.SetDefault("aws.region", getEnv("AWS_DEFAULT_REGION", "us-east-1"))
	viper.SetDefault("aws.endpoint_sns", getEnv("AWS_ENDPOINT_URL_SNS", "http://localhost:4566"))
	viper.SetDefault("aws.endpoint_sqs", getEnv("AWS_ENDPOINT_URL_SQS", "http://localhost:4566"))
	viper.SetDefault("aws.sns_topic_arn", getEnv("SNS_TOPIC_ARN", "arn:aws:sns:us-east-1:000000000000:order-events.fifo"))
	viper.SetDefault("aws.sqs_queue_url", getEnv("SQS_QUEUE_URL", "http://localhost:4566/000000000000/order-events.fifo"))

	// Collaborator defaults
	viper.SetDefault("collaborators.inventory.base_url", getEnv("INVENTORY_SERVICE_URL", "http://localhost:8081"))
	viper.SetDefault("collaborators.inventory.timeout_seconds", 5)
	viper.SetDefault("collaborators.inventory.breaker_max_failures", 5)
	viper.SetDefault("collaborators.inventory.breaker_open_seconds", 30)
	viper.SetDefault("collaborators.user.base_url", getEnv("USER_SERVICE_URL", "http://localhost:8082"))
	viper.SetDefault("collaborators.user.timeout_seconds", 5)
	viper.SetDefault("collaborators.user.breaker_max_failures", 5)
	viper.SetDefault("collaborators.user.breaker_open_seconds", 30)

	// Reaper defaults
	viper.SetDefault("reaper.interval_seconds", 60)
	viper.SetDefault("reaper.expiry_minutes", 10)

	// Subscriber defaults
	viper.SetDefault("subscriber.workers", 8)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetDatabaseURL constructs database URL from config
func (c *Config) GetDatabaseURL() string {
	if url := viper.GetString("database.url"); url != "" {
		return url
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// ReaperInterval returns the sweep interval as a duration
func (c *Config) ReaperInterval() time.Duration {
	return time.Duration(c.Reaper.IntervalSeconds) * time.Second
}

// ReaperExpiry returns the in-flight expiry as a duration
func (c *Config) ReaperExpiry() time.Duration {
	return time.Duration(c.Reaper.ExpiryMinutes) * time.Minute
}

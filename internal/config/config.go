package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Model      ModelConfig
	Storage    StorageConfig
	Database   DatabaseConfig
	Kubernetes KubernetesConfig
	Client     ClientConfig
	Logger     LoggerConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type ModelConfig struct {
	URI               string
	Device            string
	Language          string
	MaxLength         int
	MaxItems          int
	StrictReadiness   bool
	ValidateOnStartup bool
	LoadTimeout       time.Duration
}

// Validate checks the settings the serving process cannot start without
func (m ModelConfig) Validate() error {
	if m.URI == "" {
		return errors.New("model location is required (MODEL_URI, MODEL_BUCKET_NAME/MODEL_PATH or SM_MODEL_DIR)")
	}
	if m.MaxLength <= 0 {
		return fmt.Errorf("MODEL_MAX_LENGTH must be positive, got %d", m.MaxLength)
	}
	if m.MaxItems <= 0 {
		return fmt.Errorf("MODEL_MAX_ITEMS must be positive, got %d", m.MaxItems)
	}
	return nil
}

// StorageConfig configures the S3 artifact store
type StorageConfig struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PathStyle bool
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type KubernetesConfig struct {
	Enabled        bool
	InCluster      bool
	KubeConfigPath string
	DefaultNS      string
}

// ClientConfig is used by servingctl to reach a running endpoint
type ClientConfig struct {
	Endpoint string
	Timeout  time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("MODEL_URI", "")
	v.SetDefault("MODEL_BUCKET_NAME", "")
	v.SetDefault("MODEL_PATH", "")
	v.SetDefault("SM_MODEL_DIR", "")
	v.SetDefault("MODEL_DEVICE", "auto")
	v.SetDefault("MODEL_LANGUAGE", "english")
	v.SetDefault("MODEL_MAX_LENGTH", 60)
	v.SetDefault("MODEL_MAX_ITEMS", 256)
	v.SetDefault("MODEL_STRICT_READINESS", true)
	v.SetDefault("MODEL_VALIDATE_ON_STARTUP", false)
	v.SetDefault("MODEL_LOAD_TIMEOUT", "2m")
	v.SetDefault("S3_REGION", "")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_PATH_STYLE", false)
	v.SetDefault("DATABASE_ENABLED", false)
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "")
	v.SetDefault("DATABASE_NAME", "model_serving")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 2)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DATABASE_AUTO_MIGRATE", true)
	v.SetDefault("KUBERNETES_ENABLED", true)
	v.SetDefault("KUBERNETES_IN_CLUSTER", false)
	v.SetDefault("KUBERNETES_KUBECONFIG", "")
	v.SetDefault("KUBERNETES_NAMESPACE", "model-serving")
	v.SetDefault("SERVING_ENDPOINT", "http://localhost:8080")
	v.SetDefault("SERVING_TIMEOUT", "60s")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Model: ModelConfig{
			URI:               resolveModelURI(v),
			Device:            v.GetString("MODEL_DEVICE"),
			Language:          v.GetString("MODEL_LANGUAGE"),
			MaxLength:         v.GetInt("MODEL_MAX_LENGTH"),
			MaxItems:          v.GetInt("MODEL_MAX_ITEMS"),
			StrictReadiness:   v.GetBool("MODEL_STRICT_READINESS"),
			ValidateOnStartup: v.GetBool("MODEL_VALIDATE_ON_STARTUP"),
			LoadTimeout:       parseDuration(v.GetString("MODEL_LOAD_TIMEOUT"), 2*time.Minute),
		},
		Storage: StorageConfig{
			Region:    v.GetString("S3_REGION"),
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			PathStyle: v.GetBool("S3_PATH_STYLE"),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("DATABASE_ENABLED"),
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetInt("DATABASE_PORT"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			Name:            v.GetString("DATABASE_NAME"),
			SSLMode:         v.GetString("DATABASE_SSLMODE"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: parseDuration(v.GetString("DATABASE_CONN_MAX_LIFETIME"), 30*time.Minute),
			AutoMigrate:     v.GetBool("DATABASE_AUTO_MIGRATE"),
		},
		Kubernetes: KubernetesConfig{
			Enabled:        v.GetBool("KUBERNETES_ENABLED"),
			InCluster:      v.GetBool("KUBERNETES_IN_CLUSTER"),
			KubeConfigPath: v.GetString("KUBERNETES_KUBECONFIG"),
			DefaultNS:      v.GetString("KUBERNETES_NAMESPACE"),
		},
		Client: ClientConfig{
			Endpoint: v.GetString("SERVING_ENDPOINT"),
			Timeout:  parseDuration(v.GetString("SERVING_TIMEOUT"), 60*time.Second),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	return cfg, nil
}

// resolveModelURI prefers MODEL_URI, then MODEL_BUCKET_NAME + MODEL_PATH, then SM_MODEL_DIR
func resolveModelURI(v *viper.Viper) string {
	if uri := strings.TrimSpace(v.GetString("MODEL_URI")); uri != "" {
		return uri
	}
	if bucket := strings.TrimSpace(v.GetString("MODEL_BUCKET_NAME")); bucket != "" {
		return fmt.Sprintf("s3://%s/%s", bucket, strings.TrimPrefix(v.GetString("MODEL_PATH"), "/"))
	}
	return strings.TrimSpace(v.GetString("SM_MODEL_DIR"))
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

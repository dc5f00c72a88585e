package config

import (
	"alcyxob/hyrox-trainer/internal/analysis"
	"alcyxob/hyrox-trainer/internal/tracking"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Database drivers.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Engine   EngineConfig   `mapstructure:"engine"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"`
	URI        string `mapstructure:"uri"`
	Name       string `mapstructure:"name"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// S3Config configures the export bucket. Exports are unavailable unless
// Enabled is set.
type S3Config struct {
	Enabled         bool          `mapstructure:"enabled"`
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	BucketName      string        `mapstructure:"bucket_name"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	PresignExpiry   time.Duration `mapstructure:"presign_expiry"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"` // lifetime of tokens minted by devtoken
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EngineConfig carries the heuristic constants of the training engine.
type EngineConfig struct {
	Missed   tracking.DetectorConfig `mapstructure:"missed"`
	Analysis analysis.Config         `mapstructure:"analysis"`
}

// LoadConfig reads configuration from config.yaml in path, if present, and
// from environment variables, e.g. DATABASE_DRIVER or
// ENGINE_ANALYSIS_MODIFIER_COMMIT_THRESHOLD.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	// server.address -> SERVER_ADDRESS
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "hyrox_trainer")
	v.SetDefault("database.sqlite_path", "hyrox.sqlite3")
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.presign_expiry", "15m")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "1h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	// Every engine key needs a default for env overrides to reach it.
	if err = setDefaults(v, "engine.missed", tracking.DefaultDetectorConfig()); err != nil {
		return Config{}, err
	}
	if err = setDefaults(v, "engine.analysis", analysis.DefaultConfig()); err != nil {
		return Config{}, err
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err = config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

func setDefaults(v *viper.Viper, prefix string, defaults any) error {
	values := map[string]any{}
	if err := mapstructure.Decode(defaults, &values); err != nil {
		return fmt.Errorf("decode %s defaults: %w", prefix, err)
	}
	for key, value := range values {
		v.SetDefault(prefix+"."+key, value)
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	var problems []error
	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.URI == "" || c.Database.Name == "" {
			problems = append(problems, errors.New("database.uri and database.name are required for mongo"))
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			problems = append(problems, errors.New("database.sqlite_path is required for sqlite"))
		}
	case DriverMemory:
	default:
		problems = append(problems, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}
	if c.S3.Enabled && c.S3.BucketName == "" {
		problems = append(problems, errors.New("s3.bucket_name is required when s3 is enabled"))
	}
	if c.JWT.Secret == "" {
		problems = append(problems, errors.New("jwt.secret is required"))
	}
	if err := c.Engine.Missed.Validate(); err != nil {
		problems = append(problems, fmt.Errorf("engine.missed: %w", err))
	}
	if err := c.Engine.Analysis.Validate(); err != nil {
		problems = append(problems, fmt.Errorf("engine.analysis: %w", err))
	}
	return errors.Join(problems...)
}

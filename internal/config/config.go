package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// Database Configuration
	Database DatabaseConfig `json:"database"`

	// Token revocation store
	Redis RedisConfig `json:"redis"`

	// Media blob backends
	MongoDB MongoDBConfig `json:"mongodb"`
	MinIO   MinIOConfig   `json:"minio"`
	Storage StorageConfig `json:"storage"`

	// Activity events
	Kafka    KafkaConfig    `json:"kafka"`
	Activity ActivityConfig `json:"activity"`

	Auth    AuthConfig    `json:"auth"`
	Tracing TracingConfig `json:"tracing"`

	// Logging Configuration
	Logging LoggingConfig `json:"logging"`

	Seed SeedConfig `json:"seed"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port            string `json:"port"`
	Host            string `json:"host"`
	GRPCPort        string `json:"grpc_port"`
	ReadTimeout     int    `json:"read_timeout"`  // Seconds
	WriteTimeout    int    `json:"write_timeout"` // Seconds
	ShutdownTimeout int    `json:"shutdown_timeout"`
	Environment     string `json:"environment"` // development, staging, production
	AllowedOrigin   string `json:"allowed_origin"`
}

// DatabaseConfig selects the store backend and holds MySQL/SQLite settings
type DatabaseConfig struct {
	Driver       string `json:"driver"` // memory, mysql, sqlite
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	SQLitePath   string `json:"sqlite_path"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

type RedisConfig struct {
	Addr     string `json:"addr"` // empty keeps revocations in memory
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type MongoDBConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
	Bucket   string `json:"bucket"`
}

type MinIOConfig struct {
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	UseSSL    bool   `json:"use_ssl"`
}

// StorageConfig picks where uploaded media lands
type StorageConfig struct {
	Backend       string `json:"backend"` // local, gridfs, minio
	LocalDir      string `json:"local_dir"`
	MaxFileSizeMB int    `json:"max_file_size_mb"`
	MaxFiles      int    `json:"max_files"`
}

type KafkaConfig struct {
	Brokers []string `json:"brokers"` // empty disables the Kafka observer
	Topic   string   `json:"topic"`
}

type ActivityConfig struct {
	Workers           int  `json:"workers"`
	ChannelBufferSize int  `json:"channel_buffer_size"`
	Enabled           bool `json:"enabled"`
}

type AuthConfig struct {
	JWTSecret     string `json:"-"`
	TokenTTLHours int    `json:"token_ttl_hours"`
	Issuer        string `json:"issuer"`
}

type TracingConfig struct {
	Endpoint    string  `json:"endpoint"` // OTLP/HTTP host:port, empty disables export
	ServiceName string  `json:"service_name"`
	Insecure    bool    `json:"insecure"`
	SampleRatio float64 `json:"sample_ratio"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level"`       // debug, info, warn, error
	Format     string `json:"format"`      // json, console
	OutputPath string `json:"output_path"` // stdout, stderr, or file path
}

type SeedConfig struct {
	Demo bool `json:"demo"`
}

// LoadConfig reads .env (if present) and then the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "5000"),
			Host:            getEnv("HOST", "0.0.0.0"),
			GRPCPort:        getEnv("GRPC_PORT", "9090"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 60),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigin:   getEnv("ALLOWED_ORIGIN", "*"),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(getEnv("DB_DRIVER", "memory")),
			Host:         getEnv("MYSQL_HOST", "localhost"),
			Port:         getEnv("MYSQL_PORT", "3306"),
			Username:     getEnv("MYSQL_USERNAME", "redshare"),
			Password:     getEnv("MYSQL_PASSWORD", "redshare123"),
			DatabaseName: getEnv("MYSQL_DATABASE", "redshare"),
			SQLitePath:   getEnv("SQLITE_PATH", "redshare.db"),
			MaxOpenConns: getEnvAsInt("MYSQL_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("MYSQL_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		MongoDB: MongoDBConfig{
			Host:     getEnv("MONGO_HOST", "localhost"),
			Port:     getEnv("MONGO_PORT", "27017"),
			Username: getEnv("MONGO_USERNAME", ""),
			Password: getEnv("MONGO_PASSWORD", ""),
			Database: getEnv("MONGO_DATABASE", "redshare"),
			Bucket:   getEnv("MONGO_BUCKET", "media"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "redshare-media"),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(getEnv("STORAGE_BACKEND", "local")),
			LocalDir:      getEnv("UPLOAD_DIR", "uploads"),
			MaxFileSizeMB: getEnvAsInt("MAX_FILE_SIZE_MB", 100),
			MaxFiles:      getEnvAsInt("MAX_FILES", 10),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsSlice("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_TOPIC", "redshare.activity"),
		},
		Activity: ActivityConfig{
			Workers:           getEnvAsInt("ACTIVITY_WORKERS", 4),
			ChannelBufferSize: getEnvAsInt("ACTIVITY_BUFFER", 1000),
			Enabled:           getEnvAsBool("ACTIVITY_ENABLED", true),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "redshare-dev-secret"),
			TokenTTLHours: getEnvAsInt("TOKEN_TTL_HOURS", 24),
			Issuer:        getEnv("JWT_ISSUER", "redshare"),
		},
		Tracing: TracingConfig{
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "redshare"),
			Insecure:    getEnvAsBool("OTEL_INSECURE", true),
			SampleRatio: getEnvAsFloat("OTEL_SAMPLE_RATIO", 1.0),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
		Seed: SeedConfig{
			Demo: getEnvAsBool("SEED_DEMO", false),
		},
	}
}

func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

func (cfg *Config) GetMongoURI() string {
	m := cfg.MongoDB
	if m.Username != "" && m.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=admin", m.Username, m.Password, m.Host, m.Port, m.Database)
	}
	return fmt.Sprintf("mongodb://%s:%s/%s", m.Host, m.Port, m.Database)
}

func (cfg *Config) HTTPAddr() string {
	return cfg.Server.Host + ":" + cfg.Server.Port
}

func (cfg *Config) GRPCAddr() string {
	return cfg.Server.Host + ":" + cfg.Server.GRPCPort
}

func (cfg *Config) TokenTTL() time.Duration {
	return time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
}

func (cfg *Config) MaxUploadBytes() int64 {
	return int64(cfg.Storage.MaxFileSizeMB) << 20
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// comma separated, blanks dropped
func getEnvAsSlice(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

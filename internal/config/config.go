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

const (
	ProviderCloudinary = "cloudinary"
	ProviderSupabase   = "supabase"
)

type Config struct {
	Server     ServerConfig
	Cloudinary CloudinaryConfig
	Supabase   SupabaseConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	RabbitMQ   RabbitMQConfig
	Auth       AuthConfig
	Upload     UploadConfig
	CORS       CORSConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	BaseURL   string
	Timeout   time.Duration
}

type SupabaseConfig struct {
	URL    string
	Key    string
	Bucket string
}

type DatabaseConfig struct {
	DSN string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type RabbitMQConfig struct {
	URL string
}

type AuthConfig struct {
	Enabled   bool
	JWTSecret string
	TokenTTL  time.Duration
}

type UploadConfig struct {
	Provider      string
	MaxFileSize   int64
	AllowedTypes  []string
	DefaultFolder string
}

type CORSConfig struct {
	AllowOrigin  string
	AllowMethods string
	AllowHeaders string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			BaseURL:   getEnv("CLOUDINARY_BASE_URL", "https://api.cloudinary.com"),
			Timeout:   getDuration("CLOUDINARY_TIMEOUT", 30*time.Second),
		},
		Supabase: SupabaseConfig{
			URL:    getEnv("SUPABASE_URL", ""),
			Key:    getEnv("SUPABASE_KEY", ""),
			Bucket: getEnv("SUPABASE_BUCKET", ""),
		},
		Database: DatabaseConfig{
			DSN: getEnv("DATABASE_DSN", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getDuration("CACHE_TTL", 5*time.Minute),
		},
		RabbitMQ: RabbitMQConfig{
			URL: getEnv("RABBITMQ_URL", ""),
		},
		Auth: AuthConfig{
			Enabled:   getEnvAsBool("AUTH_ENABLED", false),
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getDuration("TOKEN_TTL", 24*time.Hour),
		},
		Upload: UploadConfig{
			Provider:      getEnv("STORAGE_PROVIDER", ProviderCloudinary),
			MaxFileSize:   getEnvAsInt64("MAX_FILE_SIZE", 5*1024*1024),
			AllowedTypes:  []string{"image/jpeg", "image/jpg", "image/png", "image/webp"},
			DefaultFolder: getEnv("DEFAULT_FOLDER", "uploads"),
		},
		CORS: CORSConfig{
			AllowOrigin:  getEnv("CORS_ALLOW_ORIGIN", "*"),
			AllowMethods: "GET, POST, OPTIONS",
			AllowHeaders: "Content-Type, Authorization, X-Client-Info, Apikey",
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate fails startup when a required secret is unset. Credentials are
// never defaulted in source.
func (c *Config) validate() error {
	switch c.Upload.Provider {
	case ProviderCloudinary:
		var missing []string
		if c.Cloudinary.CloudName == "" {
			missing = append(missing, "CLOUDINARY_CLOUD_NAME")
		}
		if c.Cloudinary.APIKey == "" {
			missing = append(missing, "CLOUDINARY_API_KEY")
		}
		if c.Cloudinary.APISecret == "" {
			missing = append(missing, "CLOUDINARY_API_SECRET")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
		}
	case ProviderSupabase:
		if c.Supabase.URL == "" || c.Supabase.Key == "" || c.Supabase.Bucket == "" {
			return fmt.Errorf("missing required configuration: SUPABASE_URL, SUPABASE_KEY and SUPABASE_BUCKET must be set")
		}
	default:
		return fmt.Errorf("unknown storage provider: %q", c.Upload.Provider)
	}

	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("missing required configuration: JWT_SECRET (AUTH_ENABLED is set)")
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	OverlapModeVertex = "vertex"
	OverlapModeStrict = "strict"
)

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	StorageDriver string
	DBUrl         string
	JWTSecret     string
	AllowedOrigin string
	// DB Config
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration
	// Zones
	CacheZoneTTL    time.Duration
	ZoneOverlapMode string
	ZoneLockKey     int64
	// Variant listing
	VariantDefaultPageSize int
	VariantMaxPageSize     int
	ZoneDefaultPageSize    int
	ZoneMaxPageSize        int
	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int
	// Observability
	MetricsEnabled bool
	// Events
	NATSUrl           string
	NATSSubjectPrefix string
	// R2 Storage
	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2BucketName      string
	R2PublicURL       string
	R2UploadTimeout   time.Duration
	ZoneMapObjectKey  string
}

func LoadConfig() *Config {
	// 1. Check if a specific config file is requested via env var
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		// 2. Default fallback: .env is optional, system env vars win in containers
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("CRITICAL: invalid configuration: %v", err)
	}
	if cfg.JWTSecret == "default_secret_CHANGE_ME" {
		log.Println("WARNING: Using default JWT secret. Setting up for failure in production.")
	}
	return cfg
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		StorageDriver: getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		DBUrl:         getEnv("DB_DSN", ""),
		JWTSecret:     getEnv("JWT_SECRET", "default_secret_CHANGE_ME"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),

		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 50),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 10),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", time.Minute*15),

		// Zone defaults: 1m active-zone cache, vertex overlap semantics
		CacheZoneTTL:    getDurationEnv("CACHE_ZONE_TTL", time.Minute),
		ZoneOverlapMode: getEnv("ZONE_OVERLAP_MODE", OverlapModeVertex),
		ZoneLockKey:     getInt64Env("ZONE_LOCK_KEY", 720301),

		VariantDefaultPageSize: getIntEnv("VARIANT_DEFAULT_PAGE_SIZE", 10),
		VariantMaxPageSize:     getIntEnv("VARIANT_MAX_PAGE_SIZE", 100),
		ZoneDefaultPageSize:    getIntEnv("ZONE_DEFAULT_PAGE_SIZE", 10),
		ZoneMaxPageSize:        getIntEnv("ZONE_MAX_PAGE_SIZE", 100),

		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 50),

		MetricsEnabled: getBoolEnv("METRICS_ENABLED", true),

		NATSUrl:           getEnv("NATS_URL", ""),
		NATSSubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "geozone.zone"),

		// R2 Storage
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2AccessKeySecret: getEnv("R2_ACCESS_KEY_SECRET", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),
		R2UploadTimeout:   getDurationEnv("R2_UPLOAD_TIMEOUT", 30*time.Second),
		ZoneMapObjectKey:  getEnv("ZONE_MAP_OBJECT_KEY", "zones/map.geojson"),
	}
}

func (c *Config) Validate() error {
	var errs []error

	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.DBUrl == "" {
			errs = append(errs, errors.New("DB_DSN is required when STORAGE_DRIVER=postgres"))
		}
	case StorageDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	if c.ZoneOverlapMode != OverlapModeVertex && c.ZoneOverlapMode != OverlapModeStrict {
		errs = append(errs, fmt.Errorf("unknown ZONE_OVERLAP_MODE %q", c.ZoneOverlapMode))
	}
	if c.VariantDefaultPageSize < 1 {
		errs = append(errs, errors.New("VARIANT_DEFAULT_PAGE_SIZE must be positive"))
	}
	if c.VariantMaxPageSize < 1 {
		errs = append(errs, errors.New("VARIANT_MAX_PAGE_SIZE must be positive"))
	}
	if c.ZoneDefaultPageSize < 1 {
		errs = append(errs, errors.New("ZONE_DEFAULT_PAGE_SIZE must be positive"))
	}
	if c.ZoneMaxPageSize < 1 {
		errs = append(errs, errors.New("ZONE_MAX_PAGE_SIZE must be positive"))
	}
	if c.CacheZoneTTL < 0 {
		errs = append(errs, errors.New("CACHE_ZONE_TTL must not be negative"))
	}

	return errors.Join(errs...)
}

// R2Enabled reports whether object storage credentials are configured.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2AccessKeySecret != "" && c.R2BucketName != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getInt64Env(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
		log.Printf("Invalid int64 for %s, using fallback", key)
	}
	return fallback
}

package config

import (
	"errors"
	"fmt"
	"strings"

	"spareparts/catalog/internal/domain"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Assembler  AssemblerConfig  `mapstructure:"assembler"`
	Tiers      TiersConfig      `mapstructure:"tiers"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	PriceList  PriceListConfig  `mapstructure:"price_list"`
	Storefront StorefrontConfig `mapstructure:"storefront"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// CatalogConfig locates the catalog file and the batch definitions
type CatalogConfig struct {
	Path         string `mapstructure:"path"`
	Version      string `mapstructure:"version"` // Overrides the file's version when set
	BatchesDir   string `mapstructure:"batches_dir"`
	CategoryID   string `mapstructure:"category_id"`
	CategoryName string `mapstructure:"category_name"`
}

// AssemblerConfig holds the house defaults for assembled parts
type AssemblerConfig struct {
	CounterStart  int     `mapstructure:"counter_start"`
	Currency      string  `mapstructure:"currency"`
	Stock         string  `mapstructure:"stock"`
	Location      string  `mapstructure:"location"`
	Warranty      string  `mapstructure:"warranty"`
	RandomSeed    uint64  `mapstructure:"random_seed"` // 0 seeds from the clock
	BulkLowRatio  float64 `mapstructure:"bulk_low_ratio"`
	BulkHighRatio float64 `mapstructure:"bulk_high_ratio"`
}

type TiersConfig struct {
	MinimumOrder domain.Tiers[int]    `mapstructure:"minimum_order"`
	LeadTime     domain.Tiers[string] `mapstructure:"lead_time"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	Database     int    `mapstructure:"database"`
	StreamPrefix string `mapstructure:"stream_prefix"`
	KeyPrefix    string `mapstructure:"key_prefix"`
	StreamMaxLen int64  `mapstructure:"stream_max_len"` // Approximate trim, 0 keeps everything
}

// PriceListConfig controls how supplier price lists are fetched over HTTP
type PriceListConfig struct {
	Timeout              int      `mapstructure:"timeout"`
	MaxRetries           int      `mapstructure:"max_retries"`
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
	Proxies              []string `mapstructure:"proxies"`
	ProbeURL             string   `mapstructure:"probe_url"` // Proxies that cannot reach it are dropped
}

// StorefrontConfig points at the site that renders the catalog
type StorefrontConfig struct {
	Enabled              bool     `mapstructure:"enabled"`
	BaseURL              string   `mapstructure:"base_url"`
	RevalidatePath       string   `mapstructure:"revalidate_path"` // On-demand revalidation route served by the site
	Secret               string   `mapstructure:"secret"`
	Paths                []string `mapstructure:"paths"`
	Timeout              int      `mapstructure:"timeout"`
	MaxRetries           int      `mapstructure:"max_retries"`
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
}

// StorageConfig describes the bucket the catalog artifact is uploaded to
type StorageConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Object        string `mapstructure:"object"`
	HistoryPrefix string `mapstructure:"history_prefix"` // Also keep a per-run copy when set
	UseSSL        bool   `mapstructure:"use_ssl"`
}

type MetricsConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	PushGateway string `mapstructure:"push_gateway"`
	Job         string `mapstructure:"job"`
}

// Load loads configuration from YAML file with environment variable overrides.
// An empty configFile searches for config.yaml in the current directory; a
// missing file there is not an error since every key has a default.
func Load(configFile string) (*Config, error) {
	// .env is optional and only feeds the environment
	_ = godotenv.Load()

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("catalog.path", "./app/data/spare-parts-database-COMPLETE.json")
	v.SetDefault("catalog.version", "")
	v.SetDefault("catalog.batches_dir", "./batches")
	v.SetDefault("catalog.category_id", "generators")
	v.SetDefault("catalog.category_name", "Generator Parts")

	v.SetDefault("assembler.counter_start", 10000)
	v.SetDefault("assembler.currency", "KES")
	v.SetDefault("assembler.stock", "In Stock")
	v.SetDefault("assembler.location", "Nairobi Warehouse")
	v.SetDefault("assembler.warranty", "12 months")
	v.SetDefault("assembler.random_seed", 0)
	v.SetDefault("assembler.bulk_low_ratio", 0.80)
	v.SetDefault("assembler.bulk_high_ratio", 0.85)

	minimumOrder := domain.DefaultMinimumOrderTiers()
	v.SetDefault("tiers.minimum_order.steps", tierSteps(minimumOrder.Steps))
	v.SetDefault("tiers.minimum_order.default", minimumOrder.Default)
	leadTime := domain.DefaultLeadTimeTiers()
	v.SetDefault("tiers.lead_time.steps", tierSteps(leadTime.Steps))
	v.SetDefault("tiers.lead_time.default", leadTime.Default)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "spareparts")
	v.SetDefault("database.user", "spareparts_user")
	v.SetDefault("database.password", "spareparts_pass")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.stream_prefix", "catalog:stream:")
	v.SetDefault("redis.key_prefix", "catalog:counter:")
	v.SetDefault("redis.stream_max_len", 10000)

	v.SetDefault("price_list.timeout", 30)
	v.SetDefault("price_list.max_retries", 3)
	v.SetDefault("price_list.max_requests_per_second", 2)
	v.SetDefault("price_list.proxies", []string{})
	v.SetDefault("price_list.probe_url", "")

	v.SetDefault("storefront.enabled", false)
	v.SetDefault("storefront.base_url", "http://localhost:3000")
	v.SetDefault("storefront.revalidate_path", "/api/revalidate")
	v.SetDefault("storefront.secret", "")
	v.SetDefault("storefront.paths", []string{"/generators/spare-parts", "/generator-parts"})
	v.SetDefault("storefront.timeout", 30)
	v.SetDefault("storefront.max_retries", 3)
	v.SetDefault("storefront.max_requests_per_second", 5)

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.bucket", "catalog")
	v.SetDefault("storage.object", "spare-parts-database.json")
	v.SetDefault("storage.history_prefix", "history/")
	v.SetDefault("storage.use_ssl", false)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.push_gateway", "http://localhost:9091")
	v.SetDefault("metrics.job", "catalog_builder")
}

// tierSteps renders steps the way they would appear in config.yaml so the
// defaults decode through the same path as user-supplied tables.
func tierSteps[T any](steps []domain.Tier[T]) []map[string]any {
	out := make([]map[string]any, 0, len(steps))
	for _, step := range steps {
		out = append(out, map[string]any{"above": step.Above, "value": step.Value})
	}
	return out
}

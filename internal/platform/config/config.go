package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pharmaguard/pkg/platform/textutil"
)

// Config is the full runtime configuration. Values come from defaults, then
// an optional YAML file, then environment variables.
type Config struct {
	Server          Server        `yaml:"server"`
	Registry        Registry      `yaml:"registry"`
	Ledger          Ledger        `yaml:"ledger"`
	ProviderTimeout time.Duration `yaml:"provider_timeout"`
	BulkConcurrency int           `yaml:"bulk_concurrency"`
	Redis           RedisConfig   `yaml:"redis"`
	Kafka           Kafka         `yaml:"kafka"`
	Auth            Auth          `yaml:"auth"`
	RateLimit       RateLimit     `yaml:"rate_limit"`
	Log             Log           `yaml:"log"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `yaml:"addr"`
	TrustProxy      bool          `yaml:"trust_proxy"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type Registry struct {
	URL string `yaml:"url"`
	// Breaker settings for the registry circuit.
	FailureThreshold int           `yaml:"failure_threshold"`
	Cooldown         time.Duration `yaml:"cooldown"`
	// CacheTTL bounds how long a registry lookup is reused. Zero, the
	// default, queries the registry on every verification.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Ledger points at the gateway that fronts the batch contract. An empty
// ContractAddress runs the engine degraded.
type Ledger struct {
	GatewayURL      string `yaml:"gateway_url"`
	ContractAddress string `yaml:"contract_address"`
}

// RedisConfig configures the shared rate limit and registry cache stores.
// An empty URL keeps both in memory.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Kafka configures the audit stream. No brokers keeps audit in memory.
type Kafka struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	// SampleRate is the fraction of operations events streamed, in [0, 1].
	SampleRate float64 `yaml:"sample_rate"`
}

type Auth struct {
	JWTSigningKey string        `yaml:"jwt_signing_key"`
	Issuer        string        `yaml:"issuer"`
	Audience      string        `yaml:"audience"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
}

type RateLimit struct {
	PerMinute int `yaml:"per_minute"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Registry: Registry{
			URL:              "https://api.fda.gov",
			FailureThreshold: 5,
			Cooldown:         30 * time.Second,
		},
		ProviderTimeout: 5 * time.Second,
		BulkConcurrency: 4,
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: Kafka{Topic: "pharmaguard.audit", SampleRate: 1},
		Auth: Auth{
			Issuer:   "pharmaguard",
			Audience: "pharmaguard-api",
			TokenTTL: 24 * time.Hour,
		},
		RateLimit: RateLimit{PerMinute: 60},
		Log:       Log{Level: "info", Format: "json"},
	}
}

// FromEnv builds a Config from defaults and environment variables.
func FromEnv() (Config, error) {
	cfg := Default()
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Load reads an optional YAML file over the defaults and then applies
// environment overrides. An empty path behaves like FromEnv.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the server cannot run with.
func (c Config) Validate() error {
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("provider_timeout must be positive")
	}
	if c.BulkConcurrency < 1 {
		return fmt.Errorf("bulk_concurrency must be at least 1")
	}
	if c.RateLimit.PerMinute < 1 {
		return fmt.Errorf("rate_limit.per_minute must be at least 1")
	}
	if c.Kafka.SampleRate < 0 || c.Kafka.SampleRate > 1 {
		return fmt.Errorf("kafka.sample_rate must be in [0, 1]")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required when brokers are set")
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}
	return nil
}

// LedgerConfigured reports whether a contract address is set.
func (c Config) LedgerConfigured() bool {
	return c.Ledger.ContractAddress != ""
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []string
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", key, err))
				return
			}
			*dst = d
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", key, err))
				return
			}
			*dst = n
		}
	}

	str("PHARMAGUARD_ADDR", &cfg.Server.Addr)
	if v, ok := lookup("TRUST_PROXY"); ok {
		cfg.Server.TrustProxy = v == "true"
	}
	str("FDA_API_URL", &cfg.Registry.URL)
	dur("REGISTRY_CACHE_TTL", &cfg.Registry.CacheTTL)
	str("LEDGER_GATEWAY_URL", &cfg.Ledger.GatewayURL)
	str("CONTRACT_ADDRESS", &cfg.Ledger.ContractAddress)
	dur("PROVIDER_TIMEOUT", &cfg.ProviderTimeout)
	num("BULK_CONCURRENCY", &cfg.BulkConcurrency)
	str("REDIS_URL", &cfg.Redis.URL)
	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		cfg.Kafka.Brokers = textutil.SplitList(v)
	}
	str("AUDIT_TOPIC", &cfg.Kafka.Topic)
	if v, ok := lookup("AUDIT_SAMPLE_RATE"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("AUDIT_SAMPLE_RATE: %v", err))
		} else {
			cfg.Kafka.SampleRate = f
		}
	}
	str("JWT_SIGNING_KEY", &cfg.Auth.JWTSigningKey)
	num("RATE_LIMIT_PER_MINUTE", &cfg.RateLimit.PerMinute)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %s", strings.Join(errs, "; "))
	}
	return nil
}

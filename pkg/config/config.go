package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

type Config struct {
	Environment string `koanf:"environment"`

	DatabaseURL               string        `koanf:"database_url"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay"`

	ServerHost         string   `koanf:"server_host"`
	ServerPort         int      `koanf:"server_port"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	StorageEndpoint          string  `koanf:"storage_endpoint"`
	StorageRegion            string  `koanf:"storage_region"`
	StorageAccessKeyID       string  `koanf:"storage_access_key_id"`
	StorageSecretAccessKey   string  `koanf:"storage_secret_access_key"`
	StorageUsePathStyle      bool    `koanf:"storage_use_path_style"`
	StorageBucket            string  `koanf:"storage_bucket"`
	StorageRequestsPerSecond float64 `koanf:"storage_requests_per_second"`
	StorageBreakerFailures   uint32  `koanf:"storage_breaker_failures"`

	ReconcileConcurrency int `koanf:"reconcile_concurrency"`
}

const (
	configFileENV = "CONFIG_FILE"
	portENV       = "PORT"
)

// requiredFields are checked after all layers are merged.
var requiredFields = []string{"database_url"}

func defaults() *Config {
	return &Config{
		Environment:               "development",
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		ServerHost:                "0.0.0.0",
		ServerPort:                10000,
		CORSAllowedOrigins: []string{
			"https://readsphere.vercel.app",
			"http://localhost:3000",
		},
		StorageRegion:          "us-east-1",
		StorageUsePathStyle:    true,
		StorageBucket:          "book-pdfs",
		StorageBreakerFailures: 5,
		ReconcileConcurrency:   1,
	}
}

// New builds the config from, in increasing priority: defaults, the YAML file
// at $CONFIG_FILE (if it exists), and environment variables. A .env file in
// the working directory is loaded into the environment first.
func New() (*Config, error) {
	// A missing .env is the normal case outside of local development.
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load config defaults")
	}

	if path := os.Getenv(configFileENV); path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, errors.Wrapf(err, "failed to load config file %s", path)
			}
		}
	}

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load environment variables")
	}

	// Hosting platforms hand out the listen port as $PORT.
	if port, err := strconv.Atoi(os.Getenv(portENV)); err == nil && os.Getenv("SERVER_PORT") == "" {
		if err := k.Set("server_port", port); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	if err := splitListField(k, "cors_allowed_origins"); err != nil {
		return nil, err
	}

	var missing []string
	for _, key := range requiredFields {
		if k.String(key) == "" {
			missing = append(missing, strings.ToUpper(key)+" ("+key+")")
		}
	}
	if len(missing) > 0 {
		return nil, errors.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	return cfg, nil
}

// NewForTest returns a config backed by an in-memory sqlite database.
func NewForTest() *Config {
	cfg := defaults()
	cfg.Environment = "test"
	cfg.DatabaseURL = ":memory:"
	cfg.DatabaseConnectRetryCount = 1
	cfg.DatabaseConnectRetryDelay = 0
	cfg.ServerHost = "127.0.0.1"
	cfg.ServerPort = 0
	return cfg
}

// ValidateStorage makes sure everything the object store client needs is set.
// Only the maintenance scripts talk to storage, so this isn't part of New.
func (cfg *Config) ValidateStorage() error {
	var missing []string
	if cfg.StorageEndpoint == "" {
		missing = append(missing, "STORAGE_ENDPOINT")
	}
	if cfg.StorageAccessKeyID == "" {
		missing = append(missing, "STORAGE_ACCESS_KEY_ID")
	}
	if cfg.StorageSecretAccessKey == "" {
		missing = append(missing, "STORAGE_SECRET_ACCESS_KEY")
	}
	if cfg.StorageBucket == "" {
		missing = append(missing, "STORAGE_BUCKET")
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required storage config: %s", strings.Join(missing, ", "))
	}
	return nil
}

// splitListField turns a comma-separated env value into a list, dropping
// blanks. Values that are already lists (defaults, YAML) are left alone.
func splitListField(k *koanf.Koanf, key string) error {
	raw, ok := k.Get(key).(string)
	if !ok {
		return nil
	}

	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return errors.WithStack(k.Set(key, items))
}

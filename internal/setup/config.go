package setup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/hwdepot/rigbuilder/internal/storage"
)

// DefaultStateKey is the storage key holding the build snapshot.
const DefaultStateKey = "rigbuilder.build"

const (
	DefaultDeliveryFee = "49.00"
	DefaultCurrency    = "EUR"
	DefaultNATSSubject = "rigbuilder.orders.placed"
	EnvPrefix          = "RIGBUILDER_"
)

type Config struct {
	StateDir string         `yaml:"state_dir"`
	StateKey string         `yaml:"state_key"`
	Storage  StorageConfig  `yaml:"storage"`
	Checkout CheckoutConfig `yaml:"checkout"`
	Orders   OrdersConfig   `yaml:"orders"`
	Stock    StockConfig    `yaml:"stock"`
}

type StorageConfig struct {
	Backend     string   `yaml:"backend"`
	PostgresDSN string   `yaml:"postgres_dsn"`
	S3          S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type CheckoutConfig struct {
	DeliveryFee string `yaml:"delivery_fee"`
	Currency    string `yaml:"currency"`
}

type OrdersConfig struct {
	Dir         string `yaml:"dir"`
	NATSURL     string `yaml:"nats_url"`
	NATSSubject string `yaml:"nats_subject"`
}

type StockConfig struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	stateDir := DefaultStateDir()
	return Config{
		StateDir: stateDir,
		StateKey: DefaultStateKey,
		Storage:  StorageConfig{Backend: storage.BackendFile, S3: S3Config{Region: "us-east-1", UseSSL: true}},
		Checkout: CheckoutConfig{DeliveryFee: DefaultDeliveryFee, Currency: DefaultCurrency},
		Orders:   OrdersConfig{NATSSubject: DefaultNATSSubject},
		Stock:    StockConfig{Backend: storage.BackendFile},
	}
}

// DefaultStateDir is $XDG_STATE_HOME/rigbuilder, falling back to
// ~/.local/state/rigbuilder.
func DefaultStateDir() string {
	if dir := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); dir != "" {
		return filepath.Join(dir, "rigbuilder")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "rigbuilder")
	}
	return filepath.Join(os.TempDir(), "rigbuilder")
}

// DefaultConfigPath is $XDG_CONFIG_HOME/rigbuilder/config.yaml or the
// ~/.config equivalent.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "rigbuilder", "config.yaml")
}

// Load layers the YAML file at path over the defaults, then applies .env
// and the environment. An explicit path must exist; the default path is
// optional.
func Load(path string) (Config, error) {
	_ = godotenv.Load()
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with an explicit environment lookup and no .env.
func LoadWithEnv(path string, getenv func(string) string) (Config, error) {
	cfg := Defaults()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = firstNonEmpty(getenv(EnvPrefix+"CONFIG"), DefaultConfigPath())
		explicit = getenv(EnvPrefix+"CONFIG") != ""
	}
	if path != "" {
		if err := cfg.mergeFile(path, explicit); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	cfg.fillDerived()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			getLogger().Debug("no config file, using defaults", "path", path)
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	getLogger().Debug("config file loaded", "path", path)
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	env := func(name string) string {
		return strings.TrimSpace(getenv(EnvPrefix + name))
	}

	c.StateDir = firstNonEmpty(env("STATE_DIR"), c.StateDir)
	c.StateKey = firstNonEmpty(env("STATE_KEY"), c.StateKey)
	c.Storage.Backend = firstNonEmpty(env("STORAGE"), c.Storage.Backend)
	c.Storage.PostgresDSN = firstNonEmpty(env("POSTGRES_DSN"), getenv("DATABASE_URL"), c.Storage.PostgresDSN)
	c.Storage.S3.Endpoint = firstNonEmpty(env("S3_ENDPOINT"), c.Storage.S3.Endpoint)
	c.Storage.S3.Region = firstNonEmpty(env("S3_REGION"), c.Storage.S3.Region)
	c.Storage.S3.AccessKey = firstNonEmpty(env("S3_ACCESS_KEY"), getenv("MINIO_ROOT_USER"), c.Storage.S3.AccessKey)
	c.Storage.S3.SecretKey = firstNonEmpty(env("S3_SECRET_KEY"), getenv("MINIO_ROOT_PASSWORD"), c.Storage.S3.SecretKey)
	c.Storage.S3.Bucket = firstNonEmpty(env("S3_BUCKET"), c.Storage.S3.Bucket)
	c.Storage.S3.Prefix = firstNonEmpty(env("S3_PREFIX"), c.Storage.S3.Prefix)
	if raw := env("S3_USE_SSL"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%sS3_USE_SSL: %w", EnvPrefix, err)
		}
		c.Storage.S3.UseSSL = v
	}
	c.Checkout.DeliveryFee = firstNonEmpty(env("DELIVERY_FEE"), c.Checkout.DeliveryFee)
	c.Checkout.Currency = firstNonEmpty(env("CURRENCY"), c.Checkout.Currency)
	c.Orders.Dir = firstNonEmpty(env("ORDERS_DIR"), c.Orders.Dir)
	c.Orders.NATSURL = firstNonEmpty(env("NATS_URL"), c.Orders.NATSURL)
	c.Orders.NATSSubject = firstNonEmpty(env("NATS_SUBJECT"), c.Orders.NATSSubject)
	c.Stock.Backend = firstNonEmpty(env("STOCK_BACKEND"), c.Stock.Backend)
	c.Stock.Dir = firstNonEmpty(env("STOCK_DIR"), c.Stock.Dir)
	return nil
}

func (c *Config) fillDerived() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.Stock.Backend = strings.ToLower(strings.TrimSpace(c.Stock.Backend))
	c.Checkout.Currency = strings.ToUpper(strings.TrimSpace(c.Checkout.Currency))
	if c.Orders.Dir == "" {
		c.Orders.Dir = filepath.Join(c.StateDir, "orders")
	}
	if c.Stock.Dir == "" {
		c.Stock.Dir = filepath.Join(c.StateDir, "stock")
	}
	if c.Orders.NATSSubject == "" {
		c.Orders.NATSSubject = DefaultNATSSubject
	}
}

// Validate checks backend names and money values.
func (c Config) Validate() error {
	if strings.TrimSpace(c.StateDir) == "" {
		return errors.New("state dir is required")
	}
	if err := storage.ValidateKey(c.StateKey); err != nil {
		return fmt.Errorf("state key: %w", err)
	}
	switch c.Storage.Backend {
	case storage.BackendFile, storage.BackendMemory:
	case storage.BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.New("postgres storage needs a dsn")
		}
	case storage.BackendS3:
		if c.Storage.S3.Endpoint == "" || c.Storage.S3.Bucket == "" {
			return errors.New("s3 storage needs an endpoint and a bucket")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Stock.Backend {
	case storage.BackendFile:
	case storage.BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.New("postgres stock backend needs a dsn")
		}
	default:
		return fmt.Errorf("unknown stock backend %q", c.Stock.Backend)
	}
	if _, err := c.DeliveryFee(); err != nil {
		return err
	}
	return nil
}

// DeliveryFee parses the configured flat shipping fee.
func (c Config) DeliveryFee() (decimal.Decimal, error) {
	raw := firstNonEmpty(strings.TrimSpace(c.Checkout.DeliveryFee), DefaultDeliveryFee)
	fee, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("delivery fee %q: %w", raw, err)
	}
	if fee.IsNegative() {
		return decimal.Zero, fmt.Errorf("delivery fee %s must not be negative", fee)
	}
	return fee, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	Env       string          `yaml:"env" env:"APP_ENV" env-default:"local"`
	LogLevel  string          `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"rest"`
	JWT       JWTSecret       `yaml:"jwt"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

type StorageConfig struct {
	Driver        string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
	DatabaseUrl   string `yaml:"database_url" env:"DATABASE_URL"`
	MongoURI      string `yaml:"mongo_uri" env:"MONGO_URI"`
	MongoDatabase string `yaml:"mongo_database" env:"MONGO_DATABASE" env-default:"surveyinsights"`
}

type ServerConfig struct {
	Port           string   `yaml:"port" env:"PORT" env-default:"8080"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
	SubmitRate     float64  `yaml:"submit_rate" env:"SUBMIT_RATE" env-default:"5"`
	SubmitBurst    int      `yaml:"submit_burst" env:"SUBMIT_BURST" env-default:"20"`
}

type JWTSecret struct {
	Secret string `yaml:"secret" env:"JWT_SECRET" env-required:"true"`
}

type AnalyticsConfig struct {
	TrendDays     int           `yaml:"trend_days" env:"TREND_DAYS" env-default:"7"`
	AbandonAfter  time.Duration `yaml:"abandon_after" env:"ABANDON_AFTER" env-default:"24h"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SWEEP_INTERVAL" env-default:"15m"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("Config file not found in path")
	}

	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the YAML file at path. Variables from a .env file in the working
// directory are exported first, so they override the file like real ones.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	var config Config
	slog.Info("loading config", "path", path)
	if err := cleanenv.ReadConfig(path, &config); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Storage.DatabaseUrl == "" {
			return errors.New("storage.database_url is required for the postgres driver")
		}
	case DriverMongo:
		if c.Storage.MongoURI == "" {
			return errors.New("storage.mongo_uri is required for the mongo driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "config path")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	if res == "" {
		res = "./config/local.yaml"
	}
	return res
}

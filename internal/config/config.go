package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	defaultAppName         = "DeluxLedger"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultStoreBackend    = "json"
	defaultDataDir         = "./data"
	defaultDBMaxConns      = int32(10)
	defaultOpeningBonus    = "1800"
	defaultWithdrawalMin   = "100"
	defaultInvestmentMin   = "100"
	defaultMultiplier      = "3"
	defaultSweepInterval   = time.Minute
	defaultShutdownPeriod  = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	sweepIntervalEnvVar    = "SWEEP_INTERVAL"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
)

// Config captures application runtime configuration loaded from environment variables.
// Monetary policy values (opening bonus, floors, return multiplier) are parameters
// here rather than constants in the domain packages.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	StoreBackend   string // "json" or "postgres"
	DataDir        string
	DatabaseURL    string
	DBMaxConns     int32
	RedisURL       string
	OpeningBonus   decimal.Decimal
	WithdrawalMin  decimal.Decimal
	InvestmentMin  decimal.Decimal
	Multiplier     decimal.Decimal
	SweepInterval  time.Duration
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
}

// Load reads configuration from the environment, after loading a .env file when
// one is present, and populates a Config instance.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", defaultStoreBackend)),
		DataDir:        getEnv("DATA_DIR", defaultDataDir),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		SweepInterval:  defaultSweepInterval,
		ShutdownPeriod: defaultShutdownPeriod,
		IdempotencyTTL: defaultIdempotencyTTL,
	}

	var err error
	if cfg.OpeningBonus, err = getDecimal("OPENING_BONUS", defaultOpeningBonus); err != nil {
		return Config{}, err
	}
	if cfg.WithdrawalMin, err = getDecimal("WITHDRAWAL_MIN", defaultWithdrawalMin); err != nil {
		return Config{}, err
	}
	if cfg.InvestmentMin, err = getDecimal("INVESTMENT_MIN", defaultInvestmentMin); err != nil {
		return Config{}, err
	}
	if cfg.Multiplier, err = getDecimal("RETURN_MULTIPLIER", defaultMultiplier); err != nil {
		return Config{}, err
	}
	if cfg.DBMaxConns, err = getInt32("DB_MAX_CONNS", defaultDBMaxConns); err != nil {
		return Config{}, err
	}

	durations := []struct {
		envVar string
		dst    *time.Duration
	}{
		{sweepIntervalEnvVar, &cfg.SweepInterval},
		{shutdownDurationEnvVar, &cfg.ShutdownPeriod},
		{idemTTLDurEnvVar, &cfg.IdempotencyTTL},
	}
	for _, d := range durations {
		if v := os.Getenv(d.envVar); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", d.envVar, err)
			}
			*d.dst = parsed
		}
	}

	switch cfg.StoreBackend {
	case "json":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when STORE_BACKEND=postgres")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt32(key string, fallback int32) (int32, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return int32(n), nil
}

func getDecimal(key, fallback string) (decimal.Decimal, error) {
	v := getEnv(key, fallback)
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

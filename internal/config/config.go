package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	ServerPort int
	EventsPath string

	HorizonURL        string
	FriendbotURL      string
	NetworkPassphrase string
	LedgerTimeout     time.Duration

	LogLevel  string
	LogPretty bool

	RatesFile   string
	StrictRates bool

	CreateAccountRPS   float64
	CreateAccountBurst int

	SnapshotCron string
	SnapshotDir  string
}

// Load loads configuration from environment variables or sets defaults. A .env file in
// the working directory is read first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	port, err := strconv.Atoi(getEnv("PORT", "3001"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	timeout, err := time.ParseDuration(getEnv("LEDGER_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_TIMEOUT: %w", err)
	}

	rps, err := strconv.ParseFloat(getEnv("CREATE_ACCOUNT_RPS", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CREATE_ACCOUNT_RPS: %w", err)
	}

	burst, err := strconv.Atoi(getEnv("CREATE_ACCOUNT_BURST", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid CREATE_ACCOUNT_BURST: %w", err)
	}

	return &Config{
		ServerPort:         port,
		EventsPath:         getEnv("EVENTS_PATH", "./events.json"),
		HorizonURL:         getEnv("HORIZON_URL", "https://horizon-testnet.stellar.org"),
		FriendbotURL:       getEnv("FRIENDBOT_URL", "https://friendbot.stellar.org"),
		NetworkPassphrase:  getEnv("NETWORK_PASSPHRASE", "Test SDF Network ; September 2015"),
		LedgerTimeout:      timeout,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogPretty:          getEnvBool("LOG_PRETTY", true),
		RatesFile:          getEnv("RATES_FILE", ""),
		StrictRates:        getEnvBool("STRICT_RATES", false),
		CreateAccountRPS:   rps,
		CreateAccountBurst: burst,
		SnapshotCron:       getEnv("SNAPSHOT_CRON", ""),
		SnapshotDir:        getEnv("SNAPSHOT_DIR", "./snapshots"),
	}, nil
}

// DefaultRates is the conversion table used when no rates file is configured.
func DefaultRates() map[string]float64 {
	return map[string]float64{
		"EUR>USDC": 1.02,
		"USDC>EUR": 0.98,
		"USD>USDC": 1.00,
		"USDC>USD": 1.00,
	}
}

type ratesFile struct {
	Rates map[string]float64 `yaml:"rates"`
}

// LoadRates reads a YAML rate table of the form
//
//	rates:
//	  EUR>USDC: 1.02
//
// An empty path returns DefaultRates.
func LoadRates(path string) (map[string]float64, error) {
	if path == "" {
		return DefaultRates(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rates file: %w", err)
	}

	var rf ratesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse rates file: %w", err)
	}
	if len(rf.Rates) == 0 {
		return nil, fmt.Errorf("rates file %s defines no rates", path)
	}

	rates := make(map[string]float64, len(rf.Rates))
	for pair, rate := range rf.Rates {
		from, to, ok := strings.Cut(pair, ">")
		if !ok || strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			return nil, fmt.Errorf("rate %q: pair must look like FROM>TO", pair)
		}
		if rate <= 0 {
			return nil, fmt.Errorf("rate %q: must be positive", pair)
		}
		key := strings.ToUpper(strings.TrimSpace(from)) + ">" + strings.ToUpper(strings.TrimSpace(to))
		rates[key] = rate
	}
	return rates, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}

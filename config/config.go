package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alejandrodnm/roundbet/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del proceso.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Admin   AdminConfig   `yaml:"admin"`
	Oracle  OracleConfig  `yaml:"oracle"`
	Market  MarketSection `yaml:"market"`
	Keeper  KeeperConfig  `yaml:"keeper"`
}

// StorageConfig controla dónde se persiste el ledger.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// AdminConfig fija la dirección que gobierna el mercado.
type AdminConfig struct {
	Address string `yaml:"address"`
}

// OracleConfig elige de dónde sale el precio de referencia.
type OracleConfig struct {
	Mode       string  `yaml:"mode"` // http | fixed
	BaseURL    string  `yaml:"base_url"`
	RatePerSec float64 `yaml:"rate_per_sec"`
	FixedPrice string  `yaml:"fixed_price"` // solo mode=fixed
}

// MarketSection es la config económica inicial que usa `init`.
type MarketSection struct {
	RoundDurationSeconds int    `yaml:"round_duration_seconds"`
	OracleRef            string `yaml:"oracle_ref"`
	MinimumBet           string `yaml:"minimum_bet"`
	BurnFeeBP            uint64 `yaml:"burn_fee_bp"`
	GamingFeeBP          uint64 `yaml:"gaming_fee_bp"`
	TokenRef             string `yaml:"token_ref"`
	CustodyAddress       string `yaml:"custody_address"`
}

// KeeperConfig controla el avance periódico de rondas.
type KeeperConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben los valores del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// KeeperInterval devuelve el intervalo del keeper como time.Duration.
func (c *Config) KeeperInterval() time.Duration {
	return time.Duration(c.Keeper.IntervalSeconds) * time.Second
}

// MarketConfig convierte la sección market en una config de dominio validada.
func (c *Config) MarketConfig() (domain.MarketConfig, error) {
	minBet, err := domain.ParseAmount(c.Market.MinimumBet)
	if err != nil {
		return domain.MarketConfig{}, fmt.Errorf("config.MarketConfig: minimum_bet: %w", err)
	}
	mc := domain.MarketConfig{
		RoundDuration: time.Duration(c.Market.RoundDurationSeconds) * time.Second,
		OracleRef:     c.Market.OracleRef,
		MinimumBet:    minBet,
		BurnFeeBP:     c.Market.BurnFeeBP,
		GamingFeeBP:   c.Market.GamingFeeBP,
		TokenRef:      c.Market.TokenRef,
		Custody:       domain.Address(c.Market.CustodyAddress),
	}
	if err := mc.Validate(); err != nil {
		return domain.MarketConfig{}, fmt.Errorf("config.MarketConfig: %w", err)
	}
	return mc, nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ROUNDBET_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("ROUNDBET_ADMIN"); v != "" {
		cfg.Admin.Address = v
	}
	if v := os.Getenv("ROUNDBET_ORACLE_URL"); v != "" {
		cfg.Oracle.BaseURL = v
	}
	if v := os.Getenv("ROUNDBET_KEEPER_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Keeper.IntervalSeconds = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "roundbet.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Oracle.Mode == "" {
		cfg.Oracle.Mode = "http"
	}
	if cfg.Oracle.RatePerSec <= 0 {
		cfg.Oracle.RatePerSec = 5
	}
	if cfg.Market.RoundDurationSeconds <= 0 {
		cfg.Market.RoundDurationSeconds = 600
	}
	if cfg.Market.MinimumBet == "" {
		cfg.Market.MinimumBet = "1"
	}
	if cfg.Keeper.IntervalSeconds <= 0 {
		cfg.Keeper.IntervalSeconds = 10
	}
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del backtester.
type Config struct {
	Backtest BacktestConfig `yaml:"backtest"`
	API      APIConfig      `yaml:"api"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// BacktestConfig controla la simulación.
type BacktestConfig struct {
	Tickers           []string `yaml:"tickers"`
	StartDate         string   `yaml:"start_date"` // YYYY-MM-DD
	EndDate           string   `yaml:"end_date"`   // YYYY-MM-DD
	InitialCapital    float64  `yaml:"initial_capital"`
	MarginRequirement float64  `yaml:"margin_requirement"` // fracción [0,1] para shorts
	LookbackDays      int      `yaml:"lookback_days"`      // ventana de contexto para el agente
}

// APIConfig contiene el base URL y la API key del proveedor de datos.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"` // normalmente viene del .env
}

// StorageConfig controla dónde se persisten los resultados.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
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

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return &cfg, nil
}

// DateRange devuelve las fechas de inicio y fin parseadas.
func (c *Config) DateRange() (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", c.Backtest.StartDate)
	if err != nil {
		return start, end, fmt.Errorf("config.DateRange: start_date %q: %w", c.Backtest.StartDate, err)
	}
	end, err = time.Parse("2006-01-02", c.Backtest.EndDate)
	if err != nil {
		return start, end, fmt.Errorf("config.DateRange: end_date %q: %w", c.Backtest.EndDate, err)
	}
	return start, end, nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FINANCIAL_DATASETS_API_KEY"); v != "" {
		cfg.API.APIKey = v
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
	if cfg.Backtest.InitialCapital <= 0 {
		cfg.Backtest.InitialCapital = 100000
	}
	if cfg.Backtest.LookbackDays <= 0 {
		cfg.Backtest.LookbackDays = 30
	}
	if cfg.Backtest.EndDate == "" {
		cfg.Backtest.EndDate = time.Now().UTC().Format("2006-01-02")
	}
	if cfg.Backtest.StartDate == "" {
		cfg.Backtest.StartDate = time.Now().UTC().AddDate(0, -1, 0).Format("2006-01-02")
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api.financialdatasets.ai"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "fundbot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// validate rechaza configuraciones imposibles de ejecutar.
func (c *Config) validate() error {
	if len(c.Backtest.Tickers) == 0 {
		return fmt.Errorf("backtest.tickers is empty")
	}
	for _, t := range c.Backtest.Tickers {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("backtest.tickers contains an empty ticker")
		}
	}
	if c.Backtest.MarginRequirement < 0 || c.Backtest.MarginRequirement > 1 {
		return fmt.Errorf("backtest.margin_requirement %.2f out of range [0,1]", c.Backtest.MarginRequirement)
	}
	if _, _, err := c.DateRange(); err != nil {
		return err
	}
	return nil
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/i474232898/meteo-template/internal/binding"
	"github.com/i474232898/meteo-template/internal/weather"
)

// DefaultCities is the static city list of the METEO template.
var DefaultCities = []string{
	"Омск", "Тара", "Тюкалинск", "Исилькуль", "Калачинск",
	"Называевск", "Большеречье", "Черлак", "Муромцево", "Саргатское",
	"Полтавка", "Русская Поляна", "Оконешниково", "Седельниково", "Усть-Ишим",
}

// AppConfig is constructed once at startup and passed to the components that need it.
type AppConfig struct {
	OpenWeatherAPIKey string `envconfig:"OPENWEATHER_API_KEY" validate:"required"`
	OpenWeatherURL    string `envconfig:"OPENWEATHER_URL" default:"https://api.openweathermap.org/data/2.5/forecast" validate:"url"`
	Country           string `envconfig:"WEATHER_COUNTRY" default:"ru"`
	Lang              string `envconfig:"WEATHER_LANG" default:"ru"`
	Timezone          string `envconfig:"WEATHER_TIMEZONE" default:"Asia/Omsk" validate:"required"`

	// Cities to fetch, in output order. Empty means DefaultCities.
	Cities []string `envconfig:"WEATHER_CITIES"`
	// GrafCodes is the auxiliary per-city code of the flat export, by city position.
	GrafCodes []string `envconfig:"GRAF_CODES" default:"1,2,3,4,5,6,7,8,9,10,11,12,13,14,15"`

	MatchMode          string `envconfig:"MATCH_MODE" default:"legacy" validate:"oneof=legacy full-date"`
	CloudinessMode     string `envconfig:"CLOUDINESS_MODE" default:"label" validate:"oneof=label percent condition"`
	PhenomenonStrategy string `envconfig:"PHENOMENON_STRATEGY" default:"range" validate:"oneof=range lookup"`

	SheetName         string `envconfig:"SHEET_NAME" default:"METEO" validate:"required"`
	RowLookup         string `envconfig:"ROW_LOOKUP" default:"name" validate:"oneof=name position"`
	SharedCellMode    string `envconfig:"SHARED_CELL_MODE" default:"last-writer-wins" validate:"oneof=last-writer-wins first-writer-wins"`
	MissingCityPolicy string `envconfig:"MISSING_CITY_POLICY" default:"skip" validate:"oneof=skip fail"`
	StrictRowRange    bool   `envconfig:"ROW_RANGE_STRICT" default:"true"`
	Table1Start       int    `envconfig:"TABLE1_START" default:"8" validate:"gte=1"`
	Table1End         int    `envconfig:"TABLE1_END" default:"22" validate:"gtefield=Table1Start"`
	Table2Start       int    `envconfig:"TABLE2_START" default:"31" validate:"gte=1"`
	Table2End         int    `envconfig:"TABLE2_END" default:"45" validate:"gtefield=Table2Start"`

	HTTPTimeout        time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	ProviderMaxRetries int           `envconfig:"PROVIDER_MAX_RETRIES" default:"0" validate:"gte=0"`
	ProviderRPS        float64       `envconfig:"PROVIDER_RPS" default:"0" validate:"gte=0"`
	CacheTTL           time.Duration `envconfig:"CACHE_TTL" default:"10m"`

	UploadDir           string        `envconfig:"UPLOAD_DIR" default:"upload"`
	UploadMaxAge        time.Duration `envconfig:"UPLOAD_MAX_AGE" default:"1h"`
	UploadSweepInterval time.Duration `envconfig:"UPLOAD_SWEEP_INTERVAL" default:"15m"`
	BodyLimitMB         int           `envconfig:"BODY_LIMIT_MB" default:"20" validate:"gte=1"`

	Port      string `envconfig:"PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
}

var validate = validator.New()

// Load reads configuration from a .env file (if present) and the environment.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found or error loading it", "error", err)
	}
	return FromEnv()
}

// FromEnv reads configuration from the environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if len(cfg.Cities) == 0 {
		cfg.Cities = append([]string(nil), DefaultCities...)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid WEATHER_TIMEZONE: %w", err)
	}
	return cfg, nil
}

// Location returns the time zone used for local sample times and target dates.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Deriver returns the configured derivation variants.
func (c *AppConfig) Deriver() (weather.Deriver, error) {
	cloud, err := weather.ParseCloudinessMode(c.CloudinessMode)
	if err != nil {
		return weather.Deriver{}, err
	}
	ph, err := weather.ParsePhenomenonStrategy(c.PhenomenonStrategy)
	if err != nil {
		return weather.Deriver{}, err
	}
	return weather.NewDeriver(cloud, ph), nil
}

// Selector returns the sample selector for clock.
func (c *AppConfig) Selector(clock weather.Clock) (*weather.Selector, error) {
	mode, err := weather.ParseMatchMode(c.MatchMode)
	if err != nil {
		return nil, err
	}
	return weather.NewSelector(clock, c.Location(), mode), nil
}

// SpreadsheetScheme returns the configured spreadsheet addressing scheme.
func (c *AppConfig) SpreadsheetScheme() (binding.SpreadsheetScheme, error) {
	scheme := binding.DefaultSpreadsheetScheme()

	var err error
	if scheme.Lookup, err = binding.ParseRowLookup(c.RowLookup); err != nil {
		return scheme, err
	}
	if scheme.Shared, err = binding.ParseSharedCellMode(c.SharedCellMode); err != nil {
		return scheme, err
	}
	if scheme.Missing, err = binding.ParseMissingCityPolicy(c.MissingCityPolicy); err != nil {
		return scheme, err
	}
	scheme.StrictRows = c.StrictRowRange

	scheme.Tables[0].StartRow, scheme.Tables[0].EndRow = c.Table1Start, c.Table1End
	scheme.Tables[1].StartRow, scheme.Tables[1].EndRow = c.Table2Start, c.Table2End
	return scheme, nil
}

// FlatScheme returns the flat-field scheme. It shares MISSING_CITY_POLICY with the spreadsheet scheme.
func (c *AppConfig) FlatScheme() (binding.FlatScheme, error) {
	missing, err := binding.ParseMissingCityPolicy(c.MissingCityPolicy)
	if err != nil {
		return binding.FlatScheme{}, err
	}
	return binding.FlatScheme{GrafCodes: c.GrafCodes, Missing: missing}, nil
}

// Logger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *AppConfig) Logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

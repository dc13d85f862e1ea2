package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Feature FeatureConfig `yaml:"feature" mapstructure:"feature"`
	Model   ModelConfig   `yaml:"model" mapstructure:"model"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	HubSpot HubSpotConfig `yaml:"hubspot" mapstructure:"hubspot"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the scoring-run persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// FeatureConfig holds the vocabularies the feature extractor matches
// against. All matching is case-insensitive substring matching except
// PersonalDomains, which is an exact domain match.
type FeatureConfig struct {
	DecisionMakerTitles []string `yaml:"decision_maker_titles" mapstructure:"decision_maker_titles"`
	ManagerTitles       []string `yaml:"manager_titles" mapstructure:"manager_titles"`
	TechKeywords        []string `yaml:"tech_keywords" mapstructure:"tech_keywords"`
	PersonalDomains     []string `yaml:"personal_domains" mapstructure:"personal_domains"`
}

// ModelConfig configures label synthesis, the train/test split, the
// forest classifier, and the category thresholds.
type ModelConfig struct {
	Trees          int     `yaml:"trees" mapstructure:"trees"`
	MaxDepth       int     `yaml:"max_depth" mapstructure:"max_depth"`
	Seed           int64   `yaml:"seed" mapstructure:"seed"`
	TestFraction   float64 `yaml:"test_fraction" mapstructure:"test_fraction"`
	NoiseStdDev    float64 `yaml:"noise_std_dev" mapstructure:"noise_std_dev"`
	LabelThreshold float64 `yaml:"label_threshold" mapstructure:"label_threshold"`

	HotThreshold  float64 `yaml:"hot_threshold" mapstructure:"hot_threshold"`
	WarmThreshold float64 `yaml:"warm_threshold" mapstructure:"warm_threshold"`
	ColdThreshold float64 `yaml:"cold_threshold" mapstructure:"cold_threshold"`
}

// ExportConfig configures the CRM export formatter.
type ExportConfig struct {
	SourceLabel     string  `yaml:"source_label" mapstructure:"source_label"`
	HighThreshold   float64 `yaml:"high_threshold" mapstructure:"high_threshold"`
	MediumThreshold float64 `yaml:"medium_threshold" mapstructure:"medium_threshold"`
	MaxTasks        int     `yaml:"max_tasks" mapstructure:"max_tasks"`
}

// HubSpotConfig holds HubSpot private-app credentials and client tuning.
type HubSpotConfig struct {
	Token         string  `yaml:"token" mapstructure:"token"`
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit     float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	BatchSize     int     `yaml:"batch_size" mapstructure:"batch_size"`
	MaxConcurrent int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	PhoneRegion   string  `yaml:"phone_region" mapstructure:"phone_region"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "leadquality.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("feature.decision_maker_titles", []string{"ceo", "cto", "vp", "director", "founder", "president"})
	v.SetDefault("feature.manager_titles", []string{"manager", "lead", "head"})
	v.SetDefault("feature.tech_keywords", []string{"software", "technology", "saas", "tech"})
	v.SetDefault("feature.personal_domains", []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com"})

	v.SetDefault("model.trees", 50)
	v.SetDefault("model.max_depth", 10)
	v.SetDefault("model.seed", 42)
	v.SetDefault("model.test_fraction", 0.2)
	v.SetDefault("model.noise_std_dev", 0.05)
	v.SetDefault("model.label_threshold", 0.6)
	v.SetDefault("model.hot_threshold", 0.8)
	v.SetDefault("model.warm_threshold", 0.6)
	v.SetDefault("model.cold_threshold", 0.4)

	v.SetDefault("export.source_label", "SaaSSquatch Enhanced")
	v.SetDefault("export.high_threshold", 0.8)
	v.SetDefault("export.medium_threshold", 0.6)
	v.SetDefault("export.max_tasks", 10)

	v.SetDefault("hubspot.base_url", "https://api.hubapi.com")
	v.SetDefault("hubspot.rate_limit", 4)
	v.SetDefault("hubspot.batch_size", 3)
	v.SetDefault("hubspot.max_concurrent", 2)
	v.SetDefault("hubspot.phone_region", "US")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

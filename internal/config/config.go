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
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Validate ValidateConfig `yaml:"validate" mapstructure:"validate"`
	Enrich   EnrichConfig   `yaml:"enrich" mapstructure:"enrich"`
	QA       QAConfig       `yaml:"qa" mapstructure:"qa"`
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Places   PlacesConfig   `yaml:"places" mapstructure:"places"`
	Webscan  WebscanConfig  `yaml:"webscan" mapstructure:"webscan"`
	Report   ReportConfig   `yaml:"report" mapstructure:"report"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the per-stage persisted stores.
type StoreConfig struct {
	DataDir       string `yaml:"data_dir" mapstructure:"data_dir"`
	ValidatedFile string `yaml:"validated_file" mapstructure:"validated_file"`
	EnrichedFile  string `yaml:"enriched_file" mapstructure:"enriched_file"`
	QAFile        string `yaml:"qa_file" mapstructure:"qa_file"`
	AuditDB       string `yaml:"audit_db" mapstructure:"audit_db"`
}

// ValidateConfig configures the validation stage.
type ValidateConfig struct {
	// DefaultRegion is the ISO region used to parse phone numbers without
	// an international prefix.
	DefaultRegion string  `yaml:"default_region" mapstructure:"default_region"`
	SourceWeight  float64 `yaml:"source_weight" mapstructure:"source_weight"`
	FormatWeight  float64 `yaml:"format_weight" mapstructure:"format_weight"`

	// ExtractedFirst lists canonical fields where the extracted document
	// value takes priority over submitted data. All other fields prefer
	// the submitted value.
	ExtractedFirst []string `yaml:"extracted_first" mapstructure:"extracted_first"`

	PassThreshold   float64 `yaml:"pass_threshold" mapstructure:"pass_threshold"`
	ReviewThreshold float64 `yaml:"review_threshold" mapstructure:"review_threshold"`
}

// EnrichConfig configures the enrichment stage.
type EnrichConfig struct {
	Workers        int     `yaml:"workers" mapstructure:"workers"`
	RegistryWeight float64 `yaml:"registry_weight" mapstructure:"registry_weight"`
	MapsWeight     float64 `yaml:"maps_weight" mapstructure:"maps_weight"`
	WebsiteWeight  float64 `yaml:"website_weight" mapstructure:"website_weight"`

	EnableRegistry bool `yaml:"enable_registry" mapstructure:"enable_registry"`
	EnableMaps     bool `yaml:"enable_maps" mapstructure:"enable_maps"`
	EnableWebsite  bool `yaml:"enable_website" mapstructure:"enable_website"`

	CallTimeoutSecs int `yaml:"call_timeout_secs" mapstructure:"call_timeout_secs"`
	MaxRetries      int `yaml:"max_retries" mapstructure:"max_retries"`
}

// QAConfig configures the verification classifier.
type QAConfig struct {
	VerifyThreshold float64 `yaml:"verify_threshold" mapstructure:"verify_threshold"`
	ReviewThreshold float64 `yaml:"review_threshold" mapstructure:"review_threshold"`
}

// RegistryConfig holds national-provider-registry API settings.
type RegistryConfig struct {
	BaseURL         string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs     int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	EnableSynthetic bool   `yaml:"enable_synthetic" mapstructure:"enable_synthetic"`
}

// PlacesConfig holds maps/places API settings.
type PlacesConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// WebscanConfig holds website-scrape settings.
type WebscanConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxPages    int `yaml:"max_pages" mapstructure:"max_pages"`
}

// ReportConfig configures directory export.
type ReportConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
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
	v.SetEnvPrefix("PROVIDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.data_dir", "data/processed")
	v.SetDefault("store.validated_file", "validated_data.json")
	v.SetDefault("store.enriched_file", "enriched_data.json")
	v.SetDefault("store.qa_file", "qa_results.json")
	v.SetDefault("store.audit_db", "data/audit.db")
	v.SetDefault("validate.default_region", "IN")
	v.SetDefault("validate.source_weight", 0.5)
	v.SetDefault("validate.format_weight", 0.5)
	v.SetDefault("validate.extracted_first", []string{"registration_number", "qualifications"})
	v.SetDefault("validate.pass_threshold", 0.80)
	v.SetDefault("validate.review_threshold", 0.45)
	v.SetDefault("enrich.workers", 6)
	v.SetDefault("enrich.registry_weight", 0.40)
	v.SetDefault("enrich.maps_weight", 0.35)
	v.SetDefault("enrich.website_weight", 0.25)
	v.SetDefault("enrich.enable_registry", true)
	v.SetDefault("enrich.enable_maps", true)
	v.SetDefault("enrich.enable_website", true)
	v.SetDefault("enrich.call_timeout_secs", 6)
	v.SetDefault("enrich.max_retries", 2)
	v.SetDefault("qa.verify_threshold", 0.80)
	v.SetDefault("qa.review_threshold", 0.45)
	v.SetDefault("registry.base_url", "https://npiregistry.cms.hhs.gov/api/")
	v.SetDefault("registry.timeout_secs", 5)
	v.SetDefault("registry.enable_synthetic", false)
	v.SetDefault("places.base_url", "https://maps.googleapis.com/maps/api")
	v.SetDefault("places.timeout_secs", 6)
	v.SetDefault("places.rate_limit", 10)
	v.SetDefault("webscan.timeout_secs", 3)
	v.SetDefault("webscan.max_pages", 3)
	v.SetDefault("report.output_dir", "data/output")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

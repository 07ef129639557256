package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// ProviderConfig represents upstream market-data settings.
type ProviderConfig struct {
	BaseURL           string  `yaml:"base_url"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// PricingConfig represents pricing model inputs. When UseTreasuryRate is
// set, the live Treasury Bill rate is used (falling back to RiskFreeRate on
// fetch failure); otherwise RiskFreeRate applies as a constant.
type PricingConfig struct {
	RiskFreeRate      float64 `yaml:"risk_free_rate"`
	UseTreasuryRate   bool    `yaml:"use_treasury_rate"`
	DefaultVolatility float64 `yaml:"default_volatility"`
	OTMLowFactor      float64 `yaml:"otm_low_factor"`
	OTMHighFactor     float64 `yaml:"otm_high_factor"`
}

// ScoringConfig represents the goal scorer's gate settings. The two deployed
// threshold pairs disagree, so nothing is hard-coded: Profile picks a preset
// ("standard" = 0.1%/0.2%, "strict" = 0.25%/0.5%) and the explicit targets
// override it when positive. RankBy selects which probability variant gates
// and ranks contracts: "enhanced" or "original".
type ScoringConfig struct {
	Profile        string  `yaml:"profile"`
	WeeklyTarget   float64 `yaml:"weekly_target"`
	BiweeklyTarget float64 `yaml:"biweekly_target"`
	RankBy         string  `yaml:"rank_by"`
}

// SchedulerConfig represents expiration targeting.
type SchedulerConfig struct {
	Policy         string `yaml:"policy"` // next_n or this_week_then_next
	MaxExpirations int    `yaml:"max_expirations"`
}

type Config struct {
	Port string

	Provider  ProviderConfig  `yaml:"provider"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type yamlConfig struct {
	Port      string          `yaml:"port"`
	Provider  ProviderConfig  `yaml:"provider"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Load builds the configuration from defaults, then config.yaml (or the
// CONFIG_FILE path), then environment variables. Later layers win.
func Load() *Config {
	cfg := &Config{
		Port: "8080",
		Provider: ProviderConfig{
			BaseURL:           "https://query1.finance.yahoo.com",
			TimeoutSeconds:    12,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Pricing: PricingConfig{
			RiskFreeRate:      0.045,
			DefaultVolatility: 0.25,
			OTMLowFactor:      1.001,
			OTMHighFactor:     1.10,
		},
		Scoring: ScoringConfig{
			Profile: "strict",
			RankBy:  "enhanced",
		},
		Scheduler: SchedulerConfig{
			Policy:         "next_n",
			MaxExpirations: 4,
		},
		Logging: LoggingConfig{
			LogLevel: "info",
			LogFile:  "callwriter.log",
		},
	}

	if yamlCfg := loadYAMLConfig(); yamlCfg != nil {
		if yamlCfg.Port != "" {
			cfg.Port = yamlCfg.Port
		}
		if yamlCfg.Provider.BaseURL != "" {
			cfg.Provider.BaseURL = yamlCfg.Provider.BaseURL
		}
		if yamlCfg.Provider.TimeoutSeconds > 0 {
			cfg.Provider.TimeoutSeconds = yamlCfg.Provider.TimeoutSeconds
		}
		if yamlCfg.Provider.RequestsPerSecond > 0 {
			cfg.Provider.RequestsPerSecond = yamlCfg.Provider.RequestsPerSecond
		}
		if yamlCfg.Provider.Burst > 0 {
			cfg.Provider.Burst = yamlCfg.Provider.Burst
		}
		if yamlCfg.Pricing.RiskFreeRate > 0 {
			cfg.Pricing.RiskFreeRate = yamlCfg.Pricing.RiskFreeRate
		}
		cfg.Pricing.UseTreasuryRate = yamlCfg.Pricing.UseTreasuryRate
		if yamlCfg.Pricing.DefaultVolatility > 0 {
			cfg.Pricing.DefaultVolatility = yamlCfg.Pricing.DefaultVolatility
		}
		if yamlCfg.Pricing.OTMLowFactor > 0 {
			cfg.Pricing.OTMLowFactor = yamlCfg.Pricing.OTMLowFactor
		}
		if yamlCfg.Pricing.OTMHighFactor > 0 {
			cfg.Pricing.OTMHighFactor = yamlCfg.Pricing.OTMHighFactor
		}
		if yamlCfg.Scoring.Profile != "" {
			cfg.Scoring.Profile = yamlCfg.Scoring.Profile
		}
		if yamlCfg.Scoring.WeeklyTarget > 0 {
			cfg.Scoring.WeeklyTarget = yamlCfg.Scoring.WeeklyTarget
		}
		if yamlCfg.Scoring.BiweeklyTarget > 0 {
			cfg.Scoring.BiweeklyTarget = yamlCfg.Scoring.BiweeklyTarget
		}
		if yamlCfg.Scoring.RankBy != "" {
			cfg.Scoring.RankBy = yamlCfg.Scoring.RankBy
		}
		if yamlCfg.Scheduler.Policy != "" {
			cfg.Scheduler.Policy = yamlCfg.Scheduler.Policy
		}
		if yamlCfg.Scheduler.MaxExpirations > 0 {
			cfg.Scheduler.MaxExpirations = yamlCfg.Scheduler.MaxExpirations
		}
		if yamlCfg.Logging.LogLevel != "" {
			cfg.Logging.LogLevel = yamlCfg.Logging.LogLevel
		}
		if yamlCfg.Logging.LogFile != "" {
			cfg.Logging.LogFile = yamlCfg.Logging.LogFile
		}
	}

	// Environment overrides
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Provider.BaseURL = getEnv("PROVIDER_BASE_URL", cfg.Provider.BaseURL)
	cfg.Provider.TimeoutSeconds = getEnvInt("PROVIDER_TIMEOUT_SECONDS", cfg.Provider.TimeoutSeconds)
	cfg.Pricing.RiskFreeRate = getEnvFloat("RISK_FREE_RATE", cfg.Pricing.RiskFreeRate)
	cfg.Scoring.Profile = getEnv("SCORING_PROFILE", cfg.Scoring.Profile)
	cfg.Scoring.RankBy = getEnv("SCORING_RANK_BY", cfg.Scoring.RankBy)
	cfg.Scheduler.Policy = getEnv("SCHEDULER_POLICY", cfg.Scheduler.Policy)
	cfg.Scheduler.MaxExpirations = getEnvInt("SCHEDULER_MAX_EXPIRATIONS", cfg.Scheduler.MaxExpirations)
	cfg.Logging.LogLevel = getEnv("LOG_LEVEL", cfg.Logging.LogLevel)
	cfg.Logging.LogFile = getEnv("LOG_FILE", cfg.Logging.LogFile)

	return cfg
}

// Targets resolves the effective weekly/bi-weekly minimum-return pair:
// explicit values win, otherwise the named profile preset applies.
func (c *Config) Targets() (weekly, biweekly float64) {
	if strings.EqualFold(c.Scoring.Profile, "standard") {
		weekly, biweekly = 0.001, 0.002
	} else {
		weekly, biweekly = 0.0025, 0.005
	}
	if c.Scoring.WeeklyTarget > 0 {
		weekly = c.Scoring.WeeklyTarget
	}
	if c.Scoring.BiweeklyTarget > 0 {
		biweekly = c.Scoring.BiweeklyTarget
	}
	return weekly, biweekly
}

// RankByEnhanced reports whether ranking uses the refined probability.
func (c *Config) RankByEnhanced() bool {
	return !strings.EqualFold(c.Scoring.RankBy, "original")
}

func loadYAMLConfig() *yamlConfig {
	path := getEnv("CONFIG_FILE", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil
	}
	return &yamlCfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

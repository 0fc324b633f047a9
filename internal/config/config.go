package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/faithbridge/member-insights/internal/insights"
)

// Config holds all configuration for the service
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Vault    VaultConfig    `mapstructure:"vault"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// RedisConfig holds the optional report cache configuration. A zero
// TTL disables caching entirely.
type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	ReportTTL time.Duration `mapstructure:"report_ttl"`
}

// VaultConfig holds the optional secret-manager configuration.
type VaultConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

// LLMConfig holds the narrative collaborator configuration.
type LLMConfig struct {
	URL         string        `mapstructure:"url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	RPS         float64       `mapstructure:"rps"`
}

// EngineConfig exposes every prediction tunable so operators can
// adjust sensitivity without code changes. Defaults reproduce the
// documented scoring behavior; a zero or empty value keeps the
// default.
type EngineConfig struct {
	TrendWindowDays     int     `mapstructure:"trend_window_days"`
	TrendIncreaseFactor float64 `mapstructure:"trend_increase_factor"`
	TrendDeclineFactor  float64 `mapstructure:"trend_decline_factor"`
	ChurnInclusionFloor float64 `mapstructure:"churn_inclusion_floor"`
	MaxAtRiskMembers    int     `mapstructure:"max_at_risk_members"`
	MaxTrendMembers     int     `mapstructure:"max_trend_members"`
	MaxContentGaps      int     `mapstructure:"max_content_gaps"`
	MaxTopContent       int     `mapstructure:"max_top_content"`
	ActivityFetchLimit  int     `mapstructure:"activity_fetch_limit"`
	DonationFetchLimit  int     `mapstructure:"donation_fetch_limit"`
	MaxConcurrency      int     `mapstructure:"max_concurrency"`

	Churn    ChurnConfig    `mapstructure:"churn"`
	Forecast ForecastConfig `mapstructure:"forecast"`
	Contact  ContactConfig  `mapstructure:"contact"`
	Gaps     GapConfig      `mapstructure:"gaps"`
	Revenue  RevenueConfig  `mapstructure:"revenue"`

	EstimatePerActivity float64 `mapstructure:"estimate_per_activity"`
}

// ChurnConfig holds the scorecard points and tier boundaries.
type ChurnConfig struct {
	Inactive90Points  float64 `mapstructure:"inactive_90_points"`
	Inactive60Points  float64 `mapstructure:"inactive_60_points"`
	Inactive30Points  float64 `mapstructure:"inactive_30_points"`
	Inactive14Points  float64 `mapstructure:"inactive_14_points"`
	TrendDeclining    float64 `mapstructure:"trend_declining_points"`
	TrendStable       float64 `mapstructure:"trend_stable_points"`
	EngagementUnder20 float64 `mapstructure:"engagement_under_20_points"`
	EngagementUnder40 float64 `mapstructure:"engagement_under_40_points"`
	EngagementUnder60 float64 `mapstructure:"engagement_under_60_points"`
	EngagementUnder80 float64 `mapstructure:"engagement_under_80_points"`
	DonorLapsed       float64 `mapstructure:"donor_lapsed_points"`
	DonorNever        float64 `mapstructure:"donor_never_points"`
	TierHigh          float64 `mapstructure:"tier_high"`
	TierMedium        float64 `mapstructure:"tier_medium"`
}

// ForecastConfig holds the engagement forecaster deltas and
// confidences.
type ForecastConfig struct {
	IncreasingMaxDelta    float64 `mapstructure:"increasing_max_delta"`
	IncreasingPerActivity float64 `mapstructure:"increasing_per_activity"`
	DecliningMaxDelta     float64 `mapstructure:"declining_max_delta"`
	DecliningBase         float64 `mapstructure:"declining_base"`
	ConfidenceIncreasing  float64 `mapstructure:"confidence_increasing"`
	ConfidenceDeclining   float64 `mapstructure:"confidence_declining"`
	ConfidenceStable      float64 `mapstructure:"confidence_stable"`
}

// ContactConfig holds the contact-time prediction tunables.
type ContactConfig struct {
	MinSignal   int    `mapstructure:"min_signal"`
	DefaultDay  string `mapstructure:"default_day"`
	DefaultTime string `mapstructure:"default_time"`
}

// GapConfig holds the content-gap detection thresholds.
type GapConfig struct {
	MaxResults     int `mapstructure:"max_results"`
	MinOccurrences int `mapstructure:"min_occurrences"`
}

// RevenueConfig holds the revenue projection tunables.
type RevenueConfig struct {
	LookbackDays int     `mapstructure:"lookback_days"`
	Damping      float64 `mapstructure:"damping"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from file and environment variables
func Load() error {
	viper.SetDefault("server.port", "8086")
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "faithbridge")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.report_ttl", time.Duration(0))
	viper.SetDefault("llm.url", "")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.timeout", 15*time.Second)
	viper.SetDefault("llm.max_tokens", 400)
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.rps", 2.0)
	viper.SetDefault("engine.trend_window_days", 30)
	viper.SetDefault("engine.trend_increase_factor", 1.2)
	viper.SetDefault("engine.trend_decline_factor", 0.8)
	viper.SetDefault("engine.churn_inclusion_floor", 0.30)
	viper.SetDefault("engine.max_at_risk_members", 20)
	viper.SetDefault("engine.max_trend_members", 10)
	viper.SetDefault("engine.max_content_gaps", 10)
	viper.SetDefault("engine.max_top_content", 10)
	viper.SetDefault("engine.activity_fetch_limit", 100)
	viper.SetDefault("engine.donation_fetch_limit", 50)
	viper.SetDefault("engine.max_concurrency", 8)
	viper.SetDefault("engine.estimate_per_activity", 5.0)
	viper.SetDefault("engine.churn.inactive_90_points", 40.0)
	viper.SetDefault("engine.churn.inactive_60_points", 30.0)
	viper.SetDefault("engine.churn.inactive_30_points", 20.0)
	viper.SetDefault("engine.churn.inactive_14_points", 10.0)
	viper.SetDefault("engine.churn.trend_declining_points", 25.0)
	viper.SetDefault("engine.churn.trend_stable_points", 10.0)
	viper.SetDefault("engine.churn.engagement_under_20_points", 20.0)
	viper.SetDefault("engine.churn.engagement_under_40_points", 15.0)
	viper.SetDefault("engine.churn.engagement_under_60_points", 10.0)
	viper.SetDefault("engine.churn.engagement_under_80_points", 5.0)
	viper.SetDefault("engine.churn.donor_lapsed_points", 15.0)
	viper.SetDefault("engine.churn.donor_never_points", 8.0)
	viper.SetDefault("engine.churn.tier_high", 0.70)
	viper.SetDefault("engine.churn.tier_medium", 0.50)
	viper.SetDefault("engine.forecast.increasing_max_delta", 30.0)
	viper.SetDefault("engine.forecast.increasing_per_activity", 2.0)
	viper.SetDefault("engine.forecast.declining_max_delta", 25.0)
	viper.SetDefault("engine.forecast.declining_base", 30.0)
	viper.SetDefault("engine.forecast.confidence_increasing", 80.0)
	viper.SetDefault("engine.forecast.confidence_declining", 75.0)
	viper.SetDefault("engine.forecast.confidence_stable", 85.0)
	viper.SetDefault("engine.contact.min_signal", 5)
	viper.SetDefault("engine.contact.default_day", "Tuesday")
	viper.SetDefault("engine.contact.default_time", "10:00 AM")
	viper.SetDefault("engine.gaps.max_results", 3)
	viper.SetDefault("engine.gaps.min_occurrences", 2)
	viper.SetDefault("engine.revenue.lookback_days", 90)
	viper.SetDefault("engine.revenue.damping", 0.5)
	viper.SetDefault("log.level", "info")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/app/config")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.AutomaticEnv()

	bindings := map[string]string{
		"server.port":       "SERVER_PORT",
		"server.host":       "SERVER_HOST",
		"database.host":     "DATABASE_HOST",
		"database.port":     "DATABASE_PORT",
		"database.name":     "DATABASE_NAME",
		"database.user":     "DATABASE_USER",
		"database.password": "DATABASE_PASSWORD",
		"redis.addr":        "REDIS_ADDR",
		"redis.password":    "REDIS_PASSWORD",
		"vault.url":         "VAULT_URL",
		"vault.token":       "VAULT_TOKEN",
		"llm.url":           "LLM_URL",
		"llm.api_key":       "LLM_API_KEY",
		"llm.model":         "LLM_MODEL",
		"log.level":         "LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	return nil
}

// Get returns the current configuration
func Get() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}

// InsightsConfig maps the viper-exposed engine tunables onto the full
// insights configuration. Zero or empty values keep the defaults so a
// partial config file stays safe.
func (e EngineConfig) InsightsConfig() insights.Config {
	cfg := insights.DefaultConfig()
	if e.TrendWindowDays > 0 {
		cfg.TrendWindowDays = e.TrendWindowDays
	}
	if e.TrendIncreaseFactor > 0 {
		cfg.TrendIncreaseFactor = e.TrendIncreaseFactor
	}
	if e.TrendDeclineFactor > 0 {
		cfg.TrendDeclineFactor = e.TrendDeclineFactor
	}
	if e.ChurnInclusionFloor > 0 {
		cfg.ChurnInclusionFloor = e.ChurnInclusionFloor
	}
	if e.MaxContentGaps > 0 {
		cfg.MaxContentGaps = e.MaxContentGaps
	}
	if e.EstimatePerActivity > 0 {
		cfg.EstimatePerActivity = e.EstimatePerActivity
	}

	setFloat(&cfg.Churn.Inactive90, e.Churn.Inactive90Points)
	setFloat(&cfg.Churn.Inactive60, e.Churn.Inactive60Points)
	setFloat(&cfg.Churn.Inactive30, e.Churn.Inactive30Points)
	setFloat(&cfg.Churn.Inactive14, e.Churn.Inactive14Points)
	setFloat(&cfg.Churn.TrendDeclining, e.Churn.TrendDeclining)
	setFloat(&cfg.Churn.TrendStable, e.Churn.TrendStable)
	setFloat(&cfg.Churn.EngagementUnder20, e.Churn.EngagementUnder20)
	setFloat(&cfg.Churn.EngagementUnder40, e.Churn.EngagementUnder40)
	setFloat(&cfg.Churn.EngagementUnder60, e.Churn.EngagementUnder60)
	setFloat(&cfg.Churn.EngagementUnder80, e.Churn.EngagementUnder80)
	setFloat(&cfg.Churn.DonorLapsed, e.Churn.DonorLapsed)
	setFloat(&cfg.Churn.DonorNever, e.Churn.DonorNever)
	setFloat(&cfg.TierHigh, e.Churn.TierHigh)
	setFloat(&cfg.TierMedium, e.Churn.TierMedium)

	setFloat(&cfg.Forecast.IncreasingMaxDelta, e.Forecast.IncreasingMaxDelta)
	setFloat(&cfg.Forecast.IncreasingPerActivity, e.Forecast.IncreasingPerActivity)
	setFloat(&cfg.Forecast.DecliningMaxDelta, e.Forecast.DecliningMaxDelta)
	setFloat(&cfg.Forecast.DecliningBase, e.Forecast.DecliningBase)
	setFloat(&cfg.Forecast.ConfidenceIncreasing, e.Forecast.ConfidenceIncreasing)
	setFloat(&cfg.Forecast.ConfidenceDeclining, e.Forecast.ConfidenceDeclining)
	setFloat(&cfg.Forecast.ConfidenceStable, e.Forecast.ConfidenceStable)

	if e.Contact.MinSignal > 0 {
		cfg.MinContactSignal = e.Contact.MinSignal
	}
	if e.Contact.DefaultDay != "" {
		cfg.DefaultContactDay = e.Contact.DefaultDay
	}
	if e.Contact.DefaultTime != "" {
		cfg.DefaultContactTime = e.Contact.DefaultTime
	}

	if e.Gaps.MaxResults > 0 {
		cfg.GapMaxResults = e.Gaps.MaxResults
	}
	if e.Gaps.MinOccurrences > 0 {
		cfg.GapMinOccurrences = e.Gaps.MinOccurrences
	}

	if e.Revenue.LookbackDays > 0 {
		cfg.RevenueLookbackDays = e.Revenue.LookbackDays
	}
	if e.Revenue.Damping > 0 {
		cfg.RevenueDamping = e.Revenue.Damping
	}

	return cfg
}

func setFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

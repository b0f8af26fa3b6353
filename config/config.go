// Package config assembles the orchestrator's runtime configuration from a
// layered source: a YAML file (if present) and environment variables for
// tunables via Viper, plus a mustEnv/getEnv pattern for infrastructure
// endpoints and secrets that have no sane default.
package config

import (
	"log"
	"os"
	"time"

	"renkoconfluence/internal/model"
	"renkoconfluence/internal/orchestrator"
	"renkoconfluence/internal/portfolio"
	"renkoconfluence/internal/renko"
	"renkoconfluence/internal/strategy"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Infra holds deployment-specific endpoints and secrets that cannot have a
// one-size-fits-all default.
type Infra struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SQLitePath string

	DashboardAddr   string
	AdminTOTPSecret string

	MetricsAddr string

	NotifyWebhookURL     string
	NotifyTelegramToken  string
	NotifyTelegramChatID string
}

// Config bundles the Session Orchestrator's domain configuration with the
// surrounding infrastructure wiring.
type Config struct {
	Orchestrator orchestrator.Config
	Infra        Infra
}

// Load reads config.yaml (if present, searched in the working directory and
// /etc/renkoconfluence), then overlays environment variables, then falls
// back to the orchestrator's documented defaults for anything left unset.
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/renkoconfluence")
	v.SetEnvPrefix("RENKO")
	v.AutomaticEnv()

	v.SetDefault("symbol", "BTCUSDT")
	v.SetDefault("initial_capital", 100000.0)
	v.SetDefault("snapshot_interval_seconds", 20)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("[config] error reading config file: %v", err)
		}
	}

	symbol := v.GetString("symbol")
	capital := v.GetFloat64("initial_capital")

	cfg := orchestrator.DefaultConfig(symbol, capital)
	if secs := v.GetInt("snapshot_interval_seconds"); secs > 0 {
		cfg.SnapshotInterval = time.Duration(secs) * time.Second
	}

	applyRenkoOverrides(v.Sub("strategy_a.renko"), &cfg.StrategyA.Renko)
	applyStrategyAOverrides(v.Sub("strategy_a"), &cfg.StrategyA)
	applyRenkoOverrides(v.Sub("strategy_b.renko"), &cfg.StrategyB.Renko)
	applyStrategyBOverrides(v.Sub("strategy_b"), &cfg.StrategyB)
	applyPortfolioOverrides(v.Sub("portfolio"), &cfg.Portfolio)
	applyRiskOverrides(v.Sub("risk"), &cfg.Risk)

	return &Config{
		Orchestrator: cfg,
		Infra: Infra{
			RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword:        getEnv("REDIS_PASSWORD", ""),
			RedisDB:              0,
			SQLitePath:           getEnv("SQLITE_PATH", "data/trades.db"),
			DashboardAddr:        getEnv("DASHBOARD_ADDR", ":8090"),
			AdminTOTPSecret:      mustEnv("ADMIN_TOTP_SECRET"),
			MetricsAddr:          getEnv("METRICS_ADDR", ":9090"),
			NotifyWebhookURL:     getEnv("NOTIFY_WEBHOOK_URL", ""),
			NotifyTelegramToken:  getEnv("NOTIFY_TELEGRAM_BOT_TOKEN", ""),
			NotifyTelegramChatID: getEnv("NOTIFY_TELEGRAM_CHAT_ID", ""),
		},
	}
}

// applyRenkoOverrides overlays any "atr_multiplier"/"atr_period"/etc. keys
// found under sub onto cfg, leaving the documented default for anything
// sub doesn't set. sub is nil when the caller's YAML/env has no section
// for this key path, in which case cfg is left untouched.
func applyRenkoOverrides(sub *viper.Viper, cfg *renko.Config) {
	if sub == nil {
		return
	}
	if sub.IsSet("atr_multiplier") {
		cfg.ATRMultiplier = sub.GetFloat64("atr_multiplier")
	}
	if sub.IsSet("atr_period") {
		cfg.ATRPeriod = sub.GetInt("atr_period")
	}
	if sub.IsSet("price_source") {
		cfg.PriceSource = model.PriceSource(sub.GetString("price_source"))
	}
	if sub.IsSet("max_brick_history") {
		cfg.MaxBrickHistory = sub.GetInt("max_brick_history")
	}
	if sub.IsSet("trim_brick_history") {
		cfg.TrimBrickHistory = sub.GetInt("trim_brick_history")
	}
	if sub.IsSet("price_precision") {
		cfg.PricePrecision = int32(sub.GetInt("price_precision"))
	}
}

func applyStrategyAOverrides(sub *viper.Viper, cfg *strategy.ConfigA) {
	if sub == nil {
		return
	}
	if sub.IsSet("supertrend_period") {
		cfg.SuperTrendPeriod = sub.GetInt("supertrend_period")
	}
	if sub.IsSet("supertrend_multiplier") {
		cfg.SuperTrendMultiplier = sub.GetFloat64("supertrend_multiplier")
	}
	if sub.IsSet("macd_fast") {
		cfg.MACDFast = sub.GetInt("macd_fast")
	}
	if sub.IsSet("macd_slow") {
		cfg.MACDSlow = sub.GetInt("macd_slow")
	}
	if sub.IsSet("macd_signal") {
		cfg.MACDSignal = sub.GetInt("macd_signal")
	}
	if sub.IsSet("volume_surge_window") {
		cfg.VolumeSurgeWindow = sub.GetInt("volume_surge_window")
	}
	if sub.IsSet("volume_surge_threshold") {
		cfg.VolumeSurgeThreshold = sub.GetFloat64("volume_surge_threshold")
	}
	if sub.IsSet("min_confluence_score") {
		cfg.MinConfluenceScore = sub.GetInt("min_confluence_score")
	}
	if sub.IsSet("stop_loss_atr_multiplier") {
		cfg.StopLossATRMultiplier = sub.GetFloat64("stop_loss_atr_multiplier")
	}
	if sub.IsSet("min_risk_reward") {
		cfg.MinRiskReward = sub.GetFloat64("min_risk_reward")
	}
	if sub.IsSet("max_risk_per_trade") {
		cfg.MaxRiskPerTrade = sub.GetFloat64("max_risk_per_trade")
	}
	if sub.IsSet("max_position_fraction") {
		cfg.MaxPositionFraction = sub.GetFloat64("max_position_fraction")
	}
	if sub.IsSet("cooldown_seconds") {
		cfg.CooldownSeconds = sub.GetInt("cooldown_seconds")
	}
	if sub.IsSet("exhaustion_bricks") {
		cfg.ExhaustionBricks = uint32(sub.GetInt("exhaustion_bricks"))
	}
}

func applyStrategyBOverrides(sub *viper.Viper, cfg *strategy.ConfigB) {
	if sub == nil {
		return
	}
	if sub.IsSet("bollinger_period") {
		cfg.BollingerPeriod = sub.GetInt("bollinger_period")
	}
	if sub.IsSet("bollinger_sigma") {
		cfg.BollingerSigma = sub.GetFloat64("bollinger_sigma")
	}
	if sub.IsSet("stochastic_k") {
		cfg.StochasticK = sub.GetInt("stochastic_k")
	}
	if sub.IsSet("stochastic_d") {
		cfg.StochasticD = sub.GetInt("stochastic_d")
	}
	if sub.IsSet("ema_period") {
		cfg.EMAPeriod = sub.GetInt("ema_period")
	}
	if sub.IsSet("risk_reward_ratio") {
		cfg.RiskRewardRatio = sub.GetFloat64("risk_reward_ratio")
	}
	if sub.IsSet("swing_lookback") {
		cfg.SwingLookback = sub.GetInt("swing_lookback")
	}
	if sub.IsSet("max_risk_per_trade") {
		cfg.MaxRiskPerTrade = sub.GetFloat64("max_risk_per_trade")
	}
	if sub.IsSet("max_position_fraction") {
		cfg.MaxPositionFraction = sub.GetFloat64("max_position_fraction")
	}
	if sub.IsSet("cooldown_seconds") {
		cfg.CooldownSeconds = sub.GetInt("cooldown_seconds")
	}
}

func applyPortfolioOverrides(sub *viper.Viper, cfg *portfolio.Config) {
	if sub == nil {
		return
	}
	if sub.IsSet("max_position_fraction") {
		cfg.MaxPositionFraction = sub.GetFloat64("max_position_fraction")
	}
	if sub.IsSet("pessimistic_tpsl") {
		cfg.PessimisticTPSL = sub.GetBool("pessimistic_tpsl")
	}
}

func applyRiskOverrides(sub *viper.Viper, cfg *portfolio.RiskLimits) {
	if sub == nil {
		return
	}
	if sub.IsSet("max_daily_loss") {
		cfg.MaxDailyLoss = decimal.NewFromFloat(sub.GetFloat64("max_daily_loss"))
	}
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("[config] required env var %s not set", key)
	}
	return v
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

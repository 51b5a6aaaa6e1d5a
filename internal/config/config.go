// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Database() DatabaseConfig
	Browser() BrowserConfig
	Network() NetworkConfig
	Site() SiteConfig
	Resolver() ResolverConfig
	Batch() BatchConfig
	LLM() LLMConfig
	Replay() ReplayConfig
	SetReplayConfig(rc ReplayConfig)

	// Site Setters
	SetSiteEnvironment(env string)

	// Browser Setters
	SetBrowserHeadless(bool)
	SetBrowserDebug(bool)

	// Network Setters
	SetNetworkNavigationTimeout(d time.Duration)
	SetNetworkFallbackTimeout(d time.Duration)
	SetNetworkActionTimeout(d time.Duration)
}

// Config holds the entire application configuration. Callers go through the
// Interface getters; the exported fields exist so viper can unmarshal.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	DatabaseCfg DatabaseConfig `mapstructure:"database" yaml:"database"`
	BrowserCfg  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	NetworkCfg  NetworkConfig  `mapstructure:"network" yaml:"network"`
	SiteCfg     SiteConfig     `mapstructure:"site" yaml:"site"`
	ResolverCfg ResolverConfig `mapstructure:"resolver" yaml:"resolver"`
	BatchCfg    BatchConfig    `mapstructure:"batch" yaml:"batch"`
	LLMCfg      LLMConfig      `mapstructure:"llm" yaml:"llm"`
	// ReplayCfg gets its marching orders from CLI flags, not the config file.
	ReplayCfg ReplayConfig `mapstructure:"-" yaml:"-"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Database() DatabaseConfig { return c.DatabaseCfg }
func (c *Config) Browser() BrowserConfig   { return c.BrowserCfg }
func (c *Config) Network() NetworkConfig   { return c.NetworkCfg }
func (c *Config) Site() SiteConfig         { return c.SiteCfg }
func (c *Config) Resolver() ResolverConfig { return c.ResolverCfg }
func (c *Config) Batch() BatchConfig       { return c.BatchCfg }
func (c *Config) LLM() LLMConfig           { return c.LLMCfg }
func (c *Config) Replay() ReplayConfig     { return c.ReplayCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetReplayConfig(rc ReplayConfig) { c.ReplayCfg = rc }

func (c *Config) SetSiteEnvironment(env string) { c.SiteCfg.Environment = env }

func (c *Config) SetBrowserHeadless(b bool) { c.BrowserCfg.Headless = b }
func (c *Config) SetBrowserDebug(b bool)    { c.BrowserCfg.Debug = b }

func (c *Config) SetNetworkNavigationTimeout(d time.Duration) { c.NetworkCfg.NavigationTimeout = d }
func (c *Config) SetNetworkFallbackTimeout(d time.Duration)   { c.NetworkCfg.FallbackTimeout = d }
func (c *Config) SetNetworkActionTimeout(d time.Duration)     { c.NetworkCfg.ActionTimeout = d }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// DatabaseConfig holds the result store connection details. Persistence is
// optional; an empty URL disables it.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// BrowserConfig holds settings for the headless browser instances.
type BrowserConfig struct {
	Headless     bool           `mapstructure:"headless" yaml:"headless"`
	DisableCache bool           `mapstructure:"disable_cache" yaml:"disable_cache"`
	Debug        bool           `mapstructure:"debug" yaml:"debug"`
	Args         []string       `mapstructure:"args" yaml:"args"`
	Viewport     map[string]int `mapstructure:"viewport" yaml:"viewport"`
	UserAgent    string         `mapstructure:"user_agent" yaml:"user_agent"`
}

// NetworkConfig tunes page load and interaction timing. NavigationTimeout
// bounds the strict network-idle wait; FallbackTimeout bounds the looser
// DOM-content retry used when the first wait times out.
type NetworkConfig struct {
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	FallbackTimeout   time.Duration `mapstructure:"fallback_timeout" yaml:"fallback_timeout"`
	ActionTimeout     time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
	VisibilityTimeout time.Duration `mapstructure:"visibility_timeout" yaml:"visibility_timeout"`
	PostClickWait     time.Duration `mapstructure:"post_click_wait" yaml:"post_click_wait"`
	SettleWait        time.Duration `mapstructure:"settle_wait" yaml:"settle_wait"`
}

// SiteConfig anchors event replay to a concrete deployment of the target
// site. Environment selects which base URL recorded URLs get rebased onto.
type SiteConfig struct {
	Environment  string            `mapstructure:"environment" yaml:"environment"`
	BaseURLs     map[string]string `mapstructure:"base_urls" yaml:"base_urls"`
	PageTypeFile string            `mapstructure:"page_type_file" yaml:"page_type_file"`
}

// BaseURL returns the base URL for the configured environment.
func (s SiteConfig) BaseURL() string {
	return s.BaseURLs[strings.ToLower(s.Environment)]
}

// ResolverConfig carries the cart-candidate scoring weights and thresholds.
// The defaults mirror the heuristics tuned against the live site; exposing
// them here keeps the weights adjustable without a rebuild.
type ResolverConfig struct {
	MiniCartClassBonus int `mapstructure:"mini_cart_class_bonus" yaml:"mini_cart_class_bonus"`
	CartAttrBonus      int `mapstructure:"cart_attr_bonus" yaml:"cart_attr_bonus"`
	NoTextPenalty      int `mapstructure:"no_text_penalty" yaml:"no_text_penalty"`
	MinScore           int `mapstructure:"min_score" yaml:"min_score"`
	MaxCandidates      int `mapstructure:"max_candidates" yaml:"max_candidates"`
}

// BatchConfig tunes the multi-event batch runner.
type BatchConfig struct {
	Concurrency int           `mapstructure:"concurrency" yaml:"concurrency"`
	RateLimit   float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	EventDelay  time.Duration `mapstructure:"event_delay" yaml:"event_delay"`
	StopOnError bool          `mapstructure:"stop_on_error" yaml:"stop_on_error"`
}

// LLMConfig configures the optional model-assisted selector hint. Disabled
// by default; the resolver is fully functional without it.
type LLMConfig struct {
	Enabled    bool          `mapstructure:"enabled" yaml:"enabled"`
	Model      string        `mapstructure:"model" yaml:"model"`
	APIKey     string        `mapstructure:"api_key" yaml:"api_key"`
	APITimeout time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
}

// ReplayConfig holds settings populated from CLI flags for a specific
// replay invocation.
type ReplayConfig struct {
	EventFile   string
	EventData   string
	EventsFile  string
	Output      string
	KeepBrowser bool
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "replay-cli")
	v.SetDefault("logger.log_file", "replay.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_cache", true)
	v.SetDefault("browser.debug", false)
	v.SetDefault("browser.viewport", map[string]int{"width": 1440, "height": 900})

	// -- Network --
	v.SetDefault("network.navigation_timeout", "15s")
	v.SetDefault("network.fallback_timeout", "10s")
	v.SetDefault("network.action_timeout", "5s")
	v.SetDefault("network.visibility_timeout", "1s")
	v.SetDefault("network.post_click_wait", "2s")
	v.SetDefault("network.settle_wait", "1s")

	// -- Site --
	v.SetDefault("site.environment", "prod")
	v.SetDefault("site.base_urls", map[string]string{
		"prod": "https://www.chewy.com",
		"qat":  "https://www-qat.chewy.net",
		"dev":  "https://www-dev.chewy.net",
	})
	v.SetDefault("site.page_type_file", "page_types.csv")

	// -- Resolver --
	v.SetDefault("resolver.mini_cart_class_bonus", 10)
	v.SetDefault("resolver.cart_attr_bonus", 8)
	v.SetDefault("resolver.no_text_penalty", 5)
	v.SetDefault("resolver.min_score", 2)
	v.SetDefault("resolver.max_candidates", 3)

	// -- Batch --
	v.SetDefault("batch.concurrency", 1)
	v.SetDefault("batch.rate_limit", 2.0)
	v.SetDefault("batch.event_delay", "500ms")
	v.SetDefault("batch.stop_on_error", false)

	// -- LLM --
	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("llm.api_timeout", "20s")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data
	v.BindEnv("database.url", "REPLAY_DATABASE_URL")
	v.BindEnv("llm.api_key", "REPLAY_LLM_API_KEY")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Manually load the key if Unmarshal didn't pick it up
	if cfg.LLMCfg.Enabled && cfg.LLMCfg.APIKey == "" {
		cfg.LLMCfg.APIKey = os.Getenv("REPLAY_LLM_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	env := strings.ToLower(c.SiteCfg.Environment)
	if _, ok := c.SiteCfg.BaseURLs[env]; !ok {
		return fmt.Errorf("site.environment %q has no entry in site.base_urls", c.SiteCfg.Environment)
	}
	if c.NetworkCfg.NavigationTimeout <= 0 {
		return fmt.Errorf("network.navigation_timeout must be a positive duration")
	}
	if c.NetworkCfg.FallbackTimeout <= 0 {
		return fmt.Errorf("network.fallback_timeout must be a positive duration")
	}
	if c.BatchCfg.Concurrency <= 0 {
		return fmt.Errorf("batch.concurrency must be a positive integer")
	}
	if err := c.ResolverCfg.Validate(); err != nil {
		return fmt.Errorf("resolver configuration invalid: %w", err)
	}
	if err := c.LLMCfg.Validate(); err != nil {
		return fmt.Errorf("llm configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the resolver scoring knobs.
func (r *ResolverConfig) Validate() error {
	if r.MinScore < 0 {
		return fmt.Errorf("min_score must not be negative")
	}
	if r.MaxCandidates <= 0 {
		return fmt.Errorf("max_candidates must be greater than 0")
	}
	return nil
}

// Validate checks the LLM settings.
func (l *LLMConfig) Validate() error {
	if !l.Enabled {
		return nil
	}
	if l.Model == "" {
		return fmt.Errorf("model is required when llm is enabled")
	}
	if l.APIKey == "" {
		return fmt.Errorf("API key is required but not found. Ensure REPLAY_LLM_API_KEY is set")
	}
	return nil
}

// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Fienta  FientaConfig  `mapstructure:"fienta" yaml:"fienta"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Network NetworkConfig `mapstructure:"network" yaml:"network"`
	Audit   AuditConfig   `mapstructure:"audit" yaml:"audit"`
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
}

// FientaConfig identifies the target console and how to authenticate.
type FientaConfig struct {
	BaseURL       string `mapstructure:"base_url" yaml:"base_url"`
	EventID       string `mapstructure:"event_id" yaml:"event_id"`
	Email         string `mapstructure:"email" yaml:"email"`
	Password      string `mapstructure:"password" yaml:"password"`
	AuthStatePath string `mapstructure:"auth_state_path" yaml:"auth_state_path"`
	// ManualLogin blocks until a human completes the login form instead of
	// submitting credentials.
	ManualLogin        bool          `mapstructure:"manual_login" yaml:"manual_login"`
	ManualLoginTimeout time.Duration `mapstructure:"manual_login_timeout" yaml:"manual_login_timeout"`
}

// BrowserConfig controls the Chrome process.
type BrowserConfig struct {
	Headless  bool     `mapstructure:"headless" yaml:"headless"`
	UserAgent string   `mapstructure:"user_agent" yaml:"user_agent"`
	Args      []string `mapstructure:"args" yaml:"args"`
}

// NetworkConfig holds the waits that every network-bound step suspends on.
type NetworkConfig struct {
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	PostLoadWait      time.Duration `mapstructure:"post_load_wait" yaml:"post_load_wait"`
	ResolveWait       time.Duration `mapstructure:"resolve_wait" yaml:"resolve_wait"`
	VerifyWait        time.Duration `mapstructure:"verify_wait" yaml:"verify_wait"`
	SettleDelay       time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
	ItemInterval      time.Duration `mapstructure:"item_interval" yaml:"item_interval"`
}

// AuditConfig controls the run-scoped outcome log.
type AuditConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// LoggerConfig configures the zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// SetDefaults registers the baseline values on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("fienta.base_url", "https://fienta.com")
	// Empty defaults keep these keys visible to AutomaticEnv during
	// Unmarshal; env-only keys without a registered default are dropped.
	v.SetDefault("fienta.event_id", "")
	v.SetDefault("fienta.email", "")
	v.SetDefault("fienta.password", "")
	v.SetDefault("fienta.auth_state_path", "auth/state.json")
	v.SetDefault("fienta.manual_login", false)
	v.SetDefault("fienta.manual_login_timeout", 3*time.Minute)

	v.SetDefault("browser.headless", true)

	v.SetDefault("network.navigation_timeout", 60*time.Second)
	v.SetDefault("network.post_load_wait", 1500*time.Millisecond)
	v.SetDefault("network.resolve_wait", 3*time.Second)
	v.SetDefault("network.verify_wait", 10*time.Second)
	v.SetDefault("network.settle_delay", time.Second)
	v.SetDefault("network.item_interval", 500*time.Millisecond)

	v.SetDefault("audit.dir", "logs")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "fienta-codectl")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
}

// Init wires config file discovery and environment binding on a viper
// instance. A local .env is loaded first so deployments that keep the
// Fienta credentials there keep working without exporting anything.
func Init(v *viper.Viper, cfgFile string) error {
	_ = godotenv.Load()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("FIENTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and env vars carry the run.
	}
	return nil
}

// Validate checks the combinations a run cannot proceed without.
func (c *Config) Validate() error {
	if c.Fienta.EventID == "" {
		return fmt.Errorf("fienta.event_id is required")
	}
	if !c.Fienta.ManualLogin && (c.Fienta.Email == "" || c.Fienta.Password == "") && c.Fienta.AuthStatePath == "" {
		return fmt.Errorf("either credentials, manual_login, or a persisted auth state is required")
	}
	return nil
}

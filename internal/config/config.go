// Package config loads cliptran settings from flags, environment, an optional
// config file and a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/valpere/cliptran/internal/detector"
	"github.com/valpere/cliptran/internal/mode"
	"github.com/valpere/cliptran/internal/pricing"
	"github.com/valpere/cliptran/internal/translator"
)

// EnvPrefix is prepended to every environment override, e.g. CLIPTRAN_MODEL.
const EnvPrefix = "CLIPTRAN"

type ProviderConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	Organization string `mapstructure:"organization"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DB      string `mapstructure:"db"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Config is the fully resolved settings tree.
type Config struct {
	OpenAI         ProviderConfig `mapstructure:"openai"`
	DeepSeek       ProviderConfig `mapstructure:"deepseek"`
	Model          string         `mapstructure:"model"`
	ModelsFile     string         `mapstructure:"models_file"`
	TermsFile      string         `mapstructure:"terminology_file"`
	SourceLang     string         `mapstructure:"source_lang"`
	TargetLang     string         `mapstructure:"target_lang"`
	Mode           string         `mapstructure:"mode"`
	Quality        bool           `mapstructure:"quality"`
	AutoCopy       bool           `mapstructure:"auto_copy"`
	Display        string         `mapstructure:"display"`
	PollInterval   time.Duration  `mapstructure:"poll_interval"`
	ErrorBackoff   time.Duration  `mapstructure:"error_backoff"`
	BatchDelay     time.Duration  `mapstructure:"batch_delay"`
	RequestTimeout time.Duration  `mapstructure:"request_timeout"`
	ValidateOutput bool           `mapstructure:"validate_output"`
	History        HistoryConfig  `mapstructure:"history"`
	Debug          bool           `mapstructure:"debug"`
	LogFile        string         `mapstructure:"log_file"`
	Server         ServerConfig   `mapstructure:"server"`
}

// SetDefaults registers every key with its default. Keys without a default are
// invisible to AutomaticEnv during Unmarshal, so all of them are listed.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", translator.DefaultOpenAIBaseURL)
	v.SetDefault("openai.organization", "")
	v.SetDefault("deepseek.api_key", "")
	v.SetDefault("deepseek.base_url", translator.DefaultDeepSeekBaseURL)
	v.SetDefault("model", pricing.DefaultModelID)
	v.SetDefault("models_file", "")
	v.SetDefault("terminology_file", "")
	v.SetDefault("source_lang", string(detector.Japanese))
	v.SetDefault("target_lang", string(detector.Chinese))
	v.SetDefault("mode", string(mode.Auto))
	v.SetDefault("quality", false)
	v.SetDefault("auto_copy", true)
	v.SetDefault("display", "append")
	v.SetDefault("poll_interval", time.Second)
	v.SetDefault("error_backoff", 2*time.Second)
	v.SetDefault("batch_delay", 500*time.Millisecond)
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("validate_output", false)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.db", "./data/cliptran.db")
	v.SetDefault("debug", false)
	v.SetDefault("log_file", "")
	v.SetDefault("server.addr", "127.0.0.1:8787")
}

// LoadDotEnv loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is fine.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load resolves the configuration held by v. When configFile is empty the
// file is searched as cliptran.yaml in the working directory and as
// .cliptran.yaml in the home directory; not finding one is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("openai.api_key", EnvPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("deepseek.api_key", EnvPrefix+"_DEEPSEEK_API_KEY", "DEEPSEEK_API_KEY")

	if err := readConfigFile(v, configFile); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readConfigFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
		return nil
	}

	v.SetConfigType("yaml")
	v.SetConfigName("cliptran")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err == nil {
		return nil
	} else if !isNotFound(err) {
		return fmt.Errorf("failed to read config: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	path := filepath.Join(home, ".cliptran.yaml")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf)
}

// Validate checks the values that the engine would otherwise reject later.
func (c *Config) Validate() error {
	if c.SourceLang != detector.Auto && !detector.IsSupported(c.SourceLang) {
		return fmt.Errorf("unsupported source_lang %q", c.SourceLang)
	}
	if !detector.IsSupported(c.TargetLang) {
		return fmt.Errorf("unsupported target_lang %q", c.TargetLang)
	}
	if _, err := mode.Parse(c.Mode); err != nil {
		return err
	}
	switch c.Display {
	case "append", "clear":
	default:
		return fmt.Errorf("display must be append or clear, got %q", c.Display)
	}
	if c.PollInterval <= 0 || c.ErrorBackoff <= 0 {
		return fmt.Errorf("poll_interval and error_backoff must be positive")
	}
	if c.BatchDelay < 0 || c.RequestTimeout < 0 {
		return fmt.Errorf("batch_delay and request_timeout must not be negative")
	}
	return nil
}

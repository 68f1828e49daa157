// Package config loads and validates monitor configuration via Viper.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/SatyamPundir/product-stock-tracker/internal/stock"
)

// DefaultUserAgent is sent on every fetch unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config captures all monitor configuration knobs loaded via Viper.
type Config struct {
	Email                EmailConfig     `mapstructure:"email"`
	Telegram             TelegramConfig  `mapstructure:"telegram"`
	Browser              BrowserConfig   `mapstructure:"browser"`
	Diag                 DiagConfig      `mapstructure:"diag"`
	Logging              LoggingConfig   `mapstructure:"logging"`
	Products             []stock.Product `mapstructure:"products"`
	CheckIntervalSeconds int             `mapstructure:"check_interval"`
	UserAgent            string          `mapstructure:"user_agent"`
	SingleCheck          bool            `mapstructure:"single_check"`
}

// EmailConfig holds SMTP delivery settings for the email channel.
type EmailConfig struct {
	SMTPServer     string `mapstructure:"smtp_server"`
	SMTPPort       int    `mapstructure:"smtp_port"`
	SenderEmail    string `mapstructure:"sender_email"`
	SenderPassword string `mapstructure:"sender_password"`
	RecipientEmail string `mapstructure:"recipient_email"`
}

// Configured reports whether the channel has enough settings to attempt a send.
func (e EmailConfig) Configured() bool {
	return e.SenderEmail != "" && e.RecipientEmail != ""
}

// TelegramConfig holds bot API settings for the chat channel. An empty token
// or chat id disables the channel without error.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// Configured reports whether the chat channel should attempt sends.
func (t TelegramConfig) Configured() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// BrowserConfig configures the headless browser subsystem.
type BrowserConfig struct {
	ExecPath          string `mapstructure:"exec_path"`
	NavTimeoutSeconds int    `mapstructure:"nav_timeout_seconds"`
}

// DiagConfig controls the optional diagnostics HTTP listener. Port 0 keeps
// it off so the only observable output is the log stream.
type DiagConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from the given file, falling back entirely to
// environment variables when the file is absent. An empty path tries
// config.json in the working directory.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	explicit := path != ""
	if path == "" {
		path = "config.json"
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		if explicit || !missing {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.Products) == 0 {
		products, err := productsFromEnv()
		if err != nil {
			return Config{}, err
		}
		cfg.Products = products
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("email.smtp_server", "smtp.gmail.com")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.nav_timeout_seconds", 15)
	v.SetDefault("diag.port", 0)
	v.SetDefault("logging.development", false)
	v.SetDefault("check_interval", 300)
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("single_check", false)
}

// bindEnv wires the legacy flat environment variable names used by cloud
// deployments of this monitor.
func bindEnv(v *viper.Viper) {
	bindings := map[string]string{
		"email.smtp_server":     "SMTP_SERVER",
		"email.smtp_port":       "SMTP_PORT",
		"email.sender_email":    "SENDER_EMAIL",
		"email.sender_password": "SENDER_PASSWORD",
		"email.recipient_email": "RECIPIENT_EMAIL",
		"telegram.bot_token":    "TELEGRAM_BOT_TOKEN",
		"telegram.chat_id":      "TELEGRAM_CHAT_ID",
		"browser.exec_path":     "CHROME_BIN",
		"check_interval":        "CHECK_INTERVAL",
		"user_agent":            "USER_AGENT",
		"single_check":          "SINGLE_CHECK",
	}
	for key, env := range bindings {
		v.BindEnv(key, env) //nolint:errcheck // only errors on empty key
	}
}

// productsFromEnv decodes the PRODUCTS_JSON variable, the serialized product
// list used when no config file is mounted.
func productsFromEnv() ([]stock.Product, error) {
	raw := os.Getenv("PRODUCTS_JSON")
	if raw == "" {
		return nil, nil
	}
	var products []stock.Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		return nil, fmt.Errorf("parse PRODUCTS_JSON: %w", err)
	}
	return products, nil
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.CheckIntervalSeconds <= 0 {
		return fmt.Errorf("check_interval must be > 0")
	}
	if c.Email.SMTPPort <= 0 {
		return fmt.Errorf("email.smtp_port must be > 0")
	}
	if c.Browser.NavTimeoutSeconds <= 0 {
		return fmt.Errorf("browser.nav_timeout_seconds must be > 0")
	}
	if c.Diag.Port < 0 {
		return fmt.Errorf("diag.port must be >= 0")
	}
	for i, p := range c.Products {
		if p.Name == "" {
			return fmt.Errorf("products[%d].name must be set", i)
		}
		if p.URL == "" {
			return fmt.Errorf("products[%d].url must be set", i)
		}
	}
	return nil
}

// CheckInterval converts the configured interval into a duration.
func (c Config) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalSeconds) * time.Second
}

// NavTimeout converts the configured navigation timeout into a duration.
func (c BrowserConfig) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutSeconds) * time.Second
}

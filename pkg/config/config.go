// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	// EnvConfigPath overrides the location of the optional YAML config file.
	EnvConfigPath = "GEOMAIL_CONFIG_PATH"

	DefaultPort     = 3000
	DefaultSMTPHost = "smtp.gmail.com"
	DefaultSMTPPort = 587
)

type Server struct {
	Port int `mapstructure:"port"`
	// ListenAddress takes precedence over Port when set (e.g. "127.0.0.1:8080").
	ListenAddress string `mapstructure:"listenAddress"`
	TLSCertFile   string `mapstructure:"tlsCertFile"`
	TLSKeyFile    string `mapstructure:"tlsKeyFile"`
	// TrustedProxies lists IPs/CIDRs whose X-Forwarded-For headers are honoured.
	TrustedProxies []string `mapstructure:"trustedProxies"`
}

// Mail holds the outbound SMTP account and the fixed notification recipient.
type Mail struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	InsecureSkipVerify bool   `mapstructure:"insecureSkipVerify"`
	// SenderAddress defaults to User, which most providers require anyway.
	SenderAddress string `mapstructure:"senderAddress"`
	SenderName    string `mapstructure:"senderName"`
	Recipient     string `mapstructure:"recipient"`
}

type CORS struct {
	AllowOrigins []string `mapstructure:"allowOrigins"`
	AllowMethods []string `mapstructure:"allowMethods"`
	AllowHeaders []string `mapstructure:"allowHeaders"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server Server `mapstructure:"server"`
	Mail   Mail   `mapstructure:"mail"`
	CORS   CORS   `mapstructure:"cors"`
	Log    Log    `mapstructure:"log"`
}

// envBindings maps config keys to the environment variables the relay has
// always been deployed with.
var envBindings = map[string][]string{
	"server.port":             {"PORT"},
	"server.listenAddress":    {"LISTEN_ADDRESS"},
	"server.tlsCertFile":      {"TLS_CERT_FILE"},
	"server.tlsKeyFile":       {"TLS_KEY_FILE"},
	"mail.host":               {"SMTP_HOST"},
	"mail.port":               {"SMTP_PORT"},
	"mail.user":               {"EMAIL_USER"},
	"mail.password":           {"EMAIL_PASS"},
	"mail.insecureSkipVerify": {"SMTP_INSECURE_SKIP_VERIFY"},
	"mail.senderAddress":      {"EMAIL_FROM"},
	"mail.senderName":         {"EMAIL_FROM_NAME"},
	"mail.recipient":          {"RECIPIENT_EMAIL"},
	"cors.allowOrigins":       {"CORS_ALLOW_ORIGINS"},
	"log.level":               {"LOG_LEVEL"},
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("mail.host", DefaultSMTPHost)
	v.SetDefault("mail.port", DefaultSMTPPort)
	v.SetDefault("cors.allowOrigins", []string{"*"})
	v.SetDefault("cors.allowMethods", []string{"POST", "GET"})
	v.SetDefault("cors.allowHeaders", []string{"Content-Type", "Authorization"})
	v.SetDefault("log.level", "info")

	for key, envs := range envBindings {
		// BindEnv only fails when called without a key
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
	return v
}

// Load reads the configuration from an optional YAML file and the process
// environment. Environment variables win over file values.
// If configPath is empty, GEOMAIL_CONFIG_PATH is consulted, then ./config.yaml;
// a missing default file is not an error, a missing explicit file is.
func Load(configPath ...string) (Config, error) {
	var cfg Config
	v := newViper()

	path := ""
	if len(configPath) > 0 && configPath[0] != "" {
		path = configPath[0]
	} else if p, ok := os.LookupEnv(EnvConfigPath); ok && p != "" {
		path = p
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("reading geomail config file %q: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding geomail config: %w", err)
	}
	cfg.Defaults()
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment without overriding variables that are already set.
// A missing file is ignored.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := gotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// Defaults fills derived values that depend on other fields.
func (c *Config) Defaults() {
	if c.Server.Port <= 0 {
		c.Server.Port = DefaultPort
	}
	if c.Mail.Host == "" {
		c.Mail.Host = DefaultSMTPHost
	}
	if c.Mail.Port <= 0 {
		c.Mail.Port = DefaultSMTPPort
	}
	if c.Mail.User == "" {
		errs = append(errs, errors.New("mail.user must be set (EMAIL_USER)"))
	}
	if c.Mail.Password == "" {
		errs = append(errs, errors.New("mail.password must be set (EMAIL_PASS)"))
	}
	if c.Mail.SenderAddress == "" {
		c.Mail.SenderAddress = c.Mail.User
	}
	c.CORS.AllowOrigins = trimAll(c.CORS.AllowOrigins)
}

// Addr returns the address the HTTP server binds to.
func (c Config) Addr() string {
	if c.Server.ListenAddress != "" {
		return c.Server.ListenAddress
	}
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Validate reports configuration that would make every send fail.
func (c Config) Validate() error {
	var errs []error
	if c.Mail.Host == "" {
		errs = append(errs, errors.New("mail.host must be set"))
	}
	if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
		errs = append(errs, fmt.Errorf("mail.port %d out of range", c.Mail.Port))
	}
	if c.Mail.SenderAddress == "" {
		errs = append(errs, errors.New("sender address must be set (EMAIL_USER or EMAIL_FROM)"))
	} else if err := ValidateAddress(c.Mail.SenderAddress); err != nil {
		errs = append(errs, fmt.Errorf("sender address: %w", err))
	}
	if c.Mail.Recipient == "" {
		errs = append(errs, errors.New("recipient must be set (RECIPIENT_EMAIL)"))
	} else if err := ValidateAddress(c.Mail.Recipient); err != nil {
		errs = append(errs, fmt.Errorf("recipient: %w", err))
	}
	if (c.Server.TLSCertFile == "") != (c.Server.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.tlsCertFile and server.tlsKeyFile must be set together"))
	}
	return errors.Join(errs...)
}

// ValidateAddress checks that addr is a single RFC 5322 address.
func ValidateAddress(addr string) error {
	if _, err := mail.ParseAddress(addr); err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	return nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

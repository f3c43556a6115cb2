package config

import (
	"errors"
	"io/fs"
	"net"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	KeyHost             = "HOST"
	KeyPort             = "PORT"
	KeyClaudeAPIKey     = "CLAUDE_API_KEY"
	KeyClaudeAPIURL     = "CLAUDE_API_URL"
	KeyClaudeModel      = "CLAUDE_MODEL"
	KeyTelegramBotToken = "TELEGRAM_BOT_TOKEN"
	KeyRateLimitRPS     = "RATE_LIMIT_RPS"
	KeyRateLimitBurst   = "RATE_LIMIT_BURST"
	KeyLogLevel         = "LOG_LEVEL"
	KeyGinMode          = "GIN_MODE"
	KeyTrustedProxies   = "TRUSTED_PROXIES"
)

type Config struct {
	Host             string
	Port             int
	ClaudeAPIURL     string
	ClaudeModel      string
	TelegramBotToken string
	RateLimitRPS     float64
	RateLimitBurst   int
	LogLevel         string
	GinMode          string

	// TrustedProxies lists proxies whose X-Forwarded-For is believed when
	// resolving the client IP. Empty means the peer address is used.
	TrustedProxies []string

	// APIKey reads the inference credential on every call so a rotated
	// key takes effect without a restart.
	APIKey func() string
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are skipped; variables already set are not overridden.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		log.Debug().Str("file", f).Msg("loaded env file")
	}
	return nil
}

// Init registers defaults and environment binding on v and reads cfgFile
// when one is given.
func Init(v *viper.Viper, cfgFile string) error {
	v.SetDefault(KeyHost, "0.0.0.0")
	v.SetDefault(KeyPort, 8000)
	v.SetDefault(KeyClaudeAPIKey, "")
	v.SetDefault(KeyClaudeAPIURL, "https://api.anthropic.com/v1/messages")
	v.SetDefault(KeyClaudeModel, "claude-3-sonnet-20240229")
	v.SetDefault(KeyTelegramBotToken, "")
	v.SetDefault(KeyRateLimitRPS, 0)
	v.SetDefault(KeyRateLimitBurst, 10)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyGinMode, "release")
	v.SetDefault(KeyTrustedProxies, "")

	v.AutomaticEnv()

	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	log.Info().Str("file", v.ConfigFileUsed()).Msg("using config file")
	return nil
}

func Load(v *viper.Viper) Config {
	return Config{
		Host:             v.GetString(KeyHost),
		Port:             v.GetInt(KeyPort),
		ClaudeAPIURL:     v.GetString(KeyClaudeAPIURL),
		ClaudeModel:      v.GetString(KeyClaudeModel),
		TelegramBotToken: strings.TrimSpace(v.GetString(KeyTelegramBotToken)),
		RateLimitRPS:     v.GetFloat64(KeyRateLimitRPS),
		RateLimitBurst:   v.GetInt(KeyRateLimitBurst),
		LogLevel:         v.GetString(KeyLogLevel),
		GinMode:          v.GetString(KeyGinMode),
		TrustedProxies:   splitList(v.GetString(KeyTrustedProxies)),
		APIKey: func() string {
			return v.GetString(KeyClaudeAPIKey)
		},
	}
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ConfigureLogger sets the global zerolog level. Unknown levels fall back
// to info.
func ConfigureLogger(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	return lvl
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Log struct {
		Level string
	}
	Database struct {
		Driver string
		DSN    string
	}
	Auth struct {
		JWTSecret            string
		TokenTTLMinutes      int
		VerificationTTLHours int
		ResetTTLMinutes      int
	}
	Mail struct {
		Provider string
		APIKey   string
		From     string
		FromName string
		BaseURL  string
	}
	RateLimit struct {
		RPS   float64
		Burst int
	}
	Storage struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
	}
	AWS struct {
		Profile string
	}
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

func (c Config) VerificationTTL() time.Duration {
	return time.Duration(c.Auth.VerificationTTLHours) * time.Hour
}

func (c Config) ResetTTL() time.Duration {
	return time.Duration(c.Auth.ResetTTLMinutes) * time.Minute
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("auth jwt secret is required")
	}
	switch c.Mail.Provider {
	case "log":
	case "sendgrid":
		if c.Mail.APIKey == "" || c.Mail.From == "" {
			return fmt.Errorf("mail api key and from address are required for sendgrid")
		}
	default:
		return fmt.Errorf("unknown mail provider %q", c.Mail.Provider)
	}
	return nil
}

// Load reads configuration from environment variables and optional config files.
// A .env file in the working directory is loaded first; variables already set
// in the environment win.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("FINANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/finance.db")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 120)
	v.SetDefault("auth.verificationttlhours", 24)
	v.SetDefault("auth.resetttlminutes", 60)
	v.SetDefault("mail.provider", "log")
	v.SetDefault("mail.apikey", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.fromname", "Finance Tracker")
	v.SetDefault("mail.baseurl", "http://localhost:3000")
	v.SetDefault("ratelimit.rps", 1.0)
	v.SetDefault("ratelimit.burst", 10)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "account-archives")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

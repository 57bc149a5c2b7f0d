package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"stkrelay/pkg/mpesa"
)

type Config struct {
	Server    ServerConfig
	Mpesa     MpesaConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	StaticDir      string
	AllowedOrigins []string
}

// MpesaConfig holds the Daraja app credentials and STK settings.
type MpesaConfig struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	CallbackURL    string
	Timeout        time.Duration
}

type RateLimitConfig struct {
	// STK push requests per second per client IP; 0 disables the limit.
	RequestsPerSecond float64
}

// Load reads an optional .env file and then the environment. It reports
// whether a .env file was found so the caller can log it once a logger exists.
func Load() (*Config, bool) {
	dotenv := godotenv.Load() == nil
	return FromEnv(), dotenv
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "5000"),
			Env:            getEnv("APP_ENV", "development"),
			ReadTimeout:    getDuration("READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getDuration("WRITE_TIMEOUT", 10*time.Second),
			StaticDir:      getEnv("STATIC_DIR", "public"),
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Mpesa: MpesaConfig{
			BaseURL:        getEnv("DARAJA_BASE_URL", mpesa.DefaultBaseURL),
			ConsumerKey:    os.Getenv("DARAJA_CONSUMER_KEY"),
			ConsumerSecret: os.Getenv("DARAJA_CONSUMER_SECRET"),
			Shortcode:      os.Getenv("DARAJA_SHORTCODE"),
			Passkey:        os.Getenv("DARAJA_PASSKEY"),
			CallbackURL:    os.Getenv("CALLBACK_URL"),
			Timeout:        getDuration("DARAJA_TIMEOUT", 30*time.Second),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getFloat("STKPUSH_RATE_LIMIT", 5),
		},
	}
}

func (m MpesaConfig) Credentials() mpesa.Credentials {
	return mpesa.Credentials{
		ConsumerKey:    m.ConsumerKey,
		ConsumerSecret: m.ConsumerSecret,
		Shortcode:      m.Shortcode,
		Passkey:        m.Passkey,
		CallbackURL:    m.CallbackURL,
	}
}

// MissingCredentials lists the payment variables that are unset. Startup
// does not fail on them; Daraja rejects the first push instead.
func (c *Config) MissingCredentials() []string {
	var missing []string
	for _, v := range []struct{ name, value string }{
		{"DARAJA_CONSUMER_KEY", c.Mpesa.ConsumerKey},
		{"DARAJA_CONSUMER_SECRET", c.Mpesa.ConsumerSecret},
		{"DARAJA_SHORTCODE", c.Mpesa.Shortcode},
		{"DARAJA_PASSKEY", c.Mpesa.Passkey},
		{"CALLBACK_URL", c.Mpesa.CallbackURL},
	} {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	return missing
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && f >= 0 {
		return f
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

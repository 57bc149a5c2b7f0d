package config

import (
	"reflect"
	"testing"
	"time"

	"stkrelay/pkg/mpesa"
)

var allKeys = []string{
	"PORT", "APP_ENV", "READ_TIMEOUT", "WRITE_TIMEOUT", "STATIC_DIR", "CORS_ALLOWED_ORIGINS",
	"DARAJA_BASE_URL", "DARAJA_CONSUMER_KEY", "DARAJA_CONSUMER_SECRET", "DARAJA_SHORTCODE",
	"DARAJA_PASSKEY", "CALLBACK_URL", "DARAJA_TIMEOUT", "STKPUSH_RATE_LIMIT",
}

func clearEnv(t *testing.T) {
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := FromEnv()

	if cfg.Server.Port != "5000" {
		t.Errorf("expected default port 5000, got %s", cfg.Server.Port)
	}
	if cfg.Server.StaticDir != "public" {
		t.Errorf("expected static dir public, got %s", cfg.Server.StaticDir)
	}
	if cfg.Mpesa.BaseURL != mpesa.DefaultBaseURL {
		t.Errorf("expected sandbox base url, got %s", cfg.Mpesa.BaseURL)
	}
	if cfg.Mpesa.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.Mpesa.Timeout)
	}
	if !reflect.DeepEqual(cfg.Server.AllowedOrigins, []string{"*"}) {
		t.Errorf("unexpected origins: %v", cfg.Server.AllowedOrigins)
	}
	if cfg.RateLimit.RequestsPerSecond != 5 {
		t.Errorf("expected rate limit 5, got %v", cfg.RateLimit.RequestsPerSecond)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DARAJA_CONSUMER_KEY", "key")
	t.Setenv("DARAJA_CONSUMER_SECRET", "secret")
	t.Setenv("DARAJA_SHORTCODE", "174379")
	t.Setenv("DARAJA_PASSKEY", "pass")
	t.Setenv("CALLBACK_URL", "https://example.com/callback")
	t.Setenv("DARAJA_TIMEOUT", "5s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("STKPUSH_RATE_LIMIT", "0")

	cfg := FromEnv()
	if cfg.Server.Port != "8080" {
		t.Errorf("port: %s", cfg.Server.Port)
	}
	if cfg.Mpesa.Timeout != 5*time.Second {
		t.Errorf("timeout: %v", cfg.Mpesa.Timeout)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Server.AllowedOrigins, want) {
		t.Errorf("origins: %v", cfg.Server.AllowedOrigins)
	}
	if cfg.RateLimit.RequestsPerSecond != 0 {
		t.Errorf("rate limit: %v", cfg.RateLimit.RequestsPerSecond)
	}
	if missing := cfg.MissingCredentials(); len(missing) != 0 {
		t.Errorf("expected nothing missing, got %v", missing)
	}
	creds := cfg.Mpesa.Credentials()
	if creds.Shortcode != "174379" || creds.CallbackURL != "https://example.com/callback" {
		t.Errorf("credentials: %+v", creds)
	}
}

func TestFromEnv_BadValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("DARAJA_TIMEOUT", "soon")
	t.Setenv("STKPUSH_RATE_LIMIT", "-3")

	cfg := FromEnv()
	if cfg.Mpesa.Timeout != 30*time.Second {
		t.Errorf("timeout: %v", cfg.Mpesa.Timeout)
	}
	if cfg.RateLimit.RequestsPerSecond != 5 {
		t.Errorf("rate limit: %v", cfg.RateLimit.RequestsPerSecond)
	}
}

func TestMissingCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("DARAJA_CONSUMER_KEY", "key")

	got := FromEnv().MissingCredentials()
	want := []string{"DARAJA_CONSUMER_SECRET", "DARAJA_SHORTCODE", "DARAJA_PASSKEY", "CALLBACK_URL"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

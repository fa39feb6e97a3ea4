package config

import (
	"strings"
	"testing"
	"time"
)

func lookup(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func baseEnv() map[string]string {
	return map[string]string{
		"JWT_ACCESS_SECRET":  "access-secret-for-tests",
		"JWT_REFRESH_SECRET": "refresh-secret-for-tests",
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(lookup(baseEnv()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Auth.AccessTTL != 15*time.Minute {
		t.Fatalf("expected 15m access ttl, got %s", cfg.Auth.AccessTTL)
	}
	if cfg.Auth.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("expected 7d refresh ttl, got %s", cfg.Auth.RefreshTTL)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Fatalf("expected bcrypt cost 10, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.App.Addr() != "0.0.0.0:4000" {
		t.Fatalf("unexpected addr %s", cfg.App.Addr())
	}
	if cfg.App.Env != "development" {
		t.Fatalf("unexpected env %s", cfg.App.Env)
	}
}

func TestParseRequiresBothSecrets(t *testing.T) {
	_, err := Parse(lookup(map[string]string{}))
	if err == nil {
		t.Fatal("expected missing secrets to fail")
	}
	for _, key := range []string{"JWT_ACCESS_SECRET", "JWT_REFRESH_SECRET"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected error to name %s, got %v", key, err)
		}
	}
}

func TestParseRejectsSharedSecret(t *testing.T) {
	env := baseEnv()
	env["JWT_REFRESH_SECRET"] = env["JWT_ACCESS_SECRET"]
	if _, err := Parse(lookup(env)); err == nil {
		t.Fatal("expected identical access and refresh secrets to fail")
	}
}

func TestParseRejectsMalformedValues(t *testing.T) {
	cases := map[string]string{
		"JWT_EXPIRES_IN":     "fifteen minutes",
		"REFRESH_EXPIRES_IN": "-1d",
		"PORT":               "http",
		"NODE_ENV":           "staging",
		"AUTH_BCRYPT_COST":   "99",
		"REDIS_DB":           "zero",
	}
	for key, val := range cases {
		env := baseEnv()
		env[key] = val
		if _, err := Parse(lookup(env)); err == nil {
			t.Fatalf("expected %s=%q to fail", key, val)
		}
	}
}

func TestParseTTL(t *testing.T) {
	cases := map[string]time.Duration{
		"15m":        15 * time.Minute,
		"1h30m":      90 * time.Minute,
		"1d12h":      36 * time.Hour,
		"7d":         7 * 24 * time.Hour,
		"1.5d":       36 * time.Hour,
		"2w":         14 * 24 * time.Hour,
		"120":        120 * time.Millisecond,
		"3600000":    time.Hour,
		" 10S ":      10 * time.Second,
		"2 days":     48 * time.Hour,
		"10 mins":    10 * time.Minute,
		"1 hour":     time.Hour,
		"30 Seconds": 30 * time.Second,
		"500ms":      500 * time.Millisecond,
		"1y":         time.Duration(365.25 * float64(24*time.Hour)),
		".5h":        30 * time.Minute,
	}
	for raw, want := range cases {
		got, err := ParseTTL(raw)
		if err != nil {
			t.Fatalf("ParseTTL(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseTTL(%q) = %s, want %s", raw, got, want)
		}
	}
	for _, raw := range []string{"", "0", "abc", "d", "-5m", "2 fortnights", "-1 day", "1..5d"} {
		if _, err := ParseTTL(raw); err == nil {
			t.Fatalf("expected ParseTTL(%q) to fail", raw)
		}
	}
}

func TestWebhookSecretFallsBackToSecretKey(t *testing.T) {
	env := baseEnv()
	env["PAYSTACK_SECRET_KEY"] = "sk_test_123"
	cfg, err := Parse(lookup(env))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Payments.WebhookSecret != "sk_test_123" {
		t.Fatalf("expected fallback webhook secret, got %q", cfg.Payments.WebhookSecret)
	}
}

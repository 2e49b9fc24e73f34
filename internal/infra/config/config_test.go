package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("RETRY_BACKOFF", "2s,10s")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.StoreMode != StoreMemory {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if len(cfg.RetryBackoff) != 2 || cfg.RetryBackoff[1] != 10*time.Second {
		t.Fatalf("retry backoff = %v", cfg.RetryBackoff)
	}
	if cfg.ReminderLead != 48*time.Hour {
		t.Fatalf("reminder lead = %v", cfg.ReminderLead)
	}
}

func TestLoadRequiresMongoURIInMongoMode(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("STORE_MODE", "mongo")
	t.Setenv("MONGO_URI", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error without MONGO_URI")
	}
}

func TestValidateRequiresSecretOutsideDev(t *testing.T) {
	cfg := Config{Env: "prod", StoreMode: StoreMemory, OutboxPollInterval: time.Second, ReminderLead: time.Hour}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing IDENTITY_JWT_SECRET to fail")
	}
	cfg.IdentityJWTSecret = "s3cret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

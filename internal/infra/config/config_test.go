package config

import (
	"reflect"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite:/tmp/marin.db")
	t.Setenv("DISCORD_BOT_TOKEN", "abc")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.UpstreamBotID != DefaultUpstreamBotID {
		t.Errorf("UpstreamBotID = %q", cfg.UpstreamBotID)
	}
	if cfg.HTTPAddr != ":3000" || cfg.PresenceSpec != "@every 5m" || cfg.LogLevel != "info" || cfg.LogFormat != "console" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.ErrorWebhookRPS != 1 {
		t.Errorf("ErrorWebhookRPS = %v", cfg.ErrorWebhookRPS)
	}
	if cfg.BotToken() != "Bot abc" {
		t.Errorf("BotToken = %q", cfg.BotToken())
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/marin")
	t.Setenv("DISCORD_BOT_TOKEN", "Bot xyz")
	t.Setenv("OWNER_IDS", " 1, 2 ,,3")
	t.Setenv("ERROR_WEBHOOK_RPS", "0.5")
	t.Setenv("UPSTREAM_BOT_ID", "999")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(cfg.OwnerIDs, []string{"1", "2", "3"}) {
		t.Errorf("OwnerIDs = %q", cfg.OwnerIDs)
	}
	if !cfg.IsOwner("2") || cfg.IsOwner("4") {
		t.Error("IsOwner is wrong")
	}
	if cfg.ErrorWebhookRPS != 0.5 || cfg.UpstreamBotID != "999" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.BotToken() != "Bot xyz" {
		t.Errorf("BotToken = %q", cfg.BotToken())
	}
}

func TestParseRequiresDatabaseAndToken(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DISCORD_BOT_TOKEN", "")
	if _, err := Parse(); err == nil {
		t.Fatal("missing required vars accepted")
	}
}

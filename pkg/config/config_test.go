package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
environment: test
feed:
  websocket_url: wss://example.com/feed
`

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 8080 {
		t.Fatalf("server port default: got %d, want 8080", c.Server.Port)
	}
	if c.Strategy.TrendTFMinutes != 15 || c.Strategy.EmaSlowLen != 55 {
		t.Fatalf("strategy defaults: tf=%d slow=%d", c.Strategy.TrendTFMinutes, c.Strategy.EmaSlowLen)
	}
	if !c.Strategy.Sessions.Use || !c.Strategy.Sessions.Asia {
		t.Fatal("session defaults should enable all sessions")
	}
	if c.Strategy.Plan.DailyLossCap != 600 {
		t.Fatalf("daily loss cap default: got %v, want 600", c.Strategy.Plan.DailyLossCap)
	}
	if c.Instrument.TickSize != 0.25 || c.Instrument.TickValue != 5.0 {
		t.Fatalf("instrument defaults: size=%v value=%v", c.Instrument.TickSize, c.Instrument.TickValue)
	}
}

func TestLoadKeepsExplicitZeroValues(t *testing.T) {
	c, err := Load(writeConfig(t, minimalConfig+`
strategy:
  sessions:
    use: false
  cooldown_bars: 0
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Strategy.Sessions.Use {
		t.Fatal("explicit sessions.use=false was overridden by defaults")
	}
	if c.Strategy.CooldownBars != 0 {
		t.Fatalf("cooldown: got %d, want 0", c.Strategy.CooldownBars)
	}
}

func TestLoadRejectsOutOfRange(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"or minutes too high", "strategy:\n  or_minutes: 500\n"},
		{"negative pull band", "strategy:\n  pull_band_atr: -0.5\n"},
		{"rsi bands inverted", "strategy:\n  rsi_low: 48\n  rsi_high: 52\n"},
		{"ema order inverted", "strategy:\n  ema_fast_len: 60\n  ema_slow_len: 20\n"},
		{"zero tick size", "instrument:\n  tick_size: 0\n"},
		{"kafka intents without brokers", "intents:\n  backend: kafka\n"},
	}
	for _, tc := range cases {
		if _, err := Load(writeConfig(t, minimalConfig+tc.body)); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}

	// rsi_low 48 / rsi_high 52 pass the per-field ranges but not the
	// cross-field check; make sure the message points at the pair.
	_, err := Load(writeConfig(t, minimalConfig+"strategy:\n  rsi_low: 48\n  rsi_high: 52\n"))
	if err == nil || !strings.Contains(err.Error(), "rsi_low") {
		t.Fatalf("rsi cross-field error: %v", err)
	}
}

func TestLoadRejectsMissingFeedURL(t *testing.T) {
	if _, err := Load(writeConfig(t, "environment: test\n")); err == nil {
		t.Fatal("expected error for websocket feed without url")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("SYMBOL", "ES")
	t.Setenv("REDIS_ADDR", "redis:6379")
	c, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Instrument.Symbol != "ES" {
		t.Fatalf("symbol override: got %q, want ES", c.Instrument.Symbol)
	}
	if c.Status.Addr != "redis:6379" {
		t.Fatalf("redis override: got %q", c.Status.Addr)
	}
}

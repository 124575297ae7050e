package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xKoRx/hftgate/sdk/domain"
)

type fakeVars map[string]string

func (f fakeVars) GetVarWithDefault(_ context.Context, key, defaultValue string) (string, error) {
	if val, ok := f[key]; ok {
		return val, nil
	}
	return defaultValue, nil
}

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.ClientID = "client"
	cfg.ClientSecret = "secret"
	cfg.AccessToken = "token"
	cfg.AccountID = 44120
	cfg.Instruments = []string{"EURUSD"}
	return cfg
}

func TestApplyVars(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.applyVars(context.Background(), fakeVars{
		"broker/client_id":              "app-1",
		"broker/account_id":             "44120",
		"broker/account_type":           "live",
		"engine/address":                "pipe://hft_engine",
		"gateway/instruments":           "EURUSD, gbpusd,,",
		"gateway/stage_timeout_ms":      "1500",
		"gateway/heartbeat_interval_ms": "4000",
		"gateway/strategy":              "passive",
		"storage/journal_driver":        "sqlite",
		"storage/journal_dsn":           "file:journal.db",
		"endpoints/health_addr":         "127.0.0.1:7070",
	})
	require.NoError(t, err)

	assert.Equal(t, "app-1", cfg.ClientID)
	assert.Equal(t, int64(44120), cfg.AccountID)
	assert.Equal(t, "live", cfg.AccountType)
	assert.Equal(t, "pipe://hft_engine", cfg.EngineAddress)
	assert.Equal(t, []string{"EURUSD", "gbpusd"}, cfg.Instruments)
	assert.Equal(t, 1500*time.Millisecond, cfg.StageTimeout)
	assert.Equal(t, 4*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, "passive", cfg.Strategy)
	assert.Equal(t, "sqlite", cfg.JournalDriver)
	assert.Equal(t, "127.0.0.1:7070", cfg.HealthAddress)

	// Claves ausentes conservan los defaults
	assert.Equal(t, "hftgate-session", cfg.SessionID)
	assert.Equal(t, "data/advice.db", cfg.LedgerPath)
}

func TestApplyVarsInvalidNumbers(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.applyVars(context.Background(), fakeVars{"broker/account_id": "abc"}))

	cfg = DefaultConfig()
	assert.Error(t, cfg.applyVars(context.Background(), fakeVars{"gateway/stage_timeout_ms": "10s"}))
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ClientSecret = "from-file"
	env := map[string]string{envAccessToken: "token-env", envClientSecret: ""}
	cfg.applyEnv(func(key string) (string, bool) {
		val, ok := env[key]
		return val, ok
	})

	assert.Equal(t, "from-file", cfg.ClientSecret, "empty env value keeps previous secret")
	assert.Equal(t, "token-env", cfg.AccessToken)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{name: "missing client id", mutate: func(c *Config) { c.ClientID = "" }, field: "client_id"},
		{name: "missing secret", mutate: func(c *Config) { c.ClientSecret = "" }, field: "client_secret"},
		{name: "missing token", mutate: func(c *Config) { c.AccessToken = "" }, field: "access_token"},
		{name: "account id", mutate: func(c *Config) { c.AccountID = 0 }, field: "account_id"},
		{name: "account type", mutate: func(c *Config) { c.AccountType = "paper" }, field: "account_type"},
		{name: "no instruments", mutate: func(c *Config) { c.Instruments = nil }, field: "instruments"},
		{name: "duplicated instruments", mutate: func(c *Config) { c.Instruments = []string{"EURUSD", "eurusd"} }, field: "instruments"},
		{name: "strategy", mutate: func(c *Config) { c.Strategy = "martingale" }, field: "strategy"},
		{name: "heartbeat", mutate: func(c *Config) { c.HeartbeatInterval = 0 }, field: "heartbeat_interval"},
		{name: "journal driver", mutate: func(c *Config) { c.JournalDriver = "mysql" }, field: "journal_driver"},
		{name: "journal dsn", mutate: func(c *Config) { c.JournalDriver = "postgres" }, field: "journal_dsn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidateNormalizes(t *testing.T) {
	cfg := validConfig()
	cfg.AccountType = "live"
	cfg.Instruments = []string{" eurusd", "GbpUsd"}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, AccountTypeLive, cfg.AccountType)
	assert.Equal(t, []string{"EURUSD", "GBPUSD"}, cfg.Instruments)
	assert.Equal(t, "live.ctraderapi.com:5035", cfg.BrokerEndpoint())
}

func TestBrokerEndpoint(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "demo.ctraderapi.com:5035", cfg.BrokerEndpoint())

	cfg.BrokerAddress = "127.0.0.1:15035"
	assert.Equal(t, "127.0.0.1:15035", cfg.BrokerEndpoint())
}

func TestRedacted(t *testing.T) {
	cfg := validConfig()
	cfg.JournalDSN = "postgres://user:pass@db/hft"
	red := cfg.Redacted()

	assert.Equal(t, "***", red.ClientSecret)
	assert.Equal(t, "***", red.AccessToken)
	assert.Equal(t, "***", red.JournalDSN)
	assert.Equal(t, "secret", cfg.ClientSecret, "original untouched")
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Setenv("ETCD_ENDPOINTS", "")
	t.Setenv(envClientSecret, "env-secret")
	t.Setenv(envAccessToken, "env-token")

	path := filepath.Join(t.TempDir(), "hftgate.yaml")
	content := `
client_id: app-7
account_id: 91001
account_type: demo
engine_address: tcp://127.0.0.1:9100
session_id: icmarkets-session
instruments: [eurusd, USDJPY]
stage_timeout: 15s
strategy: relay
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "app-7", cfg.ClientID)
	assert.Equal(t, "env-secret", cfg.ClientSecret)
	assert.Equal(t, "env-token", cfg.AccessToken)
	assert.Equal(t, int64(91001), cfg.AccountID)
	assert.Equal(t, AccountTypeDemo, cfg.AccountType)
	assert.Equal(t, []string{"EURUSD", "USDJPY"}, cfg.Instruments)
	assert.Equal(t, 15*time.Second, cfg.StageTimeout)
	assert.Equal(t, 9*time.Second, cfg.HeartbeatInterval)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv("ETCD_ENDPOINTS", "")

	_, err := LoadConfig(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("instruments: {"), 0o600))
	_, err = LoadConfig(context.Background(), path)
	assert.Error(t, err)
}

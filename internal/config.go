package internal

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xKoRx/hftgate/internal/strategy"
	"github.com/xKoRx/hftgate/sdk/domain"
	"github.com/xKoRx/hftgate/sdk/etcd"
)

const (
	AccountTypeDemo = "DEMO"
	AccountTypeLive = "LIVE"

	demoHost = "demo.ctraderapi.com:5035"
	liveHost = "live.ctraderapi.com:5035"

	envClientSecret = "HFTGATE_CLIENT_SECRET"
	envAccessToken  = "HFTGATE_ACCESS_TOKEN"
	envScope        = "ENV"
)

// Config configuración del gateway.
//
// Orden de carga: defaults → archivo YAML → ETCD (namespace /hftgate/{env}/,
// sólo si ETCD_ENDPOINTS está definido) → secretos desde variables de entorno.
type Config struct {
	// Broker
	ClientID      string `yaml:"client_id"`      // broker/client_id
	ClientSecret  string `yaml:"client_secret"`  // env HFTGATE_CLIENT_SECRET
	AccessToken   string `yaml:"access_token"`   // env HFTGATE_ACCESS_TOKEN
	AccountID     int64  `yaml:"account_id"`     // broker/account_id
	AccountType   string `yaml:"account_type"`   // broker/account_type (DEMO|LIVE)
	BrokerAddress string `yaml:"broker_address"` // broker/address (override del host por account_type)

	// Engine
	EngineAddress string `yaml:"engine_address"` // engine/address (tcp://host:port | pipe://name)

	// Gateway
	SessionID         string        `yaml:"session_id"`         // gateway/session_id
	Instruments       []string      `yaml:"instruments"`        // gateway/instruments (comma separated)
	Strategy          string        `yaml:"strategy"`           // gateway/strategy (relay|passive)
	StageTimeout      time.Duration `yaml:"stage_timeout"`      // gateway/stage_timeout_ms (0 = sin timeout)
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"` // gateway/heartbeat_interval_ms
	HealthAddress     string        `yaml:"health_address"`     // endpoints/health_addr (vacío = deshabilitado)

	// Storage
	LedgerPath    string `yaml:"ledger_path"`    // storage/ledger_path (vacío = sin ledger)
	JournalDriver string `yaml:"journal_driver"` // storage/journal_driver (postgres|sqlite, vacío = sin journal)
	JournalDSN    string `yaml:"journal_dsn"`    // storage/journal_dsn

	// Telemetry
	ServiceName    string `yaml:"service_name"`    // telemetry/service_name
	ServiceVersion string `yaml:"service_version"` // telemetry/service_version
	Environment    string `yaml:"environment"`     // telemetry/environment
	OTLPEndpoint   string `yaml:"otlp_endpoint"`   // endpoints/otel/otlp_endpoint
	LogLevel       string `yaml:"log_level"`       // gateway/log_level (DEBUG, INFO, WARN, ERROR)
}

// DefaultConfig retorna la configuración base antes de aplicar fuentes externas.
func DefaultConfig() *Config {
	env := os.Getenv(envScope)
	if env == "" {
		env = "development"
	}
	return &Config{
		AccountType:       AccountTypeDemo,
		EngineAddress:     "tcp://127.0.0.1:9000",
		SessionID:         "hftgate-session",
		Strategy:          strategy.VariantRelay,
		StageTimeout:      30 * time.Second,
		HeartbeatInterval: 9 * time.Second,
		LedgerPath:        "data/advice.db",
		ServiceName:       "hftgate",
		ServiceVersion:    "dev",
		Environment:       env,
		LogLevel:          "INFO",
	}
}

// LoadConfig carga la configuración completa y la valida.
//
// Uso:
//
//	cfg, err := internal.LoadConfig(ctx, "configs/hftgate.yaml")
//	if err != nil {
//	    return err
//	}
func LoadConfig(ctx context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if endpoints := etcd.EndpointsFromEnv(); len(endpoints) > 0 {
		client, err := etcd.New(
			etcd.WithApp("hftgate"),
			etcd.WithEnv(cfg.Environment),
			etcd.WithEndpoints(endpoints...),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create ETCD client: %w", err)
		}
		defer client.Close()

		if err := cfg.applyVars(ctx, client); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// varSource es la parte de etcd.Client que usa la carga de configuración.
type varSource interface {
	GetVarWithDefault(ctx context.Context, key, defaultValue string) (string, error)
}

// applyVars sobrescribe con los valores presentes en ETCD. Claves ausentes no modifican nada.
func (c *Config) applyVars(ctx context.Context, src varSource) error {
	get := func(key string) string {
		val, err := src.GetVarWithDefault(ctx, key, "")
		if err != nil {
			return ""
		}
		return strings.TrimSpace(val)
	}
	setString := func(key string, dst *string) {
		if val := get(key); val != "" {
			*dst = val
		}
	}
	setMillis := func(key string, dst *time.Duration) error {
		val := get(key)
		if val == "" {
			return nil
		}
		ms, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = time.Duration(ms) * time.Millisecond
		return nil
	}

	setString("broker/client_id", &c.ClientID)
	setString("broker/account_type", &c.AccountType)
	setString("broker/address", &c.BrokerAddress)
	if val := get("broker/account_id"); val != "" {
		id, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid broker/account_id: %w", err)
		}
		c.AccountID = id
	}

	setString("engine/address", &c.EngineAddress)

	setString("gateway/session_id", &c.SessionID)
	setString("gateway/strategy", &c.Strategy)
	setString("gateway/log_level", &c.LogLevel)
	if val := get("gateway/instruments"); val != "" {
		c.Instruments = splitList(val)
	}
	if err := setMillis("gateway/stage_timeout_ms", &c.StageTimeout); err != nil {
		return err
	}
	if err := setMillis("gateway/heartbeat_interval_ms", &c.HeartbeatInterval); err != nil {
		return err
	}

	setString("storage/ledger_path", &c.LedgerPath)
	setString("storage/journal_driver", &c.JournalDriver)
	setString("storage/journal_dsn", &c.JournalDSN)

	setString("endpoints/health_addr", &c.HealthAddress)
	setString("endpoints/otel/otlp_endpoint", &c.OTLPEndpoint)

	setString("telemetry/service_name", &c.ServiceName)
	setString("telemetry/service_version", &c.ServiceVersion)
	setString("telemetry/environment", &c.Environment)
	return nil
}

// applyEnv toma los secretos de variables de entorno; nunca se guardan en ETCD.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if val, ok := lookup(envClientSecret); ok && val != "" {
		c.ClientSecret = val
	}
	if val, ok := lookup(envAccessToken); ok && val != "" {
		c.AccessToken = val
	}
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Validate verifica la configuración mínima requerida.
func (c *Config) Validate() error {
	switch {
	case c.ClientID == "":
		return domain.NewValidationError("client_id", c.ClientID, "required")
	case c.ClientSecret == "":
		return domain.NewValidationError("client_secret", "", "required (set "+envClientSecret+")")
	case c.AccessToken == "":
		return domain.NewValidationError("access_token", "", "required (set "+envAccessToken+")")
	case c.AccountID <= 0:
		return domain.NewValidationError("account_id", c.AccountID, "must be > 0")
	case c.EngineAddress == "":
		return domain.NewValidationError("engine_address", c.EngineAddress, "required")
	case c.SessionID == "":
		return domain.NewValidationError("session_id", c.SessionID, "required")
	case c.HeartbeatInterval <= 0:
		return domain.NewValidationError("heartbeat_interval", c.HeartbeatInterval, "must be > 0")
	case c.StageTimeout < 0:
		return domain.NewValidationError("stage_timeout", c.StageTimeout, "cannot be negative")
	}

	accountType := strings.ToUpper(c.AccountType)
	if accountType != AccountTypeDemo && accountType != AccountTypeLive {
		return domain.NewValidationError("account_type", c.AccountType, "must be DEMO or LIVE")
	}
	c.AccountType = accountType

	if err := domain.ValidateInstruments(c.Instruments); err != nil {
		return err
	}
	for i, t := range c.Instruments {
		c.Instruments[i] = domain.NormalizeTicker(t)
	}

	if _, err := strategy.New(c.Strategy, strategy.Deps{}); err != nil {
		return domain.NewValidationError("strategy", c.Strategy, err.Error())
	}

	switch c.JournalDriver {
	case "":
	case "postgres", "sqlite":
		if c.JournalDSN == "" {
			return domain.NewValidationError("journal_dsn", "", "required when journal_driver is set")
		}
	default:
		return domain.NewValidationError("journal_driver", c.JournalDriver, "must be postgres or sqlite")
	}
	return nil
}

// BrokerEndpoint retorna host:port del broker según account_type o el override.
func (c *Config) BrokerEndpoint() string {
	if c.BrokerAddress != "" {
		return c.BrokerAddress
	}
	if strings.EqualFold(c.AccountType, AccountTypeLive) {
		return liveHost
	}
	return demoHost
}

// Redacted retorna una copia apta para logs, sin secretos.
func (c *Config) Redacted() Config {
	out := *c
	if out.ClientSecret != "" {
		out.ClientSecret = "***"
	}
	if out.AccessToken != "" {
		out.AccessToken = "***"
	}
	if out.JournalDSN != "" {
		out.JournalDSN = "***"
	}
	return out
}

// Package config loads casevault configuration in three layers: compiled
// defaults, an optional YAML file (CONFIG_PATH) and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	strutil "casevault/pkg/platform/strings"
)

const ConfigPathEnvVar = "CONFIG_PATH"

const devSigningKey = "dev-secret-key-change-in-production"

// Config is the root configuration tree.
type Config struct {
	Server   Server         `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Kafka    KafkaConfig    `koanf:"kafka"`
	Ledger   LedgerConfig   `koanf:"ledger"`
	Blob     BlobConfig     `koanf:"blob"`
	Admin    AdminConfig    `koanf:"admin"`
	Log      LogConfig      `koanf:"log"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `koanf:"addr"`
	JWTSigningKey   string        `koanf:"jwt_signing_key"`
	TokenTTL        time.Duration `koanf:"token_ttl"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	AuthRateLimit   int           `koanf:"auth_rate_limit"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig selects the SQL driver. An empty URL keeps every store in memory.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	Driver          string        `koanf:"driver"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// RedisConfig backs the token revocation list. Empty URL uses memory.
type RedisConfig struct {
	URL          string        `koanf:"url"`
	PoolSize     int           `koanf:"pool_size"`
	MinIdleConns int           `koanf:"min_idle_conns"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// KafkaConfig mirrors activity entries onto a topic. Empty Brokers disables it.
type KafkaConfig struct {
	Brokers       []string `koanf:"brokers"`
	ActivityTopic string   `koanf:"activity_topic"`
	Partitions    int32    `koanf:"partitions"`
	Replication   int16    `koanf:"replication"`
}

// LedgerConfig selects the ledger adapter.
type LedgerConfig struct {
	Mode          string        `koanf:"mode"`
	PeerBinary    string        `koanf:"peer_binary"`
	Orderer       string        `koanf:"orderer"`
	OrdererCA     string        `koanf:"orderer_ca"`
	Channel       string        `koanf:"channel"`
	Chaincode     string        `koanf:"chaincode"`
	PeerAddress   string        `koanf:"peer_address"`
	PeerTLSRootCA string        `koanf:"peer_tls_root_ca"`
	Timeout       time.Duration `koanf:"timeout"`
}

// BlobConfig selects the content-addressed blob adapter.
type BlobConfig struct {
	Mode    string        `koanf:"mode"`
	APIURL  string        `koanf:"api_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// AdminConfig seeds an admin account at startup when Password is set.
type AdminConfig struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Email    string `koanf:"email"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

func defaultConfig() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			JWTSigningKey:   devSigningKey,
			TokenTTL:        12 * time.Hour,
			CORSOrigins:     []string{"http://localhost:3000"},
			AuthRateLimit:   20,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			AutoMigrate:     true,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			ActivityTopic: "casevault.activity",
			Partitions:    3,
			Replication:   1,
		},
		Ledger: LedgerConfig{
			Mode:        "memory",
			PeerBinary:  "peer",
			Orderer:     "orderer.example.com:7050",
			Channel:     "evidencechannel",
			Chaincode:   "evidence_1",
			PeerAddress: "localhost:7051",
			Timeout:     30 * time.Second,
		},
		Blob: BlobConfig{
			Mode:    "memory",
			APIURL:  "http://127.0.0.1:5001/api/v0",
			Timeout: 30 * time.Second,
		},
		Admin: AdminConfig{
			Username: "admin",
			Email:    "admin@casevault.local",
		},
		Log: LogConfig{Level: "info"},
	}
}

var envMappings = map[string]string{
	"casevault_addr":   "server.addr",
	"jwt_signing_key":  "server.jwt_signing_key",
	"token_ttl":        "server.token_ttl",
	"cors_origins":     "server.cors_origins",
	"auth_rate_limit":  "server.auth_rate_limit",
	"database_url":     "database.url",
	"database_driver":  "database.driver",
	"auto_migrate":     "database.auto_migrate",
	"redis_url":        "redis.url",
	"kafka_brokers":    "kafka.brokers",
	"activity_topic":   "kafka.activity_topic",
	"ledger_mode":      "ledger.mode",
	"peer_binary":      "ledger.peer_binary",
	"orderer_address":  "ledger.orderer",
	"orderer_ca":       "ledger.orderer_ca",
	"ledger_channel":   "ledger.channel",
	"ledger_chaincode": "ledger.chaincode",
	"peer_address":     "ledger.peer_address",
	"peer0_org1_ca":    "ledger.peer_tls_root_ca",
	"ledger_timeout":   "ledger.timeout",
	"blob_mode":        "blob.mode",
	"ipfs_api_url":     "blob.api_url",
	"blob_timeout":     "blob.timeout",
	"admin_username":   "admin.username",
	"admin_password":   "admin.password",
	"admin_email":      "admin.email",
	"log_level":        "log.level",
}

// envTransformFunc maps flat env names onto config paths; unknown vars are dropped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

var sliceConfigPaths = []string{"server.cors_origins", "kafka.brokers"}

// Load builds the configuration from defaults, CONFIG_PATH and the environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := splitSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// splitSliceFields turns comma separated env values into lists.
func splitSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		if err := k.Set(path, strutil.SplitList(strVal)); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "postgres", "pgx":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be postgres or pgx, got %q", c.Database.Driver))
	}
	switch c.Ledger.Mode {
	case "memory":
	case "peer":
		if c.Ledger.OrdererCA == "" || c.Ledger.PeerTLSRootCA == "" {
			errs = append(errs, errors.New("ledger.mode=peer requires ORDERER_CA and PEER0_ORG1_CA"))
		}
	default:
		errs = append(errs, fmt.Errorf("ledger.mode must be peer or memory, got %q", c.Ledger.Mode))
	}
	switch c.Blob.Mode {
	case "memory", "ipfs":
	default:
		errs = append(errs, fmt.Errorf("blob.mode must be ipfs or memory, got %q", c.Blob.Mode))
	}
	if c.Server.JWTSigningKey == "" {
		errs = append(errs, errors.New("server.jwt_signing_key is required"))
	}
	if c.Server.TokenTTL <= 0 {
		errs = append(errs, errors.New("server.token_ttl must be positive"))
	}
	return errors.Join(errs...)
}

// InMemory reports whether stores should run without a database.
func (c *Config) InMemory() bool {
	return c.Database.URL == ""
}

// UsesDevSigningKey flags the built-in development key so main can warn.
func (c *Config) UsesDevSigningKey() bool {
	return c.Server.JWTSigningKey == devSigningKey
}

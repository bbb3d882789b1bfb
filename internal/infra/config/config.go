package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App          AppSettings          `mapstructure:"app"`
	Telegram     TelegramSettings     `mapstructure:"telegram"`
	OAuth        OAuthSettings        `mapstructure:"oauth"`
	Sui          SuiSettings          `mapstructure:"sui"`
	Prover       ProverSettings       `mapstructure:"prover"`
	LLM          LLMSettings          `mapstructure:"llm"`
	Conversation ConversationSettings `mapstructure:"conversation"`
	PendingLogin PendingLoginSettings `mapstructure:"pending_login"`
	Redis        RedisSettings        `mapstructure:"redis"`
	Postgres     PostgresSettings     `mapstructure:"postgres"`
	Kafka        KafkaSettings        `mapstructure:"kafka"`
	Telemetry    TelemetrySettings    `mapstructure:"telemetry"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// TelegramSettings configures the bot transport.
type TelegramSettings struct {
	BotToken    string        `mapstructure:"bot_token"`
	APIBaseURL  string        `mapstructure:"api_base_url"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// OAuthSettings configures the zkLogin identity provider handshake.
type OAuthSettings struct {
	ClientID     string `mapstructure:"client_id"`
	AuthEndpoint string `mapstructure:"auth_endpoint"`
	RedirectHost string `mapstructure:"redirect_host"`
}

// SuiSettings configures the target chain.
type SuiSettings struct {
	Network        string `mapstructure:"network"`
	RPCURL         string `mapstructure:"rpc_url"`
	EpochLookahead uint64 `mapstructure:"epoch_lookahead"`
	GasBudget      uint64 `mapstructure:"gas_budget"`
}

// ProverSettings configures the zero-knowledge proving service.
type ProverSettings struct {
	URL     string        `mapstructure:"url"`
	Salt    string        `mapstructure:"salt"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LLMSettings configures the hosted completions API.
type LLMSettings struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// ConversationSettings configures the LLM continuation cache.
type ConversationSettings struct {
	Backend       string        `mapstructure:"backend"`
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	RedisPrefix   string        `mapstructure:"redis_prefix"`
}

// PendingLoginSettings bounds the in-flight login table.
type PendingLoginSettings struct {
	Capacity int `mapstructure:"capacity"`
}

// RedisSettings configures the optional Redis conversation backend.
type RedisSettings struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
}

// PostgresSettings configures the activity ledger database.
type PostgresSettings struct {
	Enabled           bool          `mapstructure:"enabled"`
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// KafkaSettings configures the wallet event producer.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
	Async       bool     `mapstructure:"async"`
}

type TelemetrySettings struct {
	Namespace string `mapstructure:"namespace"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("SQUAD")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"telegram.bot_token",
		"telegram.api_base_url",
		"telegram.poll_timeout",
		"oauth.client_id",
		"oauth.auth_endpoint",
		"oauth.redirect_host",
		"sui.network",
		"sui.rpc_url",
		"sui.epoch_lookahead",
		"sui.gas_budget",
		"prover.url",
		"prover.salt",
		"prover.timeout",
		"llm.api_key",
		"llm.base_url",
		"llm.model",
		"conversation.backend",
		"conversation.ttl",
		"conversation.sweep_interval",
		"conversation.redis_prefix",
		"pending_login.capacity",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"postgres.enabled",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"kafka.brokers",
		"kafka.topic_prefix",
		"kafka.async",
		"telemetry.namespace",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "sui-squad-bot")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("telegram.api_base_url", "https://api.telegram.org")
	v.SetDefault("telegram.poll_timeout", "30s")

	v.SetDefault("oauth.auth_endpoint", "https://accounts.google.com/o/oauth2/v2/auth")

	v.SetDefault("sui.network", "devnet")
	v.SetDefault("sui.epoch_lookahead", 2)
	v.SetDefault("sui.gas_budget", 10_000_000)

	v.SetDefault("prover.url", "https://prover-dev.mystenlabs.com/v1")
	v.SetDefault("prover.salt", "0")
	v.SetDefault("prover.timeout", "30s")

	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4.1-mini")

	v.SetDefault("conversation.backend", "memory")
	v.SetDefault("conversation.ttl", "600s")
	v.SetDefault("conversation.sweep_interval", "60s")
	v.SetDefault("conversation.redis_prefix", "squad:conversation")

	v.SetDefault("pending_login.capacity", 1024)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)

	v.SetDefault("postgres.enabled", false)
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "squad")
	v.SetDefault("postgres.password", "squad_password")
	v.SetDefault("postgres.database", "squad")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "squad")
	v.SetDefault("kafka.async", true)

	v.SetDefault("telemetry.namespace", "squad")
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

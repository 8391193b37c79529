package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "BASECOUNTER"

type Config struct {
	AWS      AWSConfig
	DynamoDB DynamoDBConfig
	Server   ServerConfig
	NATS     NATSConfig
	Redis    RedisConfig
	Neynar   NeynarConfig
	Pinata   PinataConfig
	Signer   SignerConfig
	Auth     AuthConfig
	App      AppConfig
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

type DynamoDBConfig struct {
	TableName        string
	MaxRetries       int
	UseLocalEndpoint bool
}

type ServerConfig struct {
	HTTPPort               int
	GRPCPort               int
	Environment            string
	LogLevel               string
	LogFormat              string
	ShutdownTimeoutSeconds int
	AllowedOrigins         []string
	RequestsPerSecond      float64
	// TrustedProxies are the peers (IPs or CIDRs) allowed to set
	// X-Forwarded-For and X-Real-IP.
	TrustedProxies         []string
}

type NATSConfig struct {
	URL                  string
	MaxReconnect         int
	ReconnectWaitSeconds int
	TimeoutSeconds       int
}

type RedisConfig struct {
	Address      string
	Password     string
	DB           int
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
}

type NeynarConfig struct {
	BaseURL           string
	APIKeys           []string
	RequestsPerSecond float64
	TimeoutSeconds    int
}

type PinataCredential struct {
	APIKey    string
	SecretKey string
}

type PinataConfig struct {
	BaseURL        string
	Gateway        string
	Credentials    []PinataCredential
	MaxUploadBytes int64
	TimeoutSeconds int
}

type SignerConfig struct {
	PrivateKey string
}

type AuthConfig struct {
	APISecret      string
	AdminJWTSecret string
	AdminIssuer    string
}

type AccountAssociation struct {
	Header    string
	Payload   string
	Signature string
}

type AppConfig struct {
	URL                string
	Name               string
	ButtonTitle        string
	AccountAssociation AccountAssociation
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "" || c.Server.Environment == "development"
}

// Load reads config.yaml (optional), then BASECOUNTER_* env overrides, then
// the plain secret variables the deployment platform injects.
func Load(configPath string) (*Config, error) {
	// .env is a local convenience; a missing file is fine
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applySecrets(&cfg, NewEnvLoader(""))

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.endpoint", "http://localhost:8000")
	v.SetDefault("dynamodb.tablename", "base-counter")
	v.SetDefault("dynamodb.maxretries", 3)
	v.SetDefault("dynamodb.uselocalendpoint", false)

	v.SetDefault("server.httpport", 8080)
	v.SetDefault("server.grpcport", 9090)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.loglevel", "info")
	v.SetDefault("server.logformat", "json")
	v.SetDefault("server.shutdowntimeoutseconds", 15)
	v.SetDefault("server.allowedorigins", []string{"*"})
	v.SetDefault("server.requestspersecond", 20.0)
	v.SetDefault("server.trustedproxies", []string{})

	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.maxreconnect", 10)
	v.SetDefault("nats.reconnectwaitseconds", 2)
	v.SetDefault("nats.timeoutseconds", 5)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.maxretries", 3)
	v.SetDefault("redis.poolsize", 10)
	v.SetDefault("redis.minidleconns", 2)

	v.SetDefault("neynar.baseurl", "https://api.neynar.com/v2/farcaster")
	v.SetDefault("neynar.requestspersecond", 5.0)
	v.SetDefault("neynar.timeoutseconds", 10)

	v.SetDefault("pinata.baseurl", "https://api.pinata.cloud")
	v.SetDefault("pinata.gateway", "gateway.pinata.cloud")
	v.SetDefault("pinata.maxuploadbytes", 10<<20)
	v.SetDefault("pinata.timeoutseconds", 30)

	v.SetDefault("auth.adminissuer", "base-counter")

	v.SetDefault("app.url", "http://localhost:3000")
	v.SetDefault("app.name", "Base Counter")
	v.SetDefault("app.buttontitle", "Pull the Lever 🎰")
}

// applySecrets fills credentials from the unprefixed variables used by the
// hosting platform. Values already set through config keep precedence.
func applySecrets(cfg *Config, env *EnvLoader) {
	if cfg.Signer.PrivateKey == "" {
		cfg.Signer.PrivateKey = env.GetString("SIGNER_PRIVATE_KEY", "")
	}
	if cfg.Auth.APISecret == "" {
		cfg.Auth.APISecret = env.GetString("API_SECRET_KEY", env.GetString("NEXT_PUBLIC_API_SECRET_KEY", ""))
	}
	if cfg.Auth.AdminJWTSecret == "" {
		cfg.Auth.AdminJWTSecret = env.GetString("ADMIN_JWT_SECRET", "")
	}
	if len(cfg.Neynar.APIKeys) == 0 {
		cfg.Neynar.APIKeys = env.GetSeries("NEYNAR_API_KEY", "NEYNAR_API_KEY%d", 5)
	}
	if len(cfg.Pinata.Credentials) == 0 {
		cfg.Pinata.Credentials = pinataCredentials(env)
	}
	if gw := env.GetString("PINATA_GATEWAY", ""); gw != "" {
		cfg.Pinata.Gateway = gw
	}
	if url := env.GetString("APP_URL", env.GetString("NEXT_PUBLIC_URL", "")); url != "" {
		cfg.App.URL = strings.TrimRight(url, "/")
	}
	if h := env.GetString("FARCASTER_HEADER", ""); h != "" {
		cfg.App.AccountAssociation.Header = h
		cfg.App.AccountAssociation.Payload = env.GetString("FARCASTER_PAYLOAD", "")
		cfg.App.AccountAssociation.Signature = env.GetString("FARCASTER_SIGNATURE", "")
	}
}

// Pairs are PINATA_API_KEY/PINATA_SECRET_API_KEY, then _2 .. _5.
// Half-configured pairs are skipped.
func pinataCredentials(env *EnvLoader) []PinataCredential {
	creds := make([]PinataCredential, 0, 5)
	for i := 1; i <= 5; i++ {
		keyName, secretName := "PINATA_API_KEY", "PINATA_SECRET_API_KEY"
		if i > 1 {
			keyName = fmt.Sprintf("%s_%d", keyName, i)
			secretName = fmt.Sprintf("%s_%d", secretName, i)
		}

		apiKey := env.GetString(keyName, "")
		secret := env.GetString(secretName, "")
		if apiKey != "" && secret != "" {
			creds = append(creds, PinataCredential{APIKey: apiKey, SecretKey: secret})
		}
	}
	return creds
}

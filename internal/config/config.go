package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type ReferralConfig struct {
	Env          string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer   `yaml:"http_server"`
	ReferralDB   `yaml:"referral_db"`
	LogConfig    `yaml:"log_config"`
	KafkaService `yaml:"kafka-service"`
	SMTP         `yaml:"smtp"`
	Auth         `yaml:"auth"`
	Reminders    `yaml:"reminders"`
	Lifecycle    `yaml:"lifecycle"`
}

type HTTPServer struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"PORT" env-default:"3000"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

func (s HTTPServer) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type ReferralDB struct {
	// Driver is postgres, mysql or memory
	Driver         string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Dsn            string `yaml:"dsn" env:"DB_DSN"`
	MigrationsPath string `yaml:"migrations_path" env:"DB_MIGRATIONS_PATH" env-default:"migrations"`
	SkipMigrations bool   `yaml:"skip_migrations" env:"DB_SKIP_MIGRATIONS"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"text"`
	LogOutput string `yaml:"log_output" env:"LOG_OUTPUT" env-default:"stdout"`
}

type KafkaService struct {
	Enabled bool   `yaml:"enabled" env:"KAFKA_ENABLED"`
	Host    string `yaml:"host" env:"KAFKA_HOST" env-default:"localhost"`
	Port    string `yaml:"port" env:"KAFKA_PORT" env-default:"9092"`
	Topic   string `yaml:"topic" env:"KAFKA_TOPIC" env-default:"referral-events"`
}

func (k KafkaService) Brokers() []string {
	return []string{fmt.Sprintf("%s:%s", k.Host, k.Port)}
}

type SMTP struct {
	Enabled    bool   `yaml:"enabled" env:"SMTP_ENABLED"`
	Host       string `yaml:"host" env:"SMTP_HOST"`
	Port       int    `yaml:"port" env:"SMTP_PORT" env-default:"465"`
	User       string `yaml:"user" env:"SMTP_USER"`
	Password   string `yaml:"password" env:"SMTP_PASS"`
	Sender     string `yaml:"sender" env:"SMTP_SENDER"`
	AdminEmail string `yaml:"admin_email" env:"ADMIN_EMAIL" env-default:"admin@accountantsfactory.com"`
	// PublicURL is the frontend origin used in verification links
	PublicURL string `yaml:"public_url" env:"PUBLIC_URL" env-default:"http://localhost:5173"`
}

type Auth struct {
	GoogleClientID string        `yaml:"google_client_id" env:"GOOGLE_CLIENT_ID"`
	JWTSecret      string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL       time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`
	AdminEmails    []string      `yaml:"admin_emails" env:"ADMIN_EMAILS" env-separator:","`
	EnforceRoles   bool          `yaml:"enforce_roles" env:"AUTH_ENFORCE_ROLES"`
	CORSOrigins    []string      `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:","`
}

type Reminders struct {
	PollInterval time.Duration `yaml:"poll_interval" env:"REMINDER_POLL_INTERVAL" env-default:"15s"`
	// ServerSweep claims due reminders on the server even when no admin is polling
	ServerSweep bool `yaml:"server_sweep" env:"REMINDER_SERVER_SWEEP"`
}

type Lifecycle struct {
	RequirePaidConfirmation bool `yaml:"require_paid_confirmation" env:"REQUIRE_PAID_CONFIRMATION"`
	// BlockRevertPaid rejects transitions out of Paid; by default they are allowed and logged
	BlockRevertPaid bool `yaml:"block_revert_paid" env:"BLOCK_REVERT_PAID"`
}

// Load reads the YAML file at path and applies environment overrides.
func Load(path string) (*ReferralConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	var cfg ReferralConfig
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnv builds the config from environment variables only.
func LoadEnv() (*ReferralConfig, error) {
	var cfg ReferralConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *ReferralConfig) Validate() error {
	switch c.ReferralDB.Driver {
	case "postgres", "mysql":
		if c.ReferralDB.Dsn == "" {
			return fmt.Errorf("referral_db.dsn is required for driver %q", c.ReferralDB.Driver)
		}
	case "memory":
	default:
		return fmt.Errorf("unknown referral_db.driver %q", c.ReferralDB.Driver)
	}
	if c.Reminders.PollInterval <= 0 {
		return fmt.Errorf("reminders.poll_interval must be positive")
	}
	if c.Auth.EnforceRoles && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required when auth.enforce_roles is set")
	}
	return nil
}

func MustLoad() *ReferralConfig {

	// Processing env config variable and file
	configPath := os.Getenv("REFERRAL_CONFIG_PATH")

	var (
		cfg *ReferralConfig
		err error
	)
	if configPath == "" {
		log.Println("REFERRAL_CONFIG_PATH was not found, reading config from env")
		cfg, err = LoadEnv()
	} else {
		cfg, err = Load(configPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v\n", err)
	}

	return cfg
}

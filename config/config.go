package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Stripe   StripeConfig   `yaml:"stripe"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Geo      GeoConfig      `yaml:"geo"`
	Rates    RatesConfig    `yaml:"rates"`
	Session  SessionConfig  `yaml:"session"`
	Pricing  PricingConfig  `yaml:"pricing"`
	Jobs     JobsConfig     `yaml:"jobs"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	MembershipTopic    string   `yaml:"membership_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
	SuccessURL    string `yaml:"success_url"`
	CancelURL     string `yaml:"cancel_url"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type GeoConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type RatesConfig struct {
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	CacheTTL int    `yaml:"cache_ttl_seconds"`
}

type SessionConfig struct {
	MaxAgeHours int `yaml:"max_age_hours"`
}

// PricingConfig supplies the loading policy. Amounts are minor currency
// units; the base price table itself is fixed in the pricing package.
type PricingConfig struct {
	Currency              string           `yaml:"currency"`
	MedicalLoadingPerHead int64            `yaml:"medical_loading_per_head"`
	CoverageLoading       map[string]int64 `yaml:"coverage_loading"`
	HighRiskSurcharge     int64            `yaml:"high_risk_surcharge"`
}

type JobsConfig struct {
	Token                string `yaml:"token"`
	FollowupStaleMinutes int    `yaml:"followup_stale_minutes"`
	FollowupSweepMinutes int    `yaml:"followup_sweep_minutes"`
	RatesRefreshMinutes  int    `yaml:"rates_refresh_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	return &cfg, nil
}

// applyEnv lets secrets come from the environment (.env in development)
// instead of the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("STRIPE_SECRET_KEY"); v != "" {
		c.Stripe.SecretKey = v
	}
	if v := os.Getenv("STRIPE_WEBHOOK_SECRET"); v != "" {
		c.Stripe.WebhookSecret = v
	}
	if v := os.Getenv("SMTP_PASS"); v != "" {
		c.SMTP.Password = v
	}
	if v := os.Getenv("JOBS_TOKEN"); v != "" {
		c.Jobs.Token = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/RaikyD/studio-booking-service/internal/domain"
	"github.com/caarlos0/env/v6"
)

type Config struct {
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"8080"`
	DBString        string        `env:"DB_STRING"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	CallbackTimeout time.Duration `env:"CALLBACK_TIMEOUT" envDefault:"15s"`

	Flow     FlowConfig
	Email    EmailConfig
	Pages    PagesConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Calendar CalendarConfig
}

type FlowConfig struct {
	APIURL          string        `env:"FLOW_API_URL,required,notEmpty"`
	APIKey          string        `env:"FLOW_API_KEY,required,notEmpty"`
	SecretKey       string        `env:"FLOW_SECRET_KEY,required,notEmpty"`
	URLConfirmation string        `env:"FLOW_URL_CONFIRMATION,required,notEmpty"`
	URLReturn       string        `env:"FLOW_URL_RETURN,required,notEmpty"`
	Currency        string        `env:"FLOW_CURRENCY" envDefault:"CLP"`
	PaymentMethod   int           `env:"FLOW_PAYMENT_METHOD" envDefault:"9"`
	OrderPrefix     string        `env:"ORDER_PREFIX" envDefault:"MAKA"`
	SubjectPrefix   string        `env:"FLOW_SUBJECT_PREFIX" envDefault:"Maka Tatuajes"`
	Timeout         time.Duration `env:"FLOW_TIMEOUT" envDefault:"10s"`
}

type EmailConfig struct {
	APIURL        string        `env:"EMAIL_API_URL" envDefault:"https://api.resend.com"`
	APIKey        string        `env:"RESEND_API_KEY,required,notEmpty"`
	From          string        `env:"EMAIL_FROM" envDefault:"Makatatuajes <onboarding@resend.dev>"`
	OperatorEmail string        `env:"OPERATOR_EMAIL" envDefault:"makatatuajes@outlook.com"`
	Timeout       time.Duration `env:"EMAIL_TIMEOUT" envDefault:"10s"`
}

// PagesConfig holds where the return handler sends the customer.
type PagesConfig struct {
	Success string `env:"PAGE_SUCCESS" envDefault:"/success.html"`
	Pending string `env:"PAGE_PENDING" envDefault:"/pending.html"`
	Failure string `env:"PAGE_FAILURE" envDefault:"/failure.html"`
}

type KafkaConfig struct {
	Brokers string `env:"KAFKA_BROKERS"`
	Topic   string `env:"KAFKA_TOPIC" envDefault:"booking.orders"`
	GroupID string `env:"KAFKA_GROUP_ID" envDefault:"booking-notifications"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	LockTTL  time.Duration `env:"REDIS_LOCK_TTL" envDefault:"30s"`
}

type CalendarConfig struct {
	TenantID     string        `env:"OUTLOOK_TENANT_ID"`
	ClientID     string        `env:"OUTLOOK_CLIENT_ID"`
	ClientSecret string        `env:"OUTLOOK_CLIENT_SECRET"`
	CalendarID   string        `env:"CALENDAR_ID"`
	GraphURL     string        `env:"GRAPH_API_URL" envDefault:"https://graph.microsoft.com/v1.0"`
	LoginURL     string        `env:"GRAPH_LOGIN_URL" envDefault:"https://login.microsoftonline.com"`
	TimeZone     string        `env:"CALENDAR_TIMEZONE" envDefault:"America/Santiago"`
	Location     string        `env:"CALENDAR_LOCATION" envDefault:"Estudio de Tatuajes Maka"`
	Timeout      time.Duration `env:"CALENDAR_TIMEOUT" envDefault:"10s"`
}

// Enabled reports whether every Graph credential is present.
func (c CalendarConfig) Enabled() bool {
	return c.TenantID != "" && c.ClientID != "" && c.ClientSecret != "" && c.CalendarID != ""
}

func (c KafkaConfig) Enabled() bool {
	return strings.TrimSpace(c.Brokers) != ""
}

func (c KafkaConfig) BrokerList() []string {
	var out []string
	for _, b := range strings.Split(c.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// LoadConfig reads the environment. Missing secrets fail here, never at request time.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for name, raw := range map[string]string{
		"FLOW_API_URL":          c.Flow.APIURL,
		"FLOW_URL_CONFIRMATION": c.Flow.URLConfirmation,
		"FLOW_URL_RETURN":       c.Flow.URLReturn,
		"EMAIL_API_URL":         c.Email.APIURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %s must be an absolute URL", domain.ErrConfiguration, name)
		}
	}
	if c.Flow.Timeout <= 0 || c.Email.Timeout <= 0 || c.CallbackTimeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", domain.ErrConfiguration)
	}
	return nil
}

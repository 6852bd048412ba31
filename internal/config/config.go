package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultFeeBps        = 200  // 2%
	defaultFeeCapBps     = 1000 // 10%
	defaultEventsChannel = "carbon:ledger:events"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	LogLevel            string
	SessionSecret       string
	DatabaseURL         string
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
	SendinblueAPIKey    string // SENDINBLUE_API_KEY for welcome/retirement emails (Brevo)
	MailFrom            string
	OwnerAddress        string // platform owner seeded into PlatformState on first start
	PlatformFeeBps      int
	PlatformFeeCapBps   int
	EventsChannel       string // Redis pub/sub channel for ledger events
	AutoMigrate         bool
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("PLATFORM_FEE_BPS", defaultFeeBps)
	viper.SetDefault("PLATFORM_FEE_CAP_BPS", defaultFeeCapBps)
	viper.SetDefault("LEDGER_EVENTS_CHANNEL", defaultEventsChannel)

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if env == "production" && viper.GetString("SESSION_SECRET") == "" {
		return nil, errors.New("SESSION_SECRET is required in production")
	}

	return &Config{
		Env:                 env,
		Port:                viper.GetString("PORT"),
		LogLevel:            viper.GetString("LOG_LEVEL"),
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		SendinblueAPIKey:    viper.GetString("SENDINBLUE_API_KEY"),
		MailFrom:            viper.GetString("MAIL_FROM"),
		OwnerAddress:        strings.ToLower(strings.TrimSpace(viper.GetString("OWNER_ADDRESS"))),
		PlatformFeeBps:      viper.GetInt("PLATFORM_FEE_BPS"),
		PlatformFeeCapBps:   viper.GetInt("PLATFORM_FEE_CAP_BPS"),
		EventsChannel:       viper.GetString("LEDGER_EVENTS_CHANNEL"),
		AutoMigrate:         viper.GetBool("AUTO_MIGRATE"),
	}, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

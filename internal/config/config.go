package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App           App           `mapstructure:",squash"`
	Server        Server        `mapstructure:",squash"`
	Database      Database      `mapstructure:",squash"`
	Amazon        Amazon        `mapstructure:",squash"`
	Cache         Cache         `mapstructure:",squash"`
	RateLimit     RateLimit     `mapstructure:",squash"`
	Retry         Retry         `mapstructure:",squash"`
	OptimizerSync OptimizerSync `mapstructure:",squash"`
	Auth          Auth          `mapstructure:",squash"`
	Rules         Rules         `mapstructure:",squash"`
}

type App struct {
	LogLevel  string `mapstructure:"log_level"`
	RulesFile string `mapstructure:"rules_file"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
	Migrate  bool   `mapstructure:"database_migrate"`
}

// Enabled informa se a persistência da auditoria em Postgres foi configurada.
func (d Database) Enabled() bool {
	return d.URL != ""
}

type Amazon struct {
	ClientID     string   `mapstructure:"amazon_client_id"`
	ClientSecret string   `mapstructure:"amazon_client_secret"`
	RefreshToken string   `mapstructure:"amazon_refresh_token"`
	TokenURL     string   `mapstructure:"amazon_token_url"`
	Region       string   `mapstructure:"amazon_api_scope"`
	BaseURL      string   `mapstructure:"amazon_base_url"`
	ProfileIDs   []string `mapstructure:"amazon_profile_ids"`
	UserAgent    string   `mapstructure:"amazon_user_agent"`
	// Tempo limite de cada chamada HTTP individual.
	RequestTimeoutSeconds int `mapstructure:"amazon_request_timeout_seconds"`
	// Intervalo e limite de polling de relatórios assíncronos.
	ReportPollSeconds        int `mapstructure:"amazon_report_poll_seconds"`
	ReportPollTimeoutSeconds int `mapstructure:"amazon_report_poll_timeout_seconds"`
	PageSize                 int `mapstructure:"amazon_page_size"`
}

type Cache struct {
	Path       string `mapstructure:"cache_path"`
	TTLSeconds int    `mapstructure:"cache_ttl_seconds"`
	Enabled    bool   `mapstructure:"cache_enabled"`
}

func (c Cache) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

type RateLimit struct {
	Capacity       int `mapstructure:"rate_limit_capacity"`
	RefillSeconds  int `mapstructure:"rate_limit_refill_seconds"`
	MaxWaitSeconds int `mapstructure:"rate_limit_max_wait_seconds"`
}

type Retry struct {
	MaxAttempts         int  `mapstructure:"max_retry_attempts"`
	BaseDelaySeconds    int  `mapstructure:"retry_base_delay_seconds"`
	MaxDelaySeconds     int  `mapstructure:"retry_max_delay_seconds"`
	SingleItemRetryOnce bool `mapstructure:"retry_single_item_fallback"`
}

type OptimizerSync struct {
	CronSchedule      string `mapstructure:"optimizer_sync_cron"`
	Enabled           bool   `mapstructure:"optimizer_sync_enabled"`
	RunTimeoutSeconds int    `mapstructure:"optimizer_run_timeout_seconds"`
	MaxConcurrentJobs int    `mapstructure:"optimizer_max_concurrent_jobs"`
}

func (o OptimizerSync) RunTimeout() time.Duration {
	return time.Duration(o.RunTimeoutSeconds) * time.Second
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

var regionEndpoints = map[string]string{
	"NA": "https://advertising-api.amazon.com",
	"EU": "https://advertising-api-eu.amazon.com",
	"FE": "https://advertising-api-fe.amazon.com",
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_MIGRATE", true)

	viper.SetDefault("AMAZON_CLIENT_ID", "")
	viper.SetDefault("AMAZON_CLIENT_SECRET", "")
	viper.SetDefault("AMAZON_REFRESH_TOKEN", "")
	viper.SetDefault("AMAZON_TOKEN_URL", "https://api.amazon.com/auth/o2/token")
	viper.SetDefault("AMAZON_API_SCOPE", "NA")
	viper.SetDefault("AMAZON_BASE_URL", "")
	viper.SetDefault("AMAZON_PROFILE_IDS", "")
	viper.SetDefault("AMAZON_USER_AGENT", "PPC-Optimizer/2.0")
	viper.SetDefault("AMAZON_REQUEST_TIMEOUT_SECONDS", 30)
	viper.SetDefault("AMAZON_REPORT_POLL_SECONDS", 5)
	viper.SetDefault("AMAZON_REPORT_POLL_TIMEOUT_SECONDS", 180)
	viper.SetDefault("AMAZON_PAGE_SIZE", 1000)

	viper.SetDefault("CACHE_PATH", "ppc-cache.db")
	viper.SetDefault("CACHE_TTL_SECONDS", 4*60*60) // 4 horas
	viper.SetDefault("CACHE_ENABLED", true)

	viper.SetDefault("RATE_LIMIT_CAPACITY", 10)
	viper.SetDefault("RATE_LIMIT_REFILL_SECONDS", 1)
	viper.SetDefault("RATE_LIMIT_MAX_WAIT_SECONDS", 60)

	viper.SetDefault("MAX_RETRY_ATTEMPTS", 5)
	viper.SetDefault("RETRY_BASE_DELAY_SECONDS", 5)
	viper.SetDefault("RETRY_MAX_DELAY_SECONDS", 120)
	viper.SetDefault("RETRY_SINGLE_ITEM_FALLBACK", true)

	viper.SetDefault("OPTIMIZER_SYNC_CRON", "0 */2 * * *") // A cada 2 horas
	viper.SetDefault("OPTIMIZER_SYNC_ENABLED", false)
	viper.SetDefault("OPTIMIZER_RUN_TIMEOUT_SECONDS", 20*60)
	viper.SetDefault("OPTIMIZER_MAX_CONCURRENT_JOBS", 3)

	viper.SetDefault("AUTH_SECRET", "")

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("RULES_FILE", "")

	SetRuleDefaults()
}

// NewConfig carrega .env, variáveis de ambiente e, se configurado, o arquivo de regras.
func NewConfig() (*Config, error) {
	loadEnvFile()

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Debug("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env): ", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errConfig, err)
	}

	if config.App.RulesFile != "" {
		rules, err := LoadRules(config.App.RulesFile, config.Rules)
		if err != nil {
			return nil, err
		}
		config.Rules = rules
	}

	config.Amazon.ProfileIDs = compact(config.Amazon.ProfileIDs)
	config.Server.AllowedOrigins = compact(config.Server.AllowedOrigins)
	config.Amazon.Region = strings.ToUpper(config.Amazon.Region)
	if config.Amazon.BaseURL == "" {
		endpoint, ok := regionEndpoints[config.Amazon.Region]
		if !ok {
			logrus.WithField("scope", config.Amazon.Region).Warn("config: região desconhecida, usando NA")
			endpoint = regionEndpoints["NA"]
		}
		config.Amazon.BaseURL = endpoint
	}

	if config.Database.URL != "" {
		config.Database.DSN = fmt.Sprintf(
			"%s://%s:%s@%s",
			config.Database.Driver,
			config.Database.User,
			config.Database.Password,
			config.Database.URL,
		)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate verifica as seções usadas pelo núcleo. Erros aqui são fatais.
func (c *Config) Validate() error {
	if c.RateLimit.Capacity < 1 {
		return newConfigError("rate_limit_capacity", "deve ser >= 1, recebido %d", c.RateLimit.Capacity)
	}
	if c.RateLimit.RefillSeconds < 1 {
		return newConfigError("rate_limit_refill_seconds", "deve ser >= 1, recebido %d", c.RateLimit.RefillSeconds)
	}
	if c.Retry.MaxAttempts < 1 {
		return newConfigError("max_retry_attempts", "deve ser >= 1, recebido %d", c.Retry.MaxAttempts)
	}
	if c.Retry.BaseDelaySeconds < 0 || c.Retry.MaxDelaySeconds < c.Retry.BaseDelaySeconds {
		return newConfigError("retry_max_delay_seconds", "teto (%d) menor que o atraso base (%d)", c.Retry.MaxDelaySeconds, c.Retry.BaseDelaySeconds)
	}
	if c.Cache.TTLSeconds < 0 {
		return newConfigError("cache_ttl_seconds", "não pode ser negativo")
	}

	return c.Rules.Validate()
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de: ", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado, usando apenas variáveis de ambiente")
}

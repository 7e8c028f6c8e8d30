package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "STOREFRONT_CONFIG_FILE"
	envPrefix         = "STOREFRONT"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type circuitBreaker struct {
	MaxFailures uint32        `mapstructure:"max_failures"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
}

type api struct {
	BaseURL        string         `mapstructure:"base_url"`
	Timeout        time.Duration  `mapstructure:"timeout"`
	RefreshTimeout time.Duration  `mapstructure:"refresh_timeout"`
	Breaker        circuitBreaker `mapstructure:"breaker"`
}

type state struct {
	Driver    string `mapstructure:"driver"`
	Profile   string `mapstructure:"profile"`
	FilePath  string `mapstructure:"file_path"`
	RedisAddr string `mapstructure:"redis_addr"`
	SQLDSN    string `mapstructure:"sql_dsn"`
}

type topics struct {
	ClientEvents string `mapstructure:"client_events"`
}

type brokerTLS struct {
	CAFile   string `mapstructure:"ca_file"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// Enabled reports whether any TLS file is set.
func (t brokerTLS) Enabled() bool {
	return t.CAFile != "" || t.CertFile != "" || t.KeyFile != ""
}

type broker struct {
	SeedBrokers        []string      `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string      `mapstructure:"schema_registry_urls"`
	Topics             topics        `mapstructure:"topics"`
	TLS                brokerTLS     `mapstructure:"tls"`
	DeliveryTimeout    time.Duration `mapstructure:"delivery_timeout"`
}

type Config struct {
	LogLevel           slog.Level    `mapstructure:"log_level"`
	HTTPServerAddr     string        `mapstructure:"http_server_addr"`
	HTTPHandlerTimeout time.Duration `mapstructure:"http_handler_timeout"`
	API                api           `mapstructure:"api"`
	State              state         `mapstructure:"state"`
	Broker             broker        `mapstructure:"broker"`
}

// EventsEnabled reports whether client events are published.
func (c Config) EventsEnabled() bool {
	return len(c.Broker.SeedBrokers) != 0
}

func Load() Config {
	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

// LoadFile reads the config file at path, if any, on top of the defaults.
// STOREFRONT_* environment variables override both, e.g. STOREFRONT_API_BASE_URL.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", "127.0.0.1:8080")
	v.SetDefault("http_handler_timeout", 30*time.Second)

	v.SetDefault("api.base_url", "http://127.0.0.1:8000/api")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.refresh_timeout", 10*time.Second)
	v.SetDefault("api.breaker.max_failures", 5)
	v.SetDefault("api.breaker.open_timeout", 30*time.Second)

	v.SetDefault("state.driver", DriverFile)
	v.SetDefault("state.profile", "default")
	v.SetDefault("state.file_path", "storefront-state.json")
	v.SetDefault("state.redis_addr", "")
	v.SetDefault("state.sql_dsn", "")

	v.SetDefault("broker.seed_brokers", []string{})
	v.SetDefault("broker.schema_registry_urls", []string{})
	v.SetDefault("broker.topics.client_events", "storefront-client-events")
	v.SetDefault("broker.tls.ca_file", "")
	v.SetDefault("broker.tls.cert_file", "")
	v.SetDefault("broker.tls.key_file", "")
	v.SetDefault("broker.delivery_timeout", 2*time.Second)
}

func (c Config) validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url: required"))
	}
	if c.API.Timeout <= 0 || c.API.RefreshTimeout <= 0 {
		errs = append(errs, errors.New("api timeouts: must be positive"))
	}
	if c.API.Breaker.MaxFailures == 0 {
		errs = append(errs, errors.New("api.breaker.max_failures: must be positive"))
	}
	if c.HTTPHandlerTimeout <= 0 {
		errs = append(errs, errors.New("http_handler_timeout: must be positive"))
	}

	drivers := []string{DriverMemory, DriverFile, DriverRedis, DriverPostgres}
	switch {
	case !slices.Contains(drivers, c.State.Driver):
		errs = append(errs, fmt.Errorf("state.driver: %q is not one of %v", c.State.Driver, drivers))
	case c.State.Driver == DriverFile && c.State.FilePath == "":
		errs = append(errs, errors.New("state.file_path: required by the file driver"))
	case c.State.Driver == DriverRedis && c.State.RedisAddr == "":
		errs = append(errs, errors.New("state.redis_addr: required by the redis driver"))
	case c.State.Driver == DriverPostgres && c.State.SQLDSN == "":
		errs = append(errs, errors.New("state.sql_dsn: required by the postgres driver"))
	}
	if c.State.Profile == "" {
		errs = append(errs, errors.New("state.profile: required"))
	}

	if c.EventsEnabled() {
		if len(c.Broker.SchemaRegistryURLs) == 0 {
			errs = append(errs, errors.New("broker.schema_registry_urls: required with seed brokers"))
		}
		if c.Broker.Topics.ClientEvents == "" {
			errs = append(errs, errors.New("broker.topics.client_events: required with seed brokers"))
		}
		if c.Broker.DeliveryTimeout <= 0 {
			errs = append(errs, errors.New("broker.delivery_timeout: must be positive"))
		}
		tls := c.Broker.TLS
		if tls.Enabled() && (tls.CAFile == "" || tls.CertFile == "" || tls.KeyFile == "") {
			errs = append(errs, errors.New("broker.tls: ca_file, cert_file and key_file go together"))
		}
	}

	return errors.Join(errs...)
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	HTTPHandlerTimeout=%s

	API:
	BaseURL=%q
	Timeout=%s
	RefreshTimeout=%s
	Breaker:
		MaxFailures=%d
		OpenTimeout=%s

	State:
	Driver=%q
	Profile=%q
	FilePath=%q
	RedisAddr=%q
	SQLDSN=%q

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	DeliveryTimeout=%s
	Topics:
		ClientEvents=%q
	TLS:
		CAFile=%q
		CertFile=%q
		KeyFile=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.HTTPHandlerTimeout,
		c.API.BaseURL,
		c.API.Timeout,
		c.API.RefreshTimeout,
		c.API.Breaker.MaxFailures,
		c.API.Breaker.OpenTimeout,
		c.State.Driver,
		c.State.Profile,
		c.State.FilePath,
		c.State.RedisAddr,
		redactDSN(c.State.SQLDSN),
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.DeliveryTimeout,
		c.Broker.Topics.ClientEvents,
		c.Broker.TLS.CAFile,
		c.Broker.TLS.CertFile,
		c.Broker.TLS.KeyFile,
	)
}

// redactDSN hides the password of a postgres url.
func redactDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	userinfo, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}
	user, _, hasPassword := strings.Cut(userinfo, ":")
	if !hasPassword {
		return dsn
	}
	return scheme + "://" + user + ":xxxxx@" + host
}

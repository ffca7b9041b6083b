package thermserver_config

import (
	"strings"
	"time"

	email_notifier_config "github.com/drtz/PiThermServer/internal/config/email-notifier"
	"github.com/drtz/PiThermServer/internal/obs"
	pg "github.com/drtz/PiThermServer/internal/repository/postgres"
	redisrepo "github.com/drtz/PiThermServer/internal/repository/redis"
	"github.com/drtz/PiThermServer/internal/sensor"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	TransportSMTP  = "smtp"
	TransportKafka = "kafka"
	TransportLog   = "log"

	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type Server struct {
	HTTPPort        int           `mapstructure:"http_port"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
	DefaultNumObs   int           `mapstructure:"default_num_obs"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type Storage struct {
	Driver string `mapstructure:"driver"`
}

// Range bounds are pointers so that an unset bound can be told apart from zero.
type Range struct {
	Min *float64 `mapstructure:"min"`
	Max *float64 `mapstructure:"max"`
}

type Sampler struct {
	IntervalMS int `mapstructure:"interval_ms"`
}

func (s Sampler) Interval() time.Duration { return time.Duration(s.IntervalMS) * time.Millisecond }

type Notification struct {
	ThrottleMinutes float64       `mapstructure:"throttle_minutes"`
	Transport       string        `mapstructure:"transport"`
	From            string        `mapstructure:"from"`
	To              string        `mapstructure:"to"`
	QueueSize       int           `mapstructure:"queue_size"`
	SendTimeout     time.Duration `mapstructure:"send_timeout"`
}

// Cooldown converts the throttle to a duration. Fractional minutes are allowed.
func (n Notification) Cooldown() time.Duration {
	return time.Duration(n.ThrottleMinutes * float64(time.Minute))
}

// Recipients splits the comma separated To list, dropping blanks.
func (n Notification) Recipients() []string {
	var out []string
	for _, s := range strings.Split(n.To, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type Kafka struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Throttle struct {
	Store string `mapstructure:"store"`
}

type Config struct {
	App          App                        `mapstructure:"app"`
	Log          Log                        `mapstructure:"log"`
	OTEL         OTEL                       `mapstructure:"otel"`
	Server       Server                     `mapstructure:"server"`
	DB           pg.Config                  `mapstructure:"db"`
	Storage      Storage                    `mapstructure:"storage"`
	Sensor       sensor.Config              `mapstructure:"sensor"`
	Range        Range                      `mapstructure:"range"`
	Sampler      Sampler                    `mapstructure:"sampler"`
	Notification Notification               `mapstructure:"notification"`
	SMTP         email_notifier_config.SMTP `mapstructure:"smtp"`
	Kafka        Kafka                      `mapstructure:"kafka"`
	Redis        redisrepo.Config           `mapstructure:"redis"`
	Throttle     Throttle                   `mapstructure:"throttle"`
}

func (c *Config) LoggerConfig() obs.LogConfig {
	return obs.LogConfig{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		App:    c.App.Name,
		Env:    c.App.Env,
		Ver:    c.App.Version,
	}
}

func (c *Config) TracingConfig() *obs.OTELConfig {
	oc := c.OTEL.AsOTELConfig()
	oc.Version = c.App.Version
	oc.Env = c.App.Env
	return oc
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Push transports understood by the live channel dialer.
const (
	TransportSocketIO = "socketio"
	TransportMQTT     = "mqtt"
)

const envPrefix = "MOTORDASH"

// Config is the fully resolved runtime configuration.
type Config struct {
	Port     string
	LogLevel string
	LogFmt   string
	DBPath   string

	Upstream Upstream
	Push     Push
	CORS     CORS
	Server   Server
}

// Upstream describes the motor-monitoring REST API this dashboard reads from.
type Upstream struct {
	BaseURL string
	Timeout time.Duration
}

// Push describes the live reading channel.
type Push struct {
	Transport string
	URL       string // socket.io endpoint; derived from Upstream.BaseURL when empty
	MQTT      MQTT
}

type MQTT struct {
	Broker   string
	Topic    string
	Username string
	Password string
}

type CORS struct {
	AllowedOrigins []string
}

type Server struct {
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("db.path", "dashboard.db")
	v.SetDefault("upstream.base_url", "http://127.0.0.1:5000")
	v.SetDefault("upstream.timeout", "10s")
	v.SetDefault("push.transport", TransportSocketIO)
	v.SetDefault("push.url", "")
	v.SetDefault("push.mqtt.broker", "tcp://127.0.0.1:1883")
	v.SetDefault("push.mqtt.topic", "motors/+/readings")
	v.SetDefault("cors.allowed_origins", []string{})
	v.SetDefault("server.read_header_timeout", "10s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
}

// Load reads .env (if present), then configs/config.yml (or the file given),
// then MOTORDASH_* environment overrides.
func Load(file string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath("configs")
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || file != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:     v.GetString("port"),
		LogLevel: v.GetString("log.level"),
		LogFmt:   v.GetString("log.format"),
		DBPath:   v.GetString("db.path"),
		Upstream: Upstream{
			BaseURL: strings.TrimRight(v.GetString("upstream.base_url"), "/"),
			Timeout: v.GetDuration("upstream.timeout"),
		},
		Push: Push{
			Transport: strings.ToLower(strings.TrimSpace(v.GetString("push.transport"))),
			URL:       v.GetString("push.url"),
			MQTT: MQTT{
				Broker:   v.GetString("push.mqtt.broker"),
				Topic:    v.GetString("push.mqtt.topic"),
				Username: v.GetString("push.mqtt.username"),
				Password: v.GetString("push.mqtt.password"),
			},
		},
		CORS: CORS{AllowedOrigins: splitList(v.GetStringSlice("cors.allowed_origins"))},
		Server: Server{
			ReadHeaderTimeout: v.GetDuration("server.read_header_timeout"),
			IdleTimeout:       v.GetDuration("server.idle_timeout"),
			ShutdownTimeout:   v.GetDuration("server.shutdown_timeout"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Push.Transport == TransportSocketIO && cfg.Push.URL == "" {
		cfg.Push.URL = SocketIOURL(cfg.Upstream.BaseURL)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("upstream.base_url %q is not an absolute URL", c.Upstream.BaseURL)
	}
	switch c.Push.Transport {
	case TransportSocketIO:
	case TransportMQTT:
		if c.Push.MQTT.Broker == "" || c.Push.MQTT.Topic == "" {
			return errors.New("push.mqtt.broker and push.mqtt.topic are required for the mqtt transport")
		}
	default:
		return fmt.Errorf("push.transport %q: want %q or %q", c.Push.Transport, TransportSocketIO, TransportMQTT)
	}
	if c.Upstream.Timeout <= 0 {
		return errors.New("upstream.timeout must be positive")
	}
	return nil
}

// SocketIOURL derives the websocket endpoint of a Socket.IO server from its
// HTTP base URL.
func SocketIOURL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/socket.io/"
	u.RawQuery = "EIO=4&transport=websocket"
	return u.String()
}

// splitList accepts both YAML lists and comma-separated env values.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

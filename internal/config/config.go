package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Wonki4/k8s-report-dashboard/help"
	"github.com/Wonki4/k8s-report-dashboard/internal/infrastructure/k8s"
)

const envPrefix = "GPUDASH"

const (
	SourceK8s    = "k8s"
	SourceMock   = "mock"
	SourceRemote = "remote"
)

type Config struct {
	Source string       `mapstructure:"source"`
	Server ServerConfig `mapstructure:"server"`
	CORS   CORSConfig   `mapstructure:"cors"`
	Kube   KubeConfig   `mapstructure:"kube"`
	GPU    GPUConfig    `mapstructure:"gpu"`
	Poll   PollConfig   `mapstructure:"poll"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Remote RemoteConfig `mapstructure:"remote"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

type KubeConfig struct {
	Config  string  `mapstructure:"config"`
	Context string  `mapstructure:"context"`
	QPS     float32 `mapstructure:"qps"`
	Burst   int     `mapstructure:"burst"`
}

type GPUConfig struct {
	Resource   string   `mapstructure:"resource"`
	TypeLabels []string `mapstructure:"type_labels"`
}

type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type RemoteConfig struct {
	URL string `mapstructure:"url"`
}

// New returns a viper instance with defaults and environment bindings in
// place. Callers may bind command-line flags onto it before Load.
//
// Every key can be set from GPUDASH_<SECTION>_<KEY>. DASHBOARD_HOST,
// DASHBOARD_PORT and CORS_ORIGINS are honoured as well.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("source", SourceK8s)
	v.SetDefault("server.addr", legacyAddr())
	v.SetDefault("cors.origins", []string{"*"})
	v.SetDefault("kube.config", help.DefaultKubeconfig())
	v.SetDefault("kube.context", "")
	v.SetDefault("kube.qps", 30)
	v.SetDefault("kube.burst", 60)
	v.SetDefault("gpu.resource", k8s.DefaultGPUResource)
	v.SetDefault("gpu.type_labels", k8s.DefaultGPUTypeLabels)
	v.SetDefault("poll.interval", 15*time.Second)
	v.SetDefault("cache.ttl", 5*time.Second)
	v.SetDefault("remote.url", "")

	_ = v.BindEnv("cors.origins", envPrefix+"_CORS_ORIGINS", "CORS_ORIGINS")
	return v
}

func legacyAddr() string {
	host, port := os.Getenv("DASHBOARD_HOST"), os.Getenv("DASHBOARD_PORT")
	if host == "" {
		host = "0.0.0.0"
	}
	if port == "" {
		port = "8000"
	}
	return net.JoinHostPort(host, port)
}

// LoadDotEnv loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads the optional YAML file and decodes everything into a Config.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.CORS.Origins = splitList(cfg.CORS.Origins)
	cfg.GPU.TypeLabels = splitList(cfg.GPU.TypeLabels)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList flattens comma-separated entries and drops blanks.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func (c *Config) Validate() error {
	switch c.Source {
	case SourceK8s, SourceMock:
	case SourceRemote:
		if c.Remote.URL == "" {
			return errors.New("remote.url is required when source is remote")
		}
	default:
		return fmt.Errorf("unknown source %q, want k8s, mock or remote", c.Source)
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive, got %s", c.Poll.Interval)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	return nil
}

func (c *Config) KubeOptions() k8s.Options {
	return k8s.Options{
		Kubeconfig:    c.Kube.Config,
		Context:       c.Kube.Context,
		QPS:           c.Kube.QPS,
		Burst:         c.Kube.Burst,
		GPUResource:   c.GPU.Resource,
		GPUTypeLabels: c.GPU.TypeLabels,
	}
}

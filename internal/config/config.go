package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"mycoseed/internal/model"
	"mycoseed/internal/pkg"
	"mycoseed/internal/pkg/logger"
	"mycoseed/internal/pkg/storage/minio"
	"mycoseed/internal/repository/mysql"
	"mycoseed/internal/repository/redis"
)

const EnvPrefix = "MYCOSEED"

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Database  mysql.Config    `mapstructure:"database"`
	Redis     redis.Config    `mapstructure:"redis"`
	JWT       pkg.JWTConfig   `mapstructure:"jwt"`
	Log       logger.Conf     `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"` // development | production
}

type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	Mode         string        `mapstructure:"mode"` // gin mode: debug | release | test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type StorageConfig struct {
	Driver  string       `mapstructure:"driver"` // minio | memory
	BaseURL string       `mapstructure:"base_url"`
	Minio   minio.Config `mapstructure:"minio"`
}

// BootstrapConfig 启动时通过 grant-admin 命令写入的系统管理员
type BootstrapConfig struct {
	SystemAdmins []string `mapstructure:"system_admins"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "mycoseed")
	v.SetDefault("app.env", "development")

	v.SetDefault("http.addr", ":3001")
	v.SetDefault("http.mode", "release")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.slow_threshold", 200*time.Millisecond)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("jwt.access_secret", "")
	v.SetDefault("jwt.refresh_secret", "")
	v.SetDefault("jwt.access_ttl", pkg.DefaultAccessTTL)
	v.SetDefault("jwt.refresh_ttl", pkg.DefaultRefreshTTL)

	logDefaults := logger.SetDefaults()
	v.SetDefault("log.output", logDefaults.Output)
	v.SetDefault("log.path", logDefaults.Path)
	v.SetDefault("log.filename", logDefaults.Filename)
	v.SetDefault("log.level", logDefaults.Level)
	v.SetDefault("log.keep_days", logDefaults.KeepDays)
	v.SetDefault("log.rotate_size", logDefaults.RotateSize)
	v.SetDefault("log.rotate_num", logDefaults.RotateNum)

	v.SetDefault("storage.driver", "minio")
	v.SetDefault("storage.base_url", "")
	v.SetDefault("storage.minio.endpoint", "")
	v.SetDefault("storage.minio.access_key", "")
	v.SetDefault("storage.minio.secret_key", "")
	v.SetDefault("storage.minio.bucket", "mycoseed")
	v.SetDefault("storage.minio.region", "")
	v.SetDefault("storage.minio.use_ssl", false)
	v.SetDefault("storage.minio.public_url", "")

	v.SetDefault("bootstrap.system_admins", []string{})
}

// Load 读取 .env、配置文件与 MYCOSEED_ 前缀环境变量，优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotenv 开发环境额外加载 .env.development；文件不存在不算错误
func loadDotenv() error {
	files := []string{".env"}
	if os.Getenv("APP_ENV") == "development" {
		files = append([]string{".env.development"}, files...)
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		errs = append(errs, errors.New("jwt.access_secret and jwt.refresh_secret are required"))
	} else if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, errors.New("jwt access and refresh secrets must differ"))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, err)
	}
	switch c.Storage.Driver {
	case "memory":
	case "minio":
		if c.Storage.Minio.Endpoint == "" || c.Storage.Minio.Bucket == "" {
			errs = append(errs, errors.New("storage.minio.endpoint and storage.minio.bucket are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if len(c.Bootstrap.SystemAdmins) > model.MaxSystemAdmins {
		errs = append(errs, fmt.Errorf("bootstrap.system_admins allows at most %d users", model.MaxSystemAdmins))
	}
	return errors.Join(errs...)
}

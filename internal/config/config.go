package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Supabase BackendConfig  `yaml:"supabase"`
	Backend  AltBackendConf `yaml:"backend"`
	Sources  SourcesConfig  `yaml:"sources"`
	Content  ContentConfig  `yaml:"content"`
	Cache    CacheConfig    `yaml:"cache"`
	Redis    RedisConf      `yaml:"redis"`
	Admin    AdminConfig    `yaml:"admin"`
	Legacy   LegacyConfig   `yaml:"legacy"`
}

type HTTPConfig struct {
	Host           string        `yaml:"host" env:"HTTP_HOST"`
	Port           string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	SessionSecret  string        `yaml:"session_secret" env:"SESSION_SECRET" env-default:"change-me"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:","`
	RequestTimeout time.Duration `yaml:"request_timeout" env-default:"10s"`
}

// BackendConfig основной источник настроек бэкенда
type BackendConfig struct {
	URL     string `yaml:"url" env:"SUPABASE_URL"`
	AnonKey string `yaml:"anon_key" env:"SUPABASE_ANON_KEY"`
}

// AltBackendConf запасной источник, читается если supabase не задан
type AltBackendConf struct {
	Driver string `yaml:"driver" env:"MP_BACKEND_DRIVER" env-default:"postgrest"`
	URL    string `yaml:"url" env:"MP_BACKEND_URL"`
	Key    string `yaml:"key" env:"MP_BACKEND_KEY"`
}

// SourcesConfig переопределяет списки кандидатов по категориям
type SourcesConfig map[string][]string

type ContentConfig struct {
	Artist           string        `yaml:"artist" env-default:"Manu Pavez"`
	BookingEmail     string        `yaml:"booking_email" env:"BOOKING_EMAIL" env-default:"manupavez22@gmail.com"`
	WaitTimeout      time.Duration `yaml:"wait_timeout" env-default:"1500ms"`
	WaitInterval     time.Duration `yaml:"wait_interval" env-default:"50ms"`
	ReleaseAutoplay  time.Duration `yaml:"release_autoplay" env-default:"9s"`
	PresskitAutoplay time.Duration `yaml:"presskit_autoplay" env-default:"5500ms"`
}

type CacheConfig struct {
	Driver  string        `yaml:"driver" env:"CACHE_DRIVER" env-default:"memory"`
	PageTTL time.Duration `yaml:"page_ttl" env-default:"5m"`
	Cleanup time.Duration `yaml:"cleanup" env-default:"10m"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db"`
	Prefix        string `yaml:"prefix" env-default:"mpsite:"`
}

type AdminConfig struct {
	Username     string        `yaml:"username" env:"ADMIN_USERNAME" env-default:"admin"`
	PasswordHash string        `yaml:"password_hash" env:"ADMIN_PASSWORD_HASH"`
	JWTSecret    string        `yaml:"jwt_secret" env:"ADMIN_JWT_SECRET"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"1h"`
}

// LegacyConfig старый загрузчик data/<name>.json
type LegacyConfig struct {
	BaseURL     string        `yaml:"base_url" env:"LEGACY_BASE_URL"`
	Dir         string        `yaml:"dir" env:"LEGACY_DIR"`
	SnapshotDir string        `yaml:"snapshot_dir" env:"LEGACY_SNAPSHOT_DIR"`
	MaxAge      time.Duration `yaml:"max_age" env-default:"30m"`
	Attempts    int           `yaml:"attempts" env-default:"2"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}

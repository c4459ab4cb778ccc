package shared

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"obras_portal/internal/domain"
)

type Config struct {
	AppEnv       string
	LogLevel     string
	HTTPAddr     string
	MetricsAddr  string
	MySQLDSN     string
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	FetchRPS     int
	FetchTimeout time.Duration
	HTTPTimeout  time.Duration
	CacheTTL     time.Duration
	Sources      domain.Sources
}

// Load reads the configuration from the environment. A .env file in the
// working directory (or ENV_FILE) is applied first without overriding
// variables that are already set. SOURCES_FILE, when set, points to a YAML
// file whose entries take precedence over the CSV_* variables.
func Load() Config {
	envFile := env("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err == nil {
		log.Debug().Str("file", envFile).Msg("loaded env file")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:       env("APP_ENV", "prod"),
		LogLevel:     env("LOG_LEVEL", "info"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		MetricsAddr:  env("METRICS_ADDR", ""),
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/obras?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		FetchRPS:     atoi("FETCH_RPS", 5),
		FetchTimeout: time.Duration(atoi("FETCH_TIMEOUT_SECONDS", 20)) * time.Second,
		HTTPTimeout:  time.Duration(atoi("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		Sources: domain.Sources{
			Projects: domain.Source{URL: os.Getenv("CSV_PROYECTOS_URL"), Fallback: env("CSV_PROYECTOS_FALLBACK", "offline-data/proyectos.csv")},
			Months:   domain.Source{URL: os.Getenv("CSV_MESES_URL"), Fallback: env("CSV_MESES_FALLBACK", "offline-data/meses.csv")},
			Photos:   domain.Source{URL: os.Getenv("CSV_FOTOS_URL"), Fallback: env("CSV_FOTOS_FALLBACK", "offline-data/fotos.csv")},
		},
	}

	if f := os.Getenv("SOURCES_FILE"); f != "" {
		src, err := LoadSourcesFile(f)
		if err != nil {
			log.Warn().Err(err).Str("file", f).Msg("ignoring sources file")
		} else {
			c.Sources = mergeSources(c.Sources, src)
		}
	}
	return c
}

// sourceVars maps each table to the variable that configures its primary URL.
var sourceVars = map[string]string{
	"proyectos": "CSV_PROYECTOS_URL",
	"meses":     "CSV_MESES_URL",
	"fotos":     "CSV_FOTOS_URL",
}

// Validate reports missing source locations. Binaries call it once at startup,
// before any fetch.
func (c Config) Validate() error {
	missing := c.Sources.Missing()
	if len(missing) == 0 {
		return nil
	}
	vars := make([]string, 0, len(missing))
	for _, t := range missing {
		vars = append(vars, sourceVars[t])
	}
	return fmt.Errorf("%w: set %s (or SOURCES_FILE)", domain.ErrMissingSource, strings.Join(vars, ", "))
}

// LoadSourcesFile reads table locations from YAML:
//
//	proyectos: {url: https://..., fallback: offline-data/proyectos.csv}
//	meses:     {url: https://...}
//	fotos:     {url: https://...}
func LoadSourcesFile(path string) (domain.Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Sources{}, err
	}
	var s domain.Sources
	if err := yaml.Unmarshal(data, &s); err != nil {
		return domain.Sources{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

// mergeSources overlays the non-empty locations of over onto base.
func mergeSources(base, over domain.Sources) domain.Sources {
	pick := func(b, o domain.Source) domain.Source {
		if o.URL != "" {
			b.URL = o.URL
		}
		if o.Fallback != "" {
			b.Fallback = o.Fallback
		}
		return b
	}
	return domain.Sources{
		Projects: pick(base.Projects, over.Projects),
		Months:   pick(base.Months, over.Months),
		Photos:   pick(base.Photos, over.Photos),
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

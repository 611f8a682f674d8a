package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pwnholic/observador/internal/clients"
	"github.com/pwnholic/observador/internal/document"
)

const envPrefix = "OBSERVADOR"

type Config struct {
	Backend     string
	OutputDir   string
	Concurrency int
	LogLevel    string

	LeftLogo  string
	RightLogo string
	Cache     bool
	MaxPixels int
	HTTP      clients.HTTPClientOptions

	Letterhead document.Letterhead
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	httpDefaults := clients.DefaultHTTPClientOptions()
	lh := document.DefaultLetterhead()

	v.SetDefault("backend", "docx")
	v.SetDefault("output", "observadores")
	v.SetDefault("concurrency", 4)
	v.SetDefault("log.level", "info")

	v.SetDefault("logos.left", "assets/logo_institucion.png")
	v.SetDefault("logos.right", "assets/escudo_colombia.png")
	v.SetDefault("logos.cache", true)
	v.SetDefault("logos.maxPixels", 512)

	v.SetDefault("http.timeout", httpDefaults.Timeout)
	v.SetDefault("http.retries", httpDefaults.RetryCount)
	v.SetDefault("http.retryWait", httpDefaults.RetryWaitTime)
	v.SetDefault("http.retryMaxWait", httpDefaults.RetryMaxWaitTime)
	v.SetDefault("http.userAgent", httpDefaults.UserAgent)

	v.SetDefault("letterhead.country", lh.Country)
	v.SetDefault("letterhead.institution", lh.Institution)
	v.SetDefault("letterhead.resolutions", lh.Resolutions[:])
	v.SetDefault("letterhead.locality", lh.Locality)
	v.SetDefault("letterhead.accreditation", lh.Accreditation)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig layers defaults, an optional .env file, OBSERVADOR_* variables
// and an optional config file (yaml, json or toml).
func loadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	resolutions := v.GetStringSlice("letterhead.resolutions")
	if len(resolutions) != 2 {
		return nil, fmt.Errorf("letterhead.resolutions needs exactly 2 lines, got %d", len(resolutions))
	}

	conf := &Config{
		Backend:     v.GetString("backend"),
		OutputDir:   v.GetString("output"),
		Concurrency: v.GetInt("concurrency"),
		LogLevel:    v.GetString("log.level"),
		LeftLogo:    v.GetString("logos.left"),
		RightLogo:   v.GetString("logos.right"),
		Cache:       v.GetBool("logos.cache"),
		MaxPixels:   v.GetInt("logos.maxPixels"),
		HTTP: clients.HTTPClientOptions{
			RetryCount:       v.GetInt("http.retries"),
			RetryWaitTime:    v.GetDuration("http.retryWait"),
			RetryMaxWaitTime: v.GetDuration("http.retryMaxWait"),
			Timeout:          v.GetDuration("http.timeout"),
			UserAgent:        v.GetString("http.userAgent"),
		},
		Letterhead: document.Letterhead{
			Country:       v.GetString("letterhead.country"),
			Institution:   v.GetString("letterhead.institution"),
			Resolutions:   [2]string{resolutions[0], resolutions[1]},
			Locality:      v.GetString("letterhead.locality"),
			Accreditation: v.GetString("letterhead.accreditation"),
		},
	}

	if conf.Concurrency < 1 {
		return nil, fmt.Errorf("concurrency must be >= 1, got %d", conf.Concurrency)
	}
	if conf.HTTP.Timeout <= 0 {
		conf.HTTP.Timeout = 15 * time.Second
	}
	return conf, nil
}

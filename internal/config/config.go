package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	Environment   string `mapstructure:"environment"`
	DevModeBypass bool   `mapstructure:"dev_mode_bypass"`

	DB struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"db"`

	Encoder struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"encoder"`

	Gallery struct {
		// PageSize bounds unranked search results.
		PageSize int `mapstructure:"page_size"`
		// SimilarityThreshold is the hard cutoff for ranked results;
		// candidates must score strictly above it.
		SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
		// DuplicateThreshold is the minimum pairwise similarity for two
		// photos to be grouped as near-duplicates.
		DuplicateThreshold float64 `mapstructure:"duplicate_threshold"`
		// PendingTTL is the maximum lifetime of an unresolved consent
		// request before it is treated as expired.
		PendingTTL time.Duration `mapstructure:"pending_ttl"`
		// InMemory runs the service against the built-in sample library
		// instead of Postgres.
		InMemory bool `mapstructure:"in_memory"`
	} `mapstructure:"gallery"`

	Auth struct {
		Issuer       string `mapstructure:"issuer"`
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
		RedirectURL  string `mapstructure:"redirect_url"`
	} `mapstructure:"auth"`

	TLS struct {
		Enable    bool     `mapstructure:"enable"`
		CertFile  string   `mapstructure:"cert_file"`
		KeyFile   string   `mapstructure:"key_file"`
		Hostnames []string `mapstructure:"hostnames"`
	} `mapstructure:"tls"`
}

// LoadConfig loads the configuration from a file and the environment.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Missing file is fine: defaults plus env cover demo mode.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Auth.Issuer = normalizeIssuer(config.Auth.Issuer)

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("environment", "DEV")
	viper.SetDefault("dev_mode_bypass", true)
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", 5432)
	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("encoder.url", "http://localhost:8090")
	viper.SetDefault("gallery.page_size", 100)
	viper.SetDefault("gallery.similarity_threshold", 0.2)
	viper.SetDefault("gallery.duplicate_threshold", 0.95)
	viper.SetDefault("gallery.pending_ttl", 10*time.Minute)
	viper.SetDefault("gallery.in_memory", false)
}

// normalizeIssuer ensures the provided OIDC issuer string is in a
// predictable form. It removes any trailing slash and leaves the scheme and
// path intact, so the full URL from the provider's admin console can be
// pasted as-is.
func normalizeIssuer(input string) string {
	iss := strings.TrimSpace(input)
	if strings.HasSuffix(iss, "/") {
		iss = strings.TrimRight(iss, "/")
	}
	return iss
}

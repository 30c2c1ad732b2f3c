package config

import "os"

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Auth     AuthConfig
	Identity IdentityConfig
	Google   GoogleConfig
}

type ServerConfig struct {
	Port             string
	AllowedOrigins   string
	AllowCredentials string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type AuthConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     string
	RefreshTTL    string
}

// IdentityConfig points at the Identity Toolkit (Firebase Auth) REST API
// that holds password credentials for this backend.
type IdentityConfig struct {
	APIKey  string
	BaseURL string
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:             getenv("PORT", "8080"),
			AllowedOrigins:   os.Getenv("CORS_ALLOWED_ORIGINS"),
			AllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "true"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Auth: AuthConfig{
			AccessSecret:  os.Getenv("JWT_ACCESS_SECRET"),
			RefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
			AccessTTL:     getenv("JWT_ACCESS_TTL", "15m"),
			RefreshTTL:    getenv("JWT_REFRESH_TTL", "720h"),
		},
		Identity: IdentityConfig{
			APIKey:  os.Getenv("IDENTITY_API_KEY"),
			BaseURL: getenv("IDENTITY_BASE_URL", "https://identitytoolkit.googleapis.com/v1"),
		},
		Google: GoogleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

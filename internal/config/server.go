package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	AdminAPIKey string `env:"ADMIN_API_KEY"`

	RoomServiceBaseURL string `env:"ROOM_SERVICE_BASE_URL"`
	RoomServiceAPIKey  string `env:"ROOM_SERVICE_API_KEY"`
	DirectoryBaseURL   string `env:"DIRECTORY_BASE_URL"`

	SeedCompanyID      string `env:"SEED_COMPANY_ID"`
	SeedCompanyCredits int64  `env:"SEED_COMPANY_CREDITS" envDefault:"1000"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}

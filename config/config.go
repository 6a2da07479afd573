package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	Redis    Redis
	Learning Learning
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Redis struct {
	Addr            string
	CatalogCacheTTL int // seconds
}

type Learning struct {
	// ResetRevokesAward controls whether an administrative progress reset
	// also debits previously granted points and clears the awarded flag.
	ResetRevokesAward bool
	// PremiumOpenAccess grants every requester access to premium labs.
	// Entitlement resolution normally belongs to the account system.
	PremiumOpenAccess bool
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("CATALOG_CACHE_TTL_SECONDS", 300)

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Redis.Addr = viper.GetString("REDIS_ADDR")
	config.Redis.CatalogCacheTTL = viper.GetInt("CATALOG_CACHE_TTL_SECONDS")

	config.Learning.ResetRevokesAward = viper.GetBool("RESET_REVOKES_AWARD")
	config.Learning.PremiumOpenAccess = viper.GetBool("PREMIUM_OPEN_ACCESS")

	log.Info().Str("port", config.Server.Port).Str("db_host", config.Database.Host).Msg("Config loaded")
	return &config, nil
}

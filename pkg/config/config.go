package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load fills cfg from the process environment. If envFile is not empty it is
// loaded first with godotenv; a missing .env file is not an error so the same
// binary runs in containers that only export variables. cfg must be a pointer
// to a struct carrying envconfig tags.
func Load(envFile string, cfg interface{}) error {
	if envFile != "" {
		// ignore a missing file, fail only on env processing
		_ = godotenv.Load(envFile)
	}
	return envconfig.Process("", cfg)
}

// MustLoad is Load for startup paths where a bad environment is fatal anyway.
func MustLoad(envFile string, cfg interface{}) {
	if err := Load(envFile, cfg); err != nil {
		panic(err)
	}
}

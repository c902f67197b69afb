package config

import "os"

var Debug = os.Getenv("DEBUG") == "true"

var Envs = struct {
	ALLOWED_ORIGINS string
	POSTGRES_URL    string
	JWT_KEY         string
	PORT            string
}{
	ALLOWED_ORIGINS: os.Getenv("ALLOWED_ORIGINS"),
	POSTGRES_URL:    os.Getenv("POSTGRES_URL"),
	JWT_KEY:         os.Getenv("JWT_KEY"),
	PORT:            os.Getenv("PORT"),
}

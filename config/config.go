package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadENV loads the environment variables from .env unless GO_ENV says
// we are past development.
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil {
			return err
		}
	}

	return nil
}

type EnviornmentVariable struct {
	// All variables
	GO_ENV       string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	PORT         int
	// Redis Configuration
	REDIS_URL string
	// Compliance analysis service
	ANALYSIS_SERVICE_URL string
	ANALYSIS_JWT_SECRET  string
	ANALYSIS_JWT_ISSUER  string
	// Object storage (S3-compatible) for certification archives
	ARCHIVE_ACCESS_KEY string
	ARCHIVE_SECRET_KEY string
	ARCHIVE_BUCKET     string
	ARCHIVE_REGION     string
	ARCHIVE_ENDPOINT   string
}

func Get() (*EnviornmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	// Database defaults
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	envVariables := &EnviornmentVariable{
		GO_ENV:       os.Getenv("GO_ENV"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      dbHost,
		DB_PORT:      dbPort,
		DB_SSL_MODE:  os.Getenv("DB_SSL_MODE"),
		PORT:         port,
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// Analysis service
		ANALYSIS_SERVICE_URL: os.Getenv("ANALYSIS_SERVICE_URL"),
		ANALYSIS_JWT_SECRET:  os.Getenv("ANALYSIS_JWT_SECRET"),
		ANALYSIS_JWT_ISSUER:  os.Getenv("ANALYSIS_JWT_ISSUER"),
		// Object storage
		ARCHIVE_ACCESS_KEY: os.Getenv("ARCHIVE_ACCESS_KEY"),
		ARCHIVE_SECRET_KEY: os.Getenv("ARCHIVE_SECRET_KEY"),
		ARCHIVE_BUCKET:     os.Getenv("ARCHIVE_BUCKET"),
		ARCHIVE_REGION:     os.Getenv("ARCHIVE_REGION"),
		ARCHIVE_ENDPOINT:   os.Getenv("ARCHIVE_ENDPOINT"),
	}

	return envVariables, nil
}

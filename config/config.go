package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
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
	// JWT Configuration
	JWT_SECRET string
	JWT_ISSUER string
	// Redis Configuration
	REDIS_URL string
	// Encryption key for sensitive applicant details at rest
	DATA_ENCRYPTION_SECRET string
	// LLM gateway (OpenAI-compatible chat completions endpoint)
	LLM_GATEWAY_URL string
	LLM_API_KEY     string
	LLM_MODEL       string
	// DigitalOcean Spaces (payment screenshot storage)
	DO_SPACES_KEY      string
	DO_SPACES_SECRET   string
	DO_SPACES_BUCKET   string
	DO_SPACES_REGION   string
	DO_SPACES_ENDPOINT string
	// Package pricing, PKR
	SOP_STANDARD_PRICE int
	SOP_EXPERT_PRICE   int
}

func Get() (*EnviornmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	standardPrice, err := strconv.Atoi(os.Getenv("SOP_STANDARD_PRICE"))
	if err != nil {
		standardPrice = 1000
	}

	expertPrice, err := strconv.Atoi(os.Getenv("SOP_EXPERT_PRICE"))
	if err != nil {
		expertPrice = 5000
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
		// JWT Configuration
		JWT_SECRET: os.Getenv("JWT_SECRET"),
		JWT_ISSUER: os.Getenv("JWT_ISSUER"),
		// Redis Configuration
		REDIS_URL: os.Getenv("REDIS_URL"),
		// Encryption
		DATA_ENCRYPTION_SECRET: os.Getenv("DATA_ENCRYPTION_SECRET"),
		// LLM gateway
		LLM_GATEWAY_URL: os.Getenv("LLM_GATEWAY_URL"),
		LLM_API_KEY:     os.Getenv("LLM_API_KEY"),
		LLM_MODEL:       os.Getenv("LLM_MODEL"),
		// Spaces
		DO_SPACES_KEY:      os.Getenv("DO_SPACES_KEY"),
		DO_SPACES_SECRET:   os.Getenv("DO_SPACES_SECRET"),
		DO_SPACES_BUCKET:   os.Getenv("DO_SPACES_BUCKET"),
		DO_SPACES_REGION:   os.Getenv("DO_SPACES_REGION"),
		DO_SPACES_ENDPOINT: os.Getenv("DO_SPACES_ENDPOINT"),
		// Pricing
		SOP_STANDARD_PRICE: standardPrice,
		SOP_EXPERT_PRICE:   expertPrice,
	}

	return envVariables, nil
}

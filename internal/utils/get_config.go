package utils

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Application
	AppPort              string `yaml:"APP_PORT"`
	AppURL               string `yaml:"APP_URL"`
	ShoppingEmptyAsError bool   `yaml:"SHOPPING_EMPTY_AS_ERROR"`

	// Database configuration
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`

	// JWT
	JWTSecret string `yaml:"JWT_SECRET"`

	// Mailing configuration
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`

	// AWS S3 configuration
	AWSS3Bucket  string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region  string `yaml:"AWS_S3_REGION"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey string `yaml:"AWS_SECRET_KEY"`

	// Redis cache
	RedisAddr     string `yaml:"REDIS_ADDR"`
	RedisPassword string `yaml:"REDIS_PASSWORD"`

	// RabbitMQ
	RabbitMQURL string `yaml:"RABBITMQ_URL"`
}

var config Config

// LoadConfig reads config.yaml, then lets a .env file and real
// environment variables override individual keys.
func LoadConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Error reading .env file: %s\n", err)
	}

	file, err := os.ReadFile("config.yaml")
	if err == nil {
		if err := yaml.Unmarshal(file, &config); err != nil {
			log.Printf("Error parsing YAML file: %s\n", err)
		}
	}

	setEnvDefault("JWT_SECRET", config.JWTSecret)
	setEnvDefault("AWS_S3_BUCKET", config.AWSS3Bucket)
	setEnvDefault("AWS_S3_REGION", config.AWSS3Region)
	setEnvDefault("AWS_ACCESS_KEY", config.AWSAccessKey)
	setEnvDefault("AWS_SECRET_KEY", config.AWSSecretKey)
	setEnvDefault("RABBITMQ_URL", config.RabbitMQURL)
}

func setEnvDefault(key, value string) {
	if os.Getenv(key) == "" && value != "" {
		os.Setenv(key, value)
	}
}

func GetConfig(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	switch key {
	case "APP_PORT":
		if config.AppPort == "" {
			return "8080"
		}
		return config.AppPort
	case "APP_URL":
		return config.AppURL
	case "SHOPPING_EMPTY_AS_ERROR":
		if config.ShoppingEmptyAsError {
			return "true"
		}
		return "false"
	case "DB_USER":
		return config.DBUser
	case "DB_NAME":
		return config.DBName
	case "DB_PASSWORD":
		return config.DBPassword
	case "DB_PORT":
		return config.DBPort
	case "DB_HOST":
		return config.DBHost
	case "JWT_SECRET":
		return config.JWTSecret
	case "SMTP_HOST":
		return config.SMTPHost
	case "SMTP_PORT":
		return config.SMTPPort
	case "SMTP_SENDER_NAME":
		return config.SMTPSenderName
	case "SMTP_AUTH_EMAIL":
		return config.SMTPAuthEmail
	case "SMTP_AUTH_PASSWORD":
		return config.SMTPAuthPassword
	case "AWS_S3_BUCKET":
		return config.AWSS3Bucket
	case "AWS_S3_REGION":
		return config.AWSS3Region
	case "AWS_ACCESS_KEY":
		return config.AWSAccessKey
	case "AWS_SECRET_KEY":
		return config.AWSSecretKey
	case "REDIS_ADDR":
		if config.RedisAddr == "" {
			return "localhost:6379"
		}
		return config.RedisAddr
	case "REDIS_PASSWORD":
		return config.RedisPassword
	case "RABBITMQ_URL":
		return config.RabbitMQURL
	default:
		return ""
	}
}

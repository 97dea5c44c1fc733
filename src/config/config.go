package config

import (
	"fmt"
	"os"
	"time"
)

const (
	TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"
	CLOCK_TIME_FORMAT = "15:04"

	DEFAULT_MAX_PARTICIPANTS uint = 6
	DEFAULT_MIN_PARTICIPANTS uint = 2
	DEFAULT_CURRENCY              = "EUR"

	INVITATION_TTL         = 7 * 24 * time.Hour
	INVITATION_SWEEP_EVERY = 15 * time.Minute
	ROLE_CACHE_TTL         = 5 * time.Minute
)

var API_ENV = os.Getenv("API_ENV")

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

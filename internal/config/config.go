package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                  string
	AllowedOrigin         string
	DatabaseURL           string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	KafkaBrokers          []string
	AuthSecret            string
	AccessTokenTTLMinutes int
	ManagerPIN            string
	TZOffsetHours         int
	ExpenseAuthCents      int64
	HistoryLimit          int
}

func Load() Config {
	// A missing .env file is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}
	tzOffset, err := strconv.Atoi(getEnv("TZ_OFFSET_HOURS", "-4"))
	if err != nil || tzOffset < -12 || tzOffset > 14 {
		tzOffset = -4
	}
	expenseAuth, err := strconv.ParseInt(getEnv("EXPENSE_AUTH_CENTS", "10000"), 10, 64)
	if err != nil || expenseAuth < 0 {
		expenseAuth = 10000
	}
	historyLimit, err := strconv.Atoi(getEnv("HISTORY_LIMIT", "50"))
	if err != nil || historyLimit < 1 {
		historyLimit = 50
	}

	cfg := Config{
		Port:                  getEnv("PORT", "8080"),
		AllowedOrigin:         getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               redisDB,
		KafkaBrokers:          splitList(os.Getenv("KAFKA_BROKERS")),
		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes: tokenTTL,
		ManagerPIN:            strings.TrimSpace(os.Getenv("MANAGER_PIN")),
		TZOffsetHours:         tzOffset,
		ExpenseAuthCents:      expenseAuth,
		HistoryLimit:          historyLimit,
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Secrets carries every credential the engine may need. All fields are
// optional, the dependency builder decides what a given setup requires.
type Secrets struct {
	BinanceAPIKey    string `envconfig:"BINANCE_API_KEY"`
	BinanceAPISecret string `envconfig:"BINANCE_API_SECRET"`
	BybitAPIKey      string `envconfig:"BYBIT_API_KEY"`
	BybitAPISecret   string `envconfig:"BYBIT_API_SECRET"`
	StrategistAPIKey string `envconfig:"STRATEGIST_API_KEY"`
	AuditorAPIKey    string `envconfig:"AUDITOR_API_KEY"`
	TelegramToken    string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `envconfig:"TELEGRAM_CHAT_ID"`
}

// LoadSecrets reads credentials from the environment, merging in a .env
// file when one exists.
func LoadSecrets() (Secrets, error) {
	_ = godotenv.Load()

	var s Secrets
	if err := envconfig.Process("", &s); err != nil {
		return Secrets{}, err
	}
	return s, nil
}

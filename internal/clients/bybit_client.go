package clients

import (
	"github.com/hirokisan/bybit/v2"
)

const bybitTestnetURL = "https://api-testnet.bybit.com"

// NewBybitClient returns an authenticated V5 client.
func NewBybitClient(apiKey, apiSecret string, testnet bool) *bybit.Client {
	client := bybit.NewClient().WithAuth(apiKey, apiSecret)
	if testnet {
		client = client.WithBaseURL(bybitTestnetURL)
	}
	return client
}

package clients

import (
	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/futures"
)

// NewBinanceFuturesClient returns a USDⓈ-M futures client. The testnet
// switch is a package-level toggle in the SDK, so it must be set before
// the client is built.
func NewBinanceFuturesClient(apiKey, apiSecret string, testnet bool) *futures.Client {
	futures.UseTestnet = testnet
	return binance.NewFuturesClient(apiKey, apiSecret)
}

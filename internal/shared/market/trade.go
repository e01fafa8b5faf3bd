package market

// Side is the direction of a swap print.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// ParseSide maps upstream side spellings onto Buy/Sell.
func ParseSide(s string) (Side, bool) {
	switch s {
	case "buy", "BUY", "Buy", "b":
		return Buy, true
	case "sell", "SELL", "Sell", "s":
		return Sell, true
	}
	return "", false
}

// Trade is one executed swap print. Timestamp is in seconds.
type Trade struct {
	Timestamp       int64    `json:"timestamp"`
	Side            Side     `json:"side"`
	Price           float64  `json:"price"`
	AmountBase      *float64 `json:"amountBase,omitempty"`
	AmountQuote     *float64 `json:"amountQuote,omitempty"`
	TransactionHash string   `json:"transactionHash,omitempty"`
	WalletAddress   string   `json:"walletAddress,omitempty"`
}

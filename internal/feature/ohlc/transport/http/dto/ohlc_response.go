package dto

import "token_backend/internal/shared/market"

// OHLCResponse はOHLCエンドポイントのレスポンスDTOです。
type OHLCResponse struct {
	PairID      string           `json:"pairId"`
	Chain       string           `json:"chain"`
	TF          string           `json:"tf"`
	Candles     []market.Candle  `json:"candles"`
	Provider    string           `json:"provider"`
	EffectiveTF string           `json:"effectiveTf"`
	Attempts    []market.Attempt `json:"attempts"`
	Error       string           `json:"error,omitempty"` // "unsupported_network" のときのみ
}

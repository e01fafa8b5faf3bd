package dto

import "token_backend/internal/shared/market"

// TradesResponse は約定エンドポイントのレスポンスDTOです。
type TradesResponse struct {
	PairID   string         `json:"pairId"`
	Chain    string         `json:"chain"`
	Trades   []market.Trade `json:"trades"`
	Provider string         `json:"provider"`
	Error    string         `json:"error,omitempty"`
}

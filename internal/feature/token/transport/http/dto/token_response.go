package dto

import "token_backend/internal/shared/market"

// TokenResponse はトークン詳細エンドポイントのレスポンスDTOです。
type TokenResponse struct {
	Info     market.TokenInfo     `json:"info"`
	KPIs     market.TokenKPIs     `json:"kpis"`
	Pools    []market.PoolSummary `json:"pools"`
	Provider string               `json:"provider"`
	Sources  []string             `json:"sources"`
	Error    string               `json:"error,omitempty"`
}

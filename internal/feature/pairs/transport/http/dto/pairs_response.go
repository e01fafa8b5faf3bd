package dto

import "token_backend/internal/shared/market"

// PairsResponse はプール一覧エンドポイントのレスポンスDTOです。
type PairsResponse struct {
	Token    market.TokenMeta     `json:"token"`
	Pools    []market.PoolSummary `json:"pools"`
	Provider string               `json:"provider"`
	Error    string               `json:"error,omitempty"`
}

package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"token_backend/internal/feature/pairs/transport/handler"
	"token_backend/internal/feature/pairs/usecase"
	"token_backend/internal/shared/market"
)

type mockPairsUsecase struct {
	GetPairsFunc func(ctx context.Context, in usecase.GetPairsInput) (*usecase.GetPairsOutput, error)
	Calls        int
}

func (m *mockPairsUsecase) GetPairs(ctx context.Context, in usecase.GetPairsInput) (*usecase.GetPairsOutput, error) {
	m.Calls++
	return m.GetPairsFunc(ctx, in)
}

func TestPairsHandler_GetPairs(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		url            string
		mockGetPairs   func(ctx context.Context, in usecase.GetPairsInput) (*usecase.GetPairsOutput, error)
		expectedStatus int
		expectedBody   string
		expectedHeader map[string]string
	}{
		{
			name: "success",
			url:  "/pairs?chain=eth&address=0xabc",
			mockGetPairs: func(ctx context.Context, in usecase.GetPairsInput) (*usecase.GetPairsOutput, error) {
				assert.Equal(t, "eth", in.Chain)
				assert.Equal(t, "0xabc", in.Address)
				rec := market.AttemptRecord{Provider: market.ProviderGeckoTerminal, Items: 1}
				rec.Add(market.Attempt{Provider: market.ProviderGeckoTerminal, Kind: market.KindPools, Items: 1})
				return &usecase.GetPairsOutput{
					Token:    market.TokenMeta{Address: "0xabc", Chain: "ethereum", Symbol: "PEPE"},
					Pools:    []market.PoolSummary{{Address: "0xp1", Chain: "ethereum", Dex: "uniswap"}},
					Provider: market.ProviderGeckoTerminal,
					Record:   rec,
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"token":{"address":"0xabc","chain":"ethereum","symbol":"PEPE"},"pools":[{"address":"0xp1","chain":"ethereum","dex":"uniswap"}],"provider":"geckoterminal"}`,
			expectedHeader: map[string]string{"x-provider": "geckoterminal", "x-fallbacks-tried": "geckoterminal", "x-items": "1"},
		},
		{
			name: "unsupported network",
			url:  "/pairs?chain=tron&address=T1",
			mockGetPairs: func(ctx context.Context, in usecase.GetPairsInput) (*usecase.GetPairsOutput, error) {
				return &usecase.GetPairsOutput{
					Token:              market.TokenMeta{Address: "T1", Chain: "tron"},
					Pools:              []market.PoolSummary{},
					Provider:           market.ProviderNone,
					UnsupportedNetwork: true,
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"token":{"address":"T1","chain":"tron"},"pools":[],"provider":"none","error":"unsupported_network"}`,
		},
		{
			name: "missing address",
			url:  "/pairs?chain=eth",
			mockGetPairs: func(ctx context.Context, in usecase.GetPairsInput) (*usecase.GetPairsOutput, error) {
				return nil, errors.Join(usecase.ErrInvalidRequest)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid_request","message":"invalid request"}`,
		},
		{
			name: "internal error",
			url:  "/pairs?chain=eth&address=0xabc",
			mockGetPairs: func(ctx context.Context, in usecase.GetPairsInput) (*usecase.GetPairsOutput, error) {
				return nil, errors.New("boom")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"internal_error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockPairsUsecase{GetPairsFunc: tt.mockGetPairs}
			r := gin.New()
			r.GET("/pairs", handler.NewPairsHandler(m).GetPairs)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			for k, v := range tt.expectedHeader {
				assert.Equal(t, v, w.Header().Get(k))
			}
			assert.Equal(t, 1, m.Calls)
		})
	}
}

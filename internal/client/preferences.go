package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"token_backend/internal/shared/market"
)

// PreferenceStore はプールとプロバイダの組ごとに最後に選んだ時間足を覚えます。
type PreferenceStore struct {
	mu sync.RWMutex
	m  map[string]market.Timeframe
}

// NewPreferenceStore は空のPreferenceStoreを生成します。
func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{m: make(map[string]market.Timeframe)}
}

func prefKey(pool, provider string) string {
	return pool + "|" + provider
}

// Remember は pool/provider の時間足を記録します。
func (s *PreferenceStore) Remember(pool, provider string, tf market.Timeframe) {
	if pool == "" || tf == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[prefKey(pool, provider)] = tf
}

// Timeframe は記録済みの時間足を返します。
func (s *PreferenceStore) Timeframe(pool, provider string) (market.Timeframe, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tf, ok := s.m[prefKey(pool, provider)]
	return tf, ok
}

// Save は記録をJSONファイルに書き出します。
func (s *PreferenceStore) Save(path string) error {
	s.mu.RLock()
	b, err := json.MarshalIndent(s.m, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// Load はJSONファイルから記録を読み込みます。ファイルが無ければ何もしません。
// 不明な時間足は読み飛ばします。
func (s *PreferenceStore) Load(path string) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var raw map[string]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode preferences: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range raw {
		if tf, err := market.ParseTimeframe(v); err == nil {
			s.m[k] = tf
		}
	}
	return nil
}

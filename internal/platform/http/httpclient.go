package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

var (
	// ErrHTTPStatus は上流APIが4xx/5xxを返したことを示します。
	ErrHTTPStatus = errors.New("upstream http status")
	// ErrEmptyPayload は上流APIが空または不正なJSONを返したことを示します。
	ErrEmptyPayload = errors.New("upstream empty payload")
)

// maxBodyBytes は1レスポンスあたりの読み取り上限です。
const maxBodyBytes = 8 << 20

// NewHTTPClient は外部API呼び出し用に設定されたHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト（デフォルトより短い）
//   - MaxIdleConns / MaxIdleConnsPerHost: 同一プロバイダへの連続呼び出しで接続を再利用
//   - Client.Timeout: リクエスト全体のタイムアウト（呼び出し元から渡される）
//
// 注意:
//   - http.DefaultClientにはタイムアウトがないため、常にカスタムクライアントを使用すること
//   - 呼び出しごとの期限は context 側でも設定される（プロバイダごとに3〜8秒）
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}

// GetJSON はGETリクエストを送信し、レスポンスボディを gjson.Result として返します。
//
// ステータスが400以上なら ErrHTTPStatus、ボディが空または不正なJSONなら ErrEmptyPayload をラップして返します。
func GetJSON(ctx context.Context, client *http.Client, provider, url string, header http.Header) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return gjson.Result{}, err
	}
	for k, vs := range header {
		req.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	res, err := client.Do(req)
	if err != nil {
		return gjson.Result{}, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "provider", provider, "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return gjson.Result{}, fmt.Errorf("%s http %d: %w", provider, res.StatusCode, ErrHTTPStatus)
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return gjson.Result{}, err
	}
	if len(b) == 0 || !gjson.ValidBytes(b) {
		return gjson.Result{}, fmt.Errorf("%s: %w", provider, ErrEmptyPayload)
	}
	return gjson.ParseBytes(b), nil
}

// Package cmd implements the marketctl command line.
package cmd

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"token_backend/internal/client"
)

var (
	serverURL string
	timeout   time.Duration
	prefsPath string
)

var rootCMD = &cobra.Command{
	Use:   "marketctl",
	Short: "Token market data aggregator",
	Long: `marketctl runs the token market data aggregator server and queries a running
server for candles, trades, pools and token details.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCMD.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCMD.PersistentFlags().StringVar(&serverURL, "server", envOr("MARKETCTL_SERVER", "http://localhost:8080"), "base URL of the aggregator server")
	rootCMD.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	rootCMD.PersistentFlags().StringVar(&prefsPath, "prefs", "", "file remembering the last timeframe per pool")

	rootCMD.AddCommand(serveCMD, ohlcCMD, tradesCMD, pairsCMD, tokenCMD)
}

func newClient() (*client.Client, error) {
	prefs := client.NewPreferenceStore()
	if prefsPath != "" {
		if err := prefs.Load(prefsPath); err != nil {
			return nil, err
		}
	}
	return client.New(serverURL, client.Options{Preferences: prefs}), nil
}

func savePrefs(c *client.Client) error {
	if prefsPath == "" {
		return nil
	}
	return c.Preferences().Save(prefsPath)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"token_backend/internal/client"
	"token_backend/internal/shared/market"
)

var (
	chain    string
	pool     string
	pairID   string
	tf       string
	provider string
	limit    int
	window   string
)

// query runs fn against a fresh client and prints its result. An unsupported network is printed, not failed.
func query(cmd *cobra.Command, fn func(ctx context.Context, c *client.Client) (any, error)) error {
	if pairID == "" {
		pairID = pool
	}
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	res, err := fn(ctx, c)
	if err != nil && !errors.Is(err, client.ErrUnsupportedNetwork) {
		return err
	}
	if err := savePrefs(c); err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

var ohlcCMD = &cobra.Command{
	Use:   "ohlc",
	Short: "Fetch candles for a pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		var timeframe market.Timeframe
		if tf != "" {
			parsed, err := market.ParseTimeframe(tf)
			if err != nil {
				return err
			}
			timeframe = parsed
		}
		return query(cmd, func(ctx context.Context, c *client.Client) (any, error) {
			return c.OHLC(ctx, client.OHLCParams{
				PairID: pairID, Chain: chain, PoolAddress: pool, TF: timeframe, Provider: provider,
			})
		})
	},
}

var tradesCMD = &cobra.Command{
	Use:   "trades",
	Short: "Fetch recent trades for a pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		return query(cmd, func(ctx context.Context, c *client.Client) (any, error) {
			return c.Trades(ctx, client.TradesParams{
				PairID: pairID, Chain: chain, PoolAddress: pool, Limit: limit, Window: window, Provider: provider,
			})
		})
	},
}

var pairsCMD = &cobra.Command{
	Use:   "pairs <address>",
	Short: "List the pools of a token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return query(cmd, func(ctx context.Context, c *client.Client) (any, error) {
			return c.Pairs(ctx, chain, args[0], provider)
		})
	},
}

var tokenCMD = &cobra.Command{
	Use:   "token <address>",
	Short: "Show token details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return query(cmd, func(ctx context.Context, c *client.Client) (any, error) {
			return c.Token(ctx, chain, args[0])
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{ohlcCMD, tradesCMD, pairsCMD, tokenCMD} {
		c.Flags().StringVar(&chain, "chain", "ethereum", "chain slug")
	}
	for _, c := range []*cobra.Command{ohlcCMD, tradesCMD} {
		c.Flags().StringVar(&pool, "pool", "", "pool address")
		c.Flags().StringVar(&pairID, "pair", "", "pair id (defaults to the pool address)")
		c.Flags().StringVar(&provider, "provider", "", "force a provider")
	}
	pairsCMD.Flags().StringVar(&provider, "provider", "", "force a provider")
	ohlcCMD.Flags().StringVar(&tf, "tf", "", "timeframe (1m, 5m, 15m, 1h, 4h, 1d)")
	tradesCMD.Flags().IntVar(&limit, "limit", 100, "number of trades")
	tradesCMD.Flags().StringVar(&window, "window", "", "time window (5m, 1h, 24h, 7d)")
}

package helius

import (
	"context"
	"fmt"
	"math/big"
	"net/url"

	"github.com/shopspring/decimal"

	"wallet-flow-backend/internal/cache"
	"wallet-flow-backend/internal/models"
)

type balancesResponse struct {
	NativeBalance int64          `json:"nativeBalance"`
	Tokens        []tokenBalance `json:"tokens"`
}

type tokenBalance struct {
	Mint     string `json:"mint"`
	Amount   uint64 `json:"amount"`
	Decimals int32  `json:"decimals"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
}

// FetchHoldings returns the wallet's SOL balance and fungible token balances.
// Display balances are exact decimal renderings of amount / 10^decimals.
func (c *Client) FetchHoldings(ctx context.Context, wallet string) (*models.Holdings, error) {
	var resp balancesResponse
	path := fmt.Sprintf("/v0/addresses/%s/balances", url.PathEscape(wallet))
	if err := c.getJSON(ctx, path, url.Values{}, cache.Key("balances", wallet), &resp); err != nil {
		return nil, err
	}

	holdings := &models.Holdings{
		SOL:    lamportsToSOL(resp.NativeBalance),
		Tokens: make([]models.TokenHolding, 0, len(resp.Tokens)),
	}
	for _, tb := range resp.Tokens {
		if tb.Amount == 0 {
			continue
		}
		holdings.Tokens = append(holdings.Tokens, models.TokenHolding{
			Mint:           tb.Mint,
			Name:           tb.Name,
			Symbol:         tb.Symbol,
			Balance:        tb.Amount,
			Decimals:       tb.Decimals,
			DisplayBalance: DisplayBalance(tb.Amount, tb.Decimals),
		})
	}
	return holdings, nil
}

// DisplayBalance renders a raw u64 token amount scaled by decimals, e.g.
// (1500000, 6) -> "1.5".
func DisplayBalance(amount uint64, decimals int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -decimals).String()
}

func lamportsToSOL(lamports int64) float64 {
	return decimal.New(lamports, -9).InexactFloat64()
}

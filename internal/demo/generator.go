// Package demo produces deterministic synthetic wallet activity so the
// dashboard can run without an indexer API key.
package demo

import (
	"context"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/gagliardetto/solana-go"

	"wallet-flow-backend/internal/helius"
	"wallet-flow-backend/internal/models"
	"wallet-flow-backend/internal/stats"
)

type demoToken struct {
	mint     string
	name     string
	symbol   string
	decimals int32
}

var demoTokens = []demoToken{
	{"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "USD Coin", "USDC", 6},
	{"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", "Bonk", "BONK", 5},
	{"JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN", "Jupiter", "JUP", 6},
}

// Config controls the size of the generated history
type Config struct {
	Transactions   int `toml:"transactions"`
	Counterparties int `toml:"counterparties"`
	TokenShare     int `toml:"token_share"` // percent of transactions that move tokens
}

// DefaultConfig returns a history dense enough to fill every panel
func DefaultConfig() Config {
	return Config{
		Transactions:   240,
		Counterparties: 40,
		TokenShare:     25,
	}
}

// Fetcher implements the tracker's fetcher with generated data. The same
// wallet and now always yield the same history.
type Fetcher struct {
	config Config
	window time.Duration
}

// NewFetcher creates a demo fetcher
func NewFetcher(cfg Config) *Fetcher {
	defaults := DefaultConfig()
	if cfg.Transactions <= 0 {
		cfg.Transactions = defaults.Transactions
	}
	if cfg.Counterparties <= 0 {
		cfg.Counterparties = defaults.Counterparties
	}
	if cfg.TokenShare < 0 || cfg.TokenShare > 100 {
		cfg.TokenShare = defaults.TokenShare
	}
	return &Fetcher{
		config: cfg,
		window: time.Duration(stats.DefaultWindowDays) * 24 * time.Hour,
	}
}

// FetchTransactions generates the wallet's history, newest first
func (f *Fetcher) FetchTransactions(ctx context.Context, wallet string, now time.Time) ([]models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := rand.New(rand.NewSource(seed(wallet)))
	pool := make([]string, f.config.Counterparties)
	for i := range pool {
		pool[i] = randomAddress(r)
	}

	txs := make([]models.Transaction, 0, f.config.Transactions)
	for i := 0; i < f.config.Transactions; i++ {
		// skew toward the head of the pool so some counterparties recur daily
		idx := int(r.ExpFloat64()*float64(len(pool))/4) % len(pool)
		counterparty := pool[idx]

		from, to := counterparty, wallet
		if r.Intn(2) == 0 {
			from, to = wallet, counterparty
		}

		age := time.Duration(r.Int63n(int64(f.window)))
		tx := models.Transaction{
			Signature: randomSignature(r),
			Timestamp: now.Add(-age).Unix(),
			Type:      "TRANSFER",
			Source:    "SYSTEM_PROGRAM",
		}

		if r.Intn(100) < f.config.TokenShare {
			token := demoTokens[r.Intn(len(demoTokens))]
			tx.Source = "SPL_TOKEN"
			tx.TokenTransfers = []models.TokenTransfer{{
				TokenAmount:     float64(1+r.Intn(5000)) / 10,
				FromUserAccount: from,
				ToUserAccount:   to,
				Mint:            token.mint,
			}}
		} else {
			tx.NativeTransfers = []models.NativeTransfer{{
				Amount:          1_000_000 + r.Int63n(5*models.LamportsPerSOL),
				FromUserAccount: from,
				ToUserAccount:   to,
			}}
		}
		txs = append(txs, tx)
	}

	models.SortTransactionsDesc(txs)
	return txs, nil
}

// FetchHoldings generates a balance snapshot carrying every demo token
func (f *Fetcher) FetchHoldings(ctx context.Context, wallet string) (*models.Holdings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := rand.New(rand.NewSource(seed(wallet) + 1))
	holdings := &models.Holdings{
		SOL:    float64(r.Int63n(200*models.LamportsPerSOL)) / models.LamportsPerSOL,
		Tokens: make([]models.TokenHolding, 0, len(demoTokens)),
	}
	for _, token := range demoTokens {
		balance := uint64(1 + r.Int63n(1_000_000_000))
		holdings.Tokens = append(holdings.Tokens, models.TokenHolding{
			Mint:           token.mint,
			Name:           token.name,
			Symbol:         token.symbol,
			Balance:        balance,
			Decimals:       token.decimals,
			DisplayBalance: helius.DisplayBalance(balance, token.decimals),
		})
	}
	return holdings, nil
}

func seed(wallet string) int64 {
	h := fnv.New64a()
	h.Write([]byte(wallet))
	return int64(h.Sum64())
}

func randomAddress(r *rand.Rand) string {
	var pk solana.PublicKey
	r.Read(pk[:])
	return pk.String()
}

func randomSignature(r *rand.Rand) string {
	var sig solana.Signature
	r.Read(sig[:])
	return sig.String()
}

package stats_test

import (
	"testing"

	"wallet-flow-backend/internal/models"
	"wallet-flow-backend/internal/stats"
)

const (
	wallet = "TrackedWa11et"
	alice  = "AliceCounterparty"
	bob    = "BobCounterparty"
	carol  = "CarolCounterparty"
)

func TestClassifyNative(t *testing.T) {
	tests := []struct {
		name         string
		transfer     models.NativeTransfer
		direction    stats.Direction
		counterparty string
	}{
		{
			name:         "incoming",
			transfer:     models.NativeTransfer{Amount: 1_000_000_000, FromUserAccount: alice, ToUserAccount: wallet},
			direction:    stats.Incoming,
			counterparty: alice,
		},
		{
			name:         "outgoing",
			transfer:     models.NativeTransfer{Amount: 5_000, FromUserAccount: wallet, ToUserAccount: bob},
			direction:    stats.Outgoing,
			counterparty: bob,
		},
		{
			name:      "self transfer",
			transfer:  models.NativeTransfer{Amount: 1_000_000_000, FromUserAccount: wallet, ToUserAccount: wallet},
			direction: stats.Irrelevant,
		},
		{
			name:      "unrelated",
			transfer:  models.NativeTransfer{Amount: 1_000_000_000, FromUserAccount: alice, ToUserAccount: bob},
			direction: stats.Irrelevant,
		},
		{
			name:      "dust",
			transfer:  models.NativeTransfer{Amount: 999, FromUserAccount: alice, ToUserAccount: wallet},
			direction: stats.Irrelevant,
		},
		{
			name:         "exactly at dust threshold",
			transfer:     models.NativeTransfer{Amount: 1_000, FromUserAccount: alice, ToUserAccount: wallet},
			direction:    stats.Incoming,
			counterparty: alice,
		},
		{
			name:      "missing sender",
			transfer:  models.NativeTransfer{Amount: 1_000_000_000, ToUserAccount: wallet},
			direction: stats.Irrelevant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stats.ClassifyNative(tt.transfer, wallet)
			if got.Direction != tt.direction {
				t.Fatalf("direction = %s, want %s", got.Direction, tt.direction)
			}
			if got.Counterparty != tt.counterparty {
				t.Errorf("counterparty = %q, want %q", got.Counterparty, tt.counterparty)
			}
		})
	}
}

func TestClassifyToken(t *testing.T) {
	tests := []struct {
		name      string
		transfer  models.TokenTransfer
		direction stats.Direction
	}{
		{"incoming", models.TokenTransfer{TokenAmount: 12.5, FromUserAccount: carol, ToUserAccount: wallet, Mint: "MintA"}, stats.Incoming},
		{"outgoing", models.TokenTransfer{TokenAmount: 0.01, FromUserAccount: wallet, ToUserAccount: carol, Mint: "MintA"}, stats.Outgoing},
		{"dust", models.TokenTransfer{TokenAmount: 0.0000001, FromUserAccount: carol, ToUserAccount: wallet, Mint: "MintA"}, stats.Irrelevant},
		{"unrelated", models.TokenTransfer{TokenAmount: 3, FromUserAccount: carol, ToUserAccount: alice, Mint: "MintA"}, stats.Irrelevant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stats.ClassifyToken(tt.transfer, wallet); got.Direction != tt.direction {
				t.Errorf("direction = %s, want %s", got.Direction, tt.direction)
			}
		})
	}
}

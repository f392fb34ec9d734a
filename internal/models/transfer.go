package models

import "time"

// LamportsPerSOL is the fixed divisor between lamports and SOL
const LamportsPerSOL = 1e9

// Transaction represents an enhanced transaction record from the indexer
type Transaction struct {
	Signature       string           `json:"signature"`
	Timestamp       int64            `json:"timestamp"` // unix seconds
	Type            string           `json:"type,omitempty"`
	Source          string           `json:"source,omitempty"`
	NativeTransfers []NativeTransfer `json:"nativeTransfers"`
	TokenTransfers  []TokenTransfer  `json:"tokenTransfers"`
}

// NativeTransfer is a SOL movement in lamports
type NativeTransfer struct {
	Amount          int64  `json:"amount"`
	FromUserAccount string `json:"fromUserAccount"`
	ToUserAccount   string `json:"toUserAccount"`
}

// TokenTransfer is an SPL token movement; TokenAmount is already UI-scaled
type TokenTransfer struct {
	TokenAmount     float64 `json:"tokenAmount"`
	FromUserAccount string  `json:"fromUserAccount"`
	ToUserAccount   string  `json:"toUserAccount"`
	Mint            string  `json:"mint"`
}

// Time returns the block time of the transaction
func (t Transaction) Time() time.Time {
	return time.Unix(t.Timestamp, 0)
}

// TimestampMs returns the block time in unix milliseconds
func (t Transaction) TimestampMs() int64 {
	return t.Timestamp * 1000
}

// SOL converts the lamport amount to SOL
func (n NativeTransfer) SOL() float64 {
	return float64(n.Amount) / LamportsPerSOL
}

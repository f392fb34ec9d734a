package models

import "sort"

// TokenLabels maps mint -> symbol for every holding that has a symbol
func (h *Holdings) TokenLabels() map[string]string {
	if h == nil {
		return nil
	}
	labels := make(map[string]string, len(h.Tokens))
	for _, token := range h.Tokens {
		if token.Symbol != "" {
			labels[token.Mint] = token.Symbol
		}
	}
	return labels
}

// SortTransactionsDesc orders transactions newest first, in place
func SortTransactionsDesc(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp > txs[j].Timestamp
	})
}

package models

// Holdings is the balance/asset snapshot of a wallet. Display only, never
// consulted by flow analysis.
type Holdings struct {
	SOL    float64        `json:"sol"`
	Tokens []TokenHolding `json:"tokens"`
}

// TokenHolding is one fungible token balance
type TokenHolding struct {
	Mint           string `json:"mint"`
	Name           string `json:"name"`
	Symbol         string `json:"symbol"`
	Balance        uint64 `json:"balance"` // raw u64 units
	Decimals       int32  `json:"decimals"`
	DisplayBalance string `json:"displayBalance"`
}

package utils

import (
	"strings"

	"github.com/gagliardetto/solana-go"
)

// NormalizeWallet trims and validates a base58 wallet address, returning its
// canonical form.
func NormalizeWallet(address string) (string, error) {
	clean := strings.TrimSpace(address)
	if clean == "" {
		return "", NewAppError(ErrorTypeValidation, "EMPTY_WALLET", "wallet address is empty", "address")
	}

	pk, err := solana.PublicKeyFromBase58(clean)
	if err != nil {
		return "", WrapError(err, ErrorTypeValidation, "INVALID_WALLET", "invalid wallet address", "address").
			WithDetails(clean)
	}
	return pk.String(), nil
}

// ShortenAddress renders an address as its first and last four characters,
// e.g. "So11…1112". Short inputs are returned unchanged.
func ShortenAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:4] + "…" + address[len(address)-4:]
}

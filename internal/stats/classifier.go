package stats

import (
	"wallet-flow-backend/internal/models"
)

// ClassifyNative classifies a SOL transfer relative to wallet. Amounts below
// DustThreshold SOL are irrelevant.
func ClassifyNative(t models.NativeTransfer, wallet string) Classification {
	if t.SOL() < DustThreshold {
		return Classification{Direction: Irrelevant}
	}
	return classify(t.FromUserAccount, t.ToUserAccount, wallet)
}

// ClassifyToken classifies a token transfer relative to wallet. Raw amounts
// below DustThreshold are irrelevant.
func ClassifyToken(t models.TokenTransfer, wallet string) Classification {
	if t.TokenAmount < DustThreshold {
		return Classification{Direction: Irrelevant}
	}
	return classify(t.FromUserAccount, t.ToUserAccount, wallet)
}

func classify(from, to, wallet string) Classification {
	if wallet == "" || from == "" || to == "" || from == to {
		return Classification{Direction: Irrelevant}
	}

	switch wallet {
	case to:
		return Classification{Direction: Incoming, Counterparty: from}
	case from:
		return Classification{Direction: Outgoing, Counterparty: to}
	default:
		return Classification{Direction: Irrelevant}
	}
}

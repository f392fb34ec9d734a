package stats

import (
	"time"

	"wallet-flow-backend/internal/models"
	"wallet-flow-backend/internal/utils"
)

// Analyzer composes the classifier, counterparty aggregator, daily bucketizer
// and recurrence builder into one per-wallet pass. It holds no mutable state
// and is safe to share between goroutines.
type Analyzer struct {
	config Config
}

// NewAnalyzer creates an analyzer with the given configuration
func NewAnalyzer(config Config) *Analyzer {
	if config.TopCounterparties <= 0 {
		config.TopCounterparties = DefaultConfig().TopCounterparties
	}
	if config.TopWindowCounterparties <= 0 {
		config.TopWindowCounterparties = defaultTopWindow
	}
	if config.HourlyLookback <= 0 {
		config.HourlyLookback = HourlyLookback
	}
	return &Analyzer{config: config}
}

// Analyze runs one full pass over txs for wallet. tokenLabels maps mint to a
// display label (usually the holding's symbol) and may be nil. An empty
// transaction list yields a zeroed result, never an error.
func (a *Analyzer) Analyze(wallet string, txs []models.Transaction, now time.Time, tokenLabels map[string]string) *WalletAnalysis {
	loc := a.config.location()
	days := a.config.windowDays()

	series := BuildDailySeries(txs, wallet, now, days, loc)
	counterparties := NewCounterpartyMap()
	events := make([]FlowEvent, 0, len(txs))
	tokenOnlyLabels := make(map[string]struct{})

	for i, tx := range txs {
		dayKey := series.TxDayKeys[i]
		inWindow := series.Contains(dayKey)
		tsMs := tx.TimestampMs()

		for _, nt := range tx.NativeTransfers {
			c := ClassifyNative(nt, wallet)
			if c.Direction == Irrelevant {
				continue
			}
			amount := nt.SOL()
			ev := FlowEvent{TimestampMs: tsMs, Counterparty: c.Counterparty}
			if c.Direction == Incoming {
				ev.Incoming = amount
			} else {
				ev.Outgoing = amount
			}
			events = append(events, ev)

			if inWindow {
				counterparties.Accumulate(c.Counterparty, dayKey, ev.Incoming, ev.Outgoing, NativeTokenLabel)
			}
		}

		for _, tt := range tx.TokenTransfers {
			c := ClassifyToken(tt, wallet)
			if c.Direction == Irrelevant {
				continue
			}
			events = append(events, FlowEvent{
				TimestampMs:  tsMs,
				Counterparty: c.Counterparty,
				TokenOnly:    true,
			})

			if !inWindow {
				continue
			}
			label := tokenLabel(tt.Mint, tokenLabels)
			tokenOnlyLabels[label] = struct{}{}

			// token units flow into the same accumulator as SOL
			var in, out float64
			if c.Direction == Incoming {
				in = tt.TokenAmount
			} else {
				out = tt.TokenAmount
			}
			counterparties.Accumulate(c.Counterparty, dayKey, in, out, label)
		}
	}

	result := &WalletAnalysis{
		Wallet:         wallet,
		GeneratedAt:    now,
		DailyData:      series.Buckets,
		Counterparties: counterparties.Top(a.config.TopCounterparties),
		Recurrence:     BuildRecurrence(counterparties, days),
		FlowEvents:     events,
	}

	for _, bucket := range series.Buckets {
		result.Totals.TotalIncoming += bucket.Incoming
		result.Totals.TotalOutgoing += bucket.Outgoing
		result.Totals.TotalTx += bucket.TxCount
	}
	result.Totals.UniqueWallets = counterparties.Len()
	result.Totals.UniqueTokens = len(tokenOnlyLabels)
	result.Totals.FlowEventCount = len(events)

	for _, ev := range events {
		if result.FirstActivity == 0 || ev.TimestampMs < result.FirstActivity {
			result.FirstActivity = ev.TimestampMs
		}
		if ev.TimestampMs > result.LastActivity {
			result.LastActivity = ev.TimestampMs
		}
	}

	utils.AnalysisLogger.Debug("analyzed %s: %d txs, %d events, %d counterparties",
		utils.ShortenAddress(wallet), len(txs), len(events), counterparties.Len())

	return result
}

// Window computes the time-window panel over a result's raw events
func (a *Analyzer) Window(events []FlowEvent, window time.Duration, now time.Time) WindowResult {
	return analyzeWindow(events, window, now, a.config.TopWindowCounterparties)
}

// Hourly computes the hour-of-day trend over a result's raw events
func (a *Analyzer) Hourly(events []FlowEvent, now time.Time) HourlyTrend {
	return analyzeHourly(events, now, a.config.HourlyLookback, a.config.location())
}

// IsEmpty reports whether the pass found no activity in the daily window
func (r *WalletAnalysis) IsEmpty() bool {
	return r.Totals.TotalTx == 0 && r.Totals.UniqueWallets == 0
}

func tokenLabel(mint string, labels map[string]string) string {
	if label, ok := labels[mint]; ok && label != "" {
		return label
	}
	return utils.ShortenAddress(mint)
}

// CounterpartyAddresses returns the distinct counterparties of the raw flow
// events in first-seen order
func (r *WalletAnalysis) CounterpartyAddresses() []string {
	seen := make(map[string]struct{}, len(r.FlowEvents))
	out := make([]string, 0)
	for _, ev := range r.FlowEvents {
		if _, ok := seen[ev.Counterparty]; ok {
			continue
		}
		seen[ev.Counterparty] = struct{}{}
		out = append(out, ev.Counterparty)
	}
	return out
}
